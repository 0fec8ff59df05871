package api

import "time"

// Budget is a budget plan for a period. The server assigns ID.
type Budget struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Status      string    `json:"status"` // draft, approved, closed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by"`
}

// BudgetLine is one planned amount within a budget.
type BudgetLine struct {
	ID          string         `json:"id"`
	BudgetID    string         `json:"budget_id"`
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory"`
	Amount      float64        `json:"amount"`
	Driver      string         `json:"driver"`
	DriverValue float64        `json:"driver_value"`
	Attributes  map[string]any `json:"attributes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Actual is a recorded transaction against a budget.
type Actual struct {
	ID          string    `json:"id"`
	BudgetID    string    `json:"budget_id"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Source      string    `json:"source"` // ERP, Manual, CSV
	CreatedAt   time.Time `json:"created_at"`
}

// ImportResult is returned by the actuals import endpoint.
type ImportResult struct {
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
}

// DeleteResult is returned by the budget delete endpoint.
type DeleteResult struct {
	Message string `json:"message"`
}

// PlanActualRow compares planned and actual amounts for one
// category/subcategory pair.
type PlanActualRow struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Planned     float64 `json:"planned"`
	Actual      float64 `json:"actual"`
	Variance    float64 `json:"variance"`
	VariancePct float64 `json:"variance_pct"`
}

// CategorySummaryRow aggregates planned and actual amounts per category.
type CategorySummaryRow struct {
	Category string  `json:"category"`
	Planned  float64 `json:"planned"`
	Actual   float64 `json:"actual"`
	Variance float64 `json:"variance"`
}

// ForCreate returns a copy of b with the server-assigned fields cleared,
// suitable for re-creating a deleted budget.
func (b Budget) ForCreate() Budget {
	b.ID = ""
	b.CreatedAt = time.Time{}
	b.UpdatedAt = time.Time{}
	return b
}
