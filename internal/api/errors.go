package api

import "fmt"

// Fixed per-operation failure messages.
const (
	msgListBudgets     = "failed to load budgets"
	msgGetBudget       = "failed to load budget"
	msgCreateBudget    = "failed to create budget"
	msgUpdateBudget    = "failed to update budget"
	msgDeleteBudget    = "failed to delete budget"
	msgListLines       = "failed to load budget lines"
	msgCreateLine      = "failed to create budget line"
	msgListActuals     = "failed to load actuals"
	msgImportActuals   = "failed to import actuals"
	msgPlanActual      = "failed to load plan/actual report"
	msgCategorySummary = "failed to load category summary"
)

// Error is an application failure: the server answered with a non-2xx
// status. Transport failures are never reported as *Error.
type Error struct {
	Op      string // client method name, e.g. "CreateBudget"
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Detail includes the operation and status, for logs.
func (e *Error) Detail() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
}
