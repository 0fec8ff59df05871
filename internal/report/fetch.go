package report

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
)

// Source serves the two server reports. *api.Client satisfies it.
type Source interface {
	PlanActualReport(ctx context.Context, budgetID string) ([]api.PlanActualRow, error)
	CategorySummary(ctx context.Context, budgetID string) ([]api.CategorySummaryRow, error)
}

// Kinds lists the report kinds in display order.
var Kinds = []Kind{PlanActual, CategorySummary}

// ParseKind accepts a Kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("report: unknown report %q (want plan-actual or category-summary)", s)
}

// Next cycles to the other report kind.
func (k Kind) Next() Kind {
	if k == PlanActual {
		return CategorySummary
	}
	return PlanActual
}

// Fetch loads report k for budget b from src.
func Fetch(ctx context.Context, src Source, b api.Budget, k Kind, at time.Time) (Report, error) {
	switch k {
	case PlanActual:
		rows, err := src.PlanActualReport(ctx, b.ID)
		if err != nil {
			return Report{}, err
		}
		return FromPlanActual(b, rows, at), nil
	case CategorySummary:
		rows, err := src.CategorySummary(ctx, b.ID)
		if err != nil {
			return Report{}, err
		}
		return FromCategorySummary(b, rows, at), nil
	}
	return Report{}, fmt.Errorf("report: unknown report %q", k)
}

// ByCategory folds rows into one row per category, in first-seen order.
func (r Report) ByCategory() []Row {
	idx := map[string]int{}
	var out []Row
	for _, row := range r.Rows {
		i, ok := idx[row.Category]
		if !ok {
			i = len(out)
			idx[row.Category] = i
			out = append(out, Row{Category: row.Category})
		}
		out[i].Planned += row.Planned
		out[i].Actual += row.Actual
	}
	for i := range out {
		out[i].Variance = out[i].Actual - out[i].Planned
		out[i].VariancePct = variancePct(out[i].Variance, out[i].Planned)
	}
	return out
}
