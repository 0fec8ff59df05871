// Package report turns the server's plan/actual and category-summary
// reports into files: JSON, YAML, CSV and PDF.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
)

// Kind identifies which server report a Report holds.
type Kind string

const (
	PlanActual      Kind = "plan-actual"
	CategorySummary Kind = "category-summary"
)

// Title is the human-readable report name.
func (k Kind) Title() string {
	if k == CategorySummary {
		return "Category Summary"
	}
	return "Plan vs. Actual"
}

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
	FormatPDF   Format = "pdf"
)

// Formats lists every accepted Format, table first.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatCSV, FormatPDF}

// ParseFormat accepts a Format name, case-insensitively. "yml" is an
// alias for yaml.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "yml" {
		s = string(FormatYAML)
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q (want table, json, yaml, csv or pdf)", s)
}

// Row is one report line. Subcategory is empty for category summaries.
type Row struct {
	Category    string  `json:"category" yaml:"category"`
	Subcategory string  `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Planned     float64 `json:"planned" yaml:"planned"`
	Actual      float64 `json:"actual" yaml:"actual"`
	Variance    float64 `json:"variance" yaml:"variance"`
	VariancePct float64 `json:"variance_pct" yaml:"variance_pct"`
}

// Totals sums a report's rows.
type Totals struct {
	Planned     float64 `json:"planned" yaml:"planned"`
	Actual      float64 `json:"actual" yaml:"actual"`
	Variance    float64 `json:"variance" yaml:"variance"`
	VariancePct float64 `json:"variance_pct" yaml:"variance_pct"`
}

// Report is a server report bound to the budget it describes.
type Report struct {
	Kind        Kind       `json:"report" yaml:"report"`
	Budget      BudgetInfo `json:"budget" yaml:"budget"`
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
	Rows        []Row      `json:"rows" yaml:"rows"`
	Totals      Totals     `json:"totals" yaml:"totals"`
}

// BudgetInfo is the slice of a budget a report header shows.
type BudgetInfo struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Status      string    `json:"status,omitempty" yaml:"status,omitempty"`
	PeriodStart time.Time `json:"period_start" yaml:"period_start"`
	PeriodEnd   time.Time `json:"period_end" yaml:"period_end"`
}

func budgetInfo(b api.Budget) BudgetInfo {
	return BudgetInfo{
		ID:          b.ID,
		Name:        b.Name,
		Status:      b.Status,
		PeriodStart: b.PeriodStart,
		PeriodEnd:   b.PeriodEnd,
	}
}

// FromPlanActual builds a plan/actual Report.
func FromPlanActual(b api.Budget, rows []api.PlanActualRow, at time.Time) Report {
	r := Report{Kind: PlanActual, Budget: budgetInfo(b), GeneratedAt: at, Rows: make([]Row, 0, len(rows))}
	for _, pa := range rows {
		r.Rows = append(r.Rows, Row{
			Category:    pa.Category,
			Subcategory: pa.Subcategory,
			Planned:     pa.Planned,
			Actual:      pa.Actual,
			Variance:    pa.Variance,
			VariancePct: pa.VariancePct,
		})
	}
	r.Totals = sum(r.Rows)
	return r
}

// FromCategorySummary builds a category-summary Report. The server does
// not send a variance percentage for categories; it is derived the same
// way the plan/actual report does it.
func FromCategorySummary(b api.Budget, rows []api.CategorySummaryRow, at time.Time) Report {
	r := Report{Kind: CategorySummary, Budget: budgetInfo(b), GeneratedAt: at, Rows: make([]Row, 0, len(rows))}
	for _, cs := range rows {
		r.Rows = append(r.Rows, Row{
			Category:    cs.Category,
			Planned:     cs.Planned,
			Actual:      cs.Actual,
			Variance:    cs.Variance,
			VariancePct: variancePct(cs.Variance, cs.Planned),
		})
	}
	r.Totals = sum(r.Rows)
	return r
}

func variancePct(variance, planned float64) float64 {
	if planned == 0 {
		return 0
	}
	return variance / planned * 100
}

func sum(rows []Row) Totals {
	var t Totals
	for _, r := range rows {
		t.Planned += r.Planned
		t.Actual += r.Actual
	}
	t.Variance = t.Actual - t.Planned
	t.VariancePct = variancePct(t.Variance, t.Planned)
	return t
}

// Write encodes r to w in format f. FormatTable is rendered by the
// caller and is rejected here.
func Write(w io.Writer, r Report, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	}
	return fmt.Errorf("report: format %q cannot be written to a file", f)
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Filename suggests a file name such as
// "marketing-2026-plan-actual_20260301_093000.pdf".
func Filename(r Report, f Format) string {
	base := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(r.Budget.Name), "-"), "-")
	if base == "" {
		base = "budget"
	}
	return fmt.Sprintf("%s-%s_%s.%s", base, r.Kind, r.GeneratedAt.Format("20060102_150405"), f)
}

// WriteFile writes r to path, creating parent directories. An empty path
// writes Filename(r, f) into the current directory. It returns the
// absolute path written.
func WriteFile(path string, r Report, f Format) (string, error) {
	if path == "" {
		path = Filename(r, f)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory %q: %w", dir, err)
		}
	}

	file, err := os.Create(path) //nolint:gosec // path is supplied by the local user
	if err != nil {
		return "", fmt.Errorf("creating %s file: %w", f, err)
	}
	if err := Write(file, r, f); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("writing %s file: %w", f, err)
	}
	return filepath.Abs(path)
}
