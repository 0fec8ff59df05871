package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}

// WriteYAML writes r as a YAML document.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding YAML report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding YAML report: %w", err)
	}
	return nil
}

func csvHeaders(k Kind) []string {
	if k == CategorySummary {
		return []string{"Category", "Planned", "Actual", "Variance", "Variance %"}
	}
	return []string{"Category", "Subcategory", "Planned", "Actual", "Variance", "Variance %"}
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// WriteCSV writes one record per row followed by a "Total" record.
func WriteCSV(w io.Writer, r Report) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeaders(r.Kind)); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	record := func(category, subcategory string, planned, actual, variance, pct float64) []string {
		rec := []string{category}
		if r.Kind != CategorySummary {
			rec = append(rec, subcategory)
		}
		return append(rec, money(planned), money(actual), money(variance), money(pct))
	}

	for _, row := range r.Rows {
		if err := writer.Write(record(row.Category, row.Subcategory, row.Planned, row.Actual, row.Variance, row.VariancePct)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	t := r.Totals
	if err := writer.Write(record("Total", "", t.Planned, t.Actual, t.Variance, t.VariancePct)); err != nil {
		return fmt.Errorf("writing CSV totals: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
