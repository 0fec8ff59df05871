package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

type rgb [3]int

var (
	pdfHeaderFill = rgb{40, 40, 40}
	pdfHeaderText = rgb{255, 255, 255}
	pdfBodyText   = rgb{50, 50, 50}
	pdfMutedText  = rgb{110, 110, 110}
	pdfRule       = rgb{200, 200, 200}
	pdfStripe     = rgb{245, 245, 245}
	pdfOver       = rgb{192, 0, 0}
	pdfUnder      = rgb{0, 128, 0}
)

type pdfColumn struct {
	title string
	width float64
	align string
	cell  func(Row) string
}

func pdfColumns(k Kind) []pdfColumn {
	cols := []pdfColumn{
		{"Category", 50, "L", func(r Row) string { return r.Category }},
	}
	if k != CategorySummary {
		cols = append(cols, pdfColumn{"Subcategory", 40, "L", func(r Row) string { return r.Subcategory }})
	}
	cols = append(cols,
		pdfColumn{"Planned", 27, "R", func(r Row) string { return pdfAmount(r.Planned) }},
		pdfColumn{"Actual", 27, "R", func(r Row) string { return pdfAmount(r.Actual) }},
		pdfColumn{"Variance", 27, "R", func(r Row) string { return pdfSigned(r.Variance) }},
		pdfColumn{"Var. %", 19, "R", func(r Row) string { return fmt.Sprintf("%+.1f%%", r.VariancePct) }},
	)
	if k == CategorySummary {
		// Give the category column the space subcategory would use.
		cols[0].width += 40
	}
	return cols
}

// pdfAmount groups thousands with commas and keeps two decimals.
func pdfAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String() + "." + frac
	if neg && out != "0.00" {
		return "-" + out
	}
	return out
}

func pdfSigned(v float64) string {
	s := pdfAmount(v)
	if v > 0 && s != "0.00" {
		return "+" + s
	}
	return s
}

// WritePDF renders r as a single A4 document with a header band, a
// striped table, a totals row and a footer.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	cols := pdfColumns(r.Kind)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(95, 10, tr("Generated by bplan | "+r.GeneratedAt.Format("2006-01-02 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	tableHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(pdfBodyText[0], pdfBodyText[1], pdfBodyText[2])
		pdf.SetDrawColor(pdfRule[0], pdfRule[1], pdfRule[2])
		for _, c := range cols {
			pdf.CellFormat(c.width, 7, c.title, "B", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()

	pdf.SetFillColor(pdfHeaderFill[0], pdfHeaderFill[1], pdfHeaderFill[2])
	pdf.SetTextColor(pdfHeaderText[0], pdfHeaderText[1], pdfHeaderText[2])
	pdf.SetFont("Arial", "B", 14)
	name := r.Budget.Name
	if len(name) > 70 {
		name = name[:67] + "..."
	}
	pdf.CellFormat(0, 12, tr("  "+r.Kind.Title()+": "+name), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(pdfBodyText[0], pdfBodyText[1], pdfBodyText[2])
	period := "  Period: " + pdfDate(r) + "    Budget ID: " + r.Budget.ID
	if r.Budget.Status != "" {
		period += "    Status: " + r.Budget.Status
	}
	pdf.CellFormat(0, 8, tr(period), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	if len(r.Rows) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(pdfMutedText[0], pdfMutedText[1], pdfMutedText[2])
		pdf.Cell(0, 8, "No planned or actual amounts recorded for this budget.")
	} else {
		tableHeader()

		pdf.SetFont("Arial", "", 9)
		for i, row := range r.Rows {
			// Leave room for the footer; repeat the header on each page.
			if pdf.GetY() > 265 {
				pdf.AddPage()
				tableHeader()
				pdf.SetFont("Arial", "", 9)
			}
			fill := i%2 == 1
			pdf.SetFillColor(pdfStripe[0], pdfStripe[1], pdfStripe[2])
			for _, c := range cols {
				text := c.cell(row)
				pdf.SetTextColor(pdfBodyText[0], pdfBodyText[1], pdfBodyText[2])
				if c.title == "Variance" || c.title == "Var. %" {
					setVarianceColor(pdf, row.Variance)
				}
				pdf.CellFormat(c.width, 6, tr(text), "", 0, c.align, fill, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(pdfBodyText[0], pdfBodyText[1], pdfBodyText[2])
		totals := Row{
			Category:    "Total",
			Planned:     r.Totals.Planned,
			Actual:      r.Totals.Actual,
			Variance:    r.Totals.Variance,
			VariancePct: r.Totals.VariancePct,
		}
		for _, c := range cols {
			pdf.SetTextColor(pdfBodyText[0], pdfBodyText[1], pdfBodyText[2])
			if c.title == "Variance" || c.title == "Var. %" {
				setVarianceColor(pdf, totals.Variance)
			}
			pdf.CellFormat(c.width, 7, tr(c.cell(totals)), "T", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF report: %w", err)
	}
	return nil
}

func setVarianceColor(pdf *gofpdf.Fpdf, variance float64) {
	switch {
	case variance > 0.005:
		pdf.SetTextColor(pdfOver[0], pdfOver[1], pdfOver[2])
	case variance < -0.005:
		pdf.SetTextColor(pdfUnder[0], pdfUnder[1], pdfUnder[2])
	}
}

func pdfDate(r Report) string {
	if r.Budget.PeriodStart.IsZero() && r.Budget.PeriodEnd.IsZero() {
		return "-"
	}
	return r.Budget.PeriodStart.Format("2006-01-02") + " to " + r.Budget.PeriodEnd.Format("2006-01-02")
}
