package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"cropcart/internal/orders"
)

// Summary carries the headline figures printed above the order table.
type Summary struct {
	FarmerName            string
	TotalOrders           int
	PendingOrders         int
	CompletedOrders       int
	LifetimeEarnings      float64
	CurrentPeriodEarnings float64
	PeriodLabel           string
}

type Exporter struct {
	compress bool
}

func NewExporter() *Exporter {
	return &Exporter{compress: true}
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Order", 22, "L"},
	{"Buyer", 38, "L"},
	{"Items", 60, "L"},
	{"Base price", 26, "R"},
	{"Status", 22, "C"},
	{"Date", 22, "C"},
}

// Write renders the report as a PDF into w. An empty order list produces a
// document without the order table.
func (e *Exporter) Write(w io.Writer, s Summary, list []orders.FarmerOrder, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetTitle("CropCart farmer report", false)
	pdf.SetCreationDate(now)
	pdf.AddPage()
	// Core fonts are cp1252; user text arrives as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "CropCart farmer report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if s.FarmerName != "" {
		pdf.CellFormat(0, 6, tr("Farmer: "+s.FarmerName), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Generated: "+now.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	period := s.PeriodLabel
	if period == "" {
		period = "current period"
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	rows := [][2]string{
		{"Total orders", fmt.Sprintf("%d", s.TotalOrders)},
		{"Pending orders", fmt.Sprintf("%d", s.PendingOrders)},
		{"Completed orders", fmt.Sprintf("%d", s.CompletedOrders)},
		{"Lifetime earnings", money(s.LifetimeEarnings)},
		{"Earnings (" + period + ")", money(s.CurrentPeriodEarnings)},
	}
	for _, r := range rows {
		pdf.CellFormat(60, 6, r[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, r[1], "", 1, "L", false, 0, "")
	}

	if len(list) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Orders", "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 240, 230)
		for _, c := range columns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, o := range list {
			cells := []string{
				"#" + idSuffix(o.ID),
				truncate(o.Buyer.Name, 24),
				truncate(itemNames(o), 40),
				money(o.BasePrice),
				string(o.Status),
				o.CreatedAt.Format("2006-01-02"),
			}
			for i, c := range columns {
				pdf.CellFormat(c.width, 6, tr(cells[i]), "1", 0, c.align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func idSuffix(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}

func itemNames(o orders.FarmerOrder) string {
	names := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, item.Name)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func money(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}
