package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single worksheet in an exported workbook.
const SheetName = "Quote"

var serviceHeaders = []string{"#", "Offering", "Code", "SLC", "Qty", "Months", "SLC factor", "Unit cost", "Total"}

var laborHeaders = []string{"#", "Category", "Code", "Qty", "Rate", "Total"}

// Workbook builds an xlsx file for rec and returns its bytes.
func Workbook(rec Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	widths := map[string]float64{"A": 5, "B": 44, "C": 12, "D": 16, "E": 8, "F": 10, "G": 12, "H": 16, "I": 18}
	for col, w := range widths {
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(SheetName, "A1", "I1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(SheetName, "A1", "Support contract quote")
	f.SetCellStyle(SheetName, "A1", "I1", st.title)

	f.SetCellValue(SheetName, "A2", sanitizeExcelCell(fmt.Sprintf("Country: %s  Currency: %s", rec.Country, rec.Currency)))
	f.SetCellValue(SheetName, "A3", "Date: "+rec.GeneratedAt.Format("2006-01-02"))
	if rec.ContractStart != "" {
		f.SetCellValue(SheetName, "E3", fmt.Sprintf("Contract: %s to %s", rec.ContractStart, rec.ContractEnd))
	}

	row := 5
	if err := writeHeader(f, row, serviceHeaders, st.header); err != nil {
		return nil, err
	}
	row++
	for i, s := range rec.Services {
		values := []any{
			i + 1,
			sanitizeExcelCell(s.Offering),
			sanitizeExcelCell(s.OfferingCode),
			sanitizeExcelCell(s.SLC),
			s.Quantity,
			s.Months,
			s.SLCFactor,
			s.UnitCost.InexactFloat64(),
			s.Total.InexactFloat64(),
		}
		if err := writeRow(f, row, values); err != nil {
			return nil, err
		}
		f.SetCellStyle(SheetName, cell(1, row), cell(7, row), st.item)
		f.SetCellStyle(SheetName, cell(8, row), cell(9, row), st.amount)
		row++
	}

	if len(rec.Labor) > 0 {
		row++
		if err := writeHeader(f, row, laborHeaders, st.header); err != nil {
			return nil, err
		}
		row++
		for i, l := range rec.Labor {
			values := []any{
				i + 1,
				sanitizeExcelCell(l.Category),
				sanitizeExcelCell(l.Code),
				l.Quantity,
				l.Rate.InexactFloat64(),
				l.Total.InexactFloat64(),
			}
			if err := writeRow(f, row, values); err != nil {
				return nil, err
			}
			f.SetCellStyle(SheetName, cell(1, row), cell(4, row), st.item)
			f.SetCellStyle(SheetName, cell(5, row), cell(6, row), st.amount)
			row++
		}
	}

	row++
	summary := []struct {
		label string
		value decimal.Decimal
	}{
		{"Service cost", rec.Totals.ServiceCost},
		{"Labor cost", rec.Totals.LaborCost},
		{"Total cost", rec.Totals.TotalCost},
		{"Contingency", rec.Totals.Contingency},
		{"Cost with risk", rec.Totals.CostWithRisk},
		{"Sell price", rec.Totals.SellPrice},
		{"Tax", rec.Totals.TaxAmount},
		{"Final price", rec.Totals.FinalPrice},
	}
	for _, s := range summary {
		f.SetCellValue(SheetName, cell(8, row), s.label)
		f.SetCellValue(SheetName, cell(9, row), s.value.InexactFloat64())
		f.SetCellStyle(SheetName, cell(8, row), cell(8, row), st.summaryLabel)
		f.SetCellStyle(SheetName, cell(9, row), cell(9, row), st.summaryValue)
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	title        int
	header       int
	item         int
	amount       int
	summaryLabel int
	summaryValue int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	if st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return st, fmt.Errorf("create title style: %w", err)
	}

	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F3864"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}

	if st.item, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return st, fmt.Errorf("create item style: %w", err)
	}

	// 4 is the built-in "#,##0.00" format.
	if st.amount, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
		NumFmt: 4,
	}); err != nil {
		return st, fmt.Errorf("create amount style: %w", err)
	}

	if st.summaryLabel, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return st, fmt.Errorf("create summary label style: %w", err)
	}

	if st.summaryValue, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		NumFmt: 4,
	}); err != nil {
		return st, fmt.Errorf("create summary value style: %w", err)
	}

	return st, nil
}

func writeHeader(f *excelize.File, row int, headers []string, style int) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, row, values); err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, cell(1, row), cell(len(headers), row), style)
}

func writeRow(f *excelize.File, row int, values []any) error {
	if err := f.SetSheetRow(SheetName, cell(1, row), &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// sanitizeExcelCell neutralizes values a spreadsheet would read as a formula.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
