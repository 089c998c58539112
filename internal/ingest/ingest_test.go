package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestFormatFromName(t *testing.T) {
	cases := map[string]Format{"lines.CSV": FormatCSV, "quote.xlsx": FormatXLSX}
	for name, want := range cases {
		got, err := FormatFromName(name)
		if err != nil || got != want {
			t.Fatalf("FormatFromName(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := FormatFromName("quote.xls"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadTable_HeaderOnly(t *testing.T) {
	_, _, err := ReadTable(strings.NewReader("Offering,Qty\n"), FormatCSV)
	if err == nil || !strings.Contains(err.Error(), "at least one data row") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMapHeaders(t *testing.T) {
	keys := mapHeaders([]string{" Offering *", "QTY", "Unit Cost (USD)", "Unit_Cost_Local", "Notes"}, serviceColumns)
	want := []string{"offering", "quantity", "unit_cost_base", "unit_cost_local", ""}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("column %d mapped to %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestServiceRows_CSVSubstitutesBadValues(t *testing.T) {
	input := strings.Join([]string{
		"Offering,SLC,Qty,Start Date,End Date,Unit Cost",
		"IBM Support for Red Hat,M5B,2,2026-01-01,2026-12-31,\"1,250.50\"",
		"Relocation Services - Packaging,,many,31/01/2026,soon,abc",
		",,,,,",
		"System Technical Support Service-MVS-STSS,M2F,0,,,-3",
		"IBM Support for Red Hat,,1,,,Inf",
		"IBM Support for Red Hat,,NaN,,,Infinity",
		"",
	}, "\n")

	res, err := ServiceRows(strings.NewReader(input), FormatCSV)
	if err != nil {
		t.Fatalf("ServiceRows() error = %v", err)
	}
	if res.TotalRows != 5 || len(res.Items) != 5 {
		t.Fatalf("expected 5 rows, got total=%d items=%d", res.TotalRows, len(res.Items))
	}

	first := res.Items[0]
	if first.Quantity != 2 || first.UnitCostBase != 1250.50 || first.SLC != "M5B" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.Start.String() != "2026-01-01" || first.End.String() != "2026-12-31" {
		t.Fatalf("unexpected dates: %s..%s", first.Start, first.End)
	}

	second := res.Items[1]
	if second.Quantity != 1 || second.UnitCostBase != 0 {
		t.Fatalf("expected safe defaults, got %+v", second)
	}
	if second.Start.String() != "2026-01-31" || !second.End.IsZero() {
		t.Fatalf("unexpected dates: %s..%s", second.Start, second.End)
	}

	third := res.Items[2]
	if third.Quantity != 1 || third.UnitCostBase != 0 || !third.Start.IsZero() {
		t.Fatalf("expected safe defaults, got %+v", third)
	}
	for _, item := range res.Items[3:] {
		if item.Quantity != 1 || item.UnitCostBase != 0 {
			t.Fatalf("expected non-finite values replaced, got %+v", item)
		}
	}

	want := []RowIssue{
		{Row: 3, Field: "quantity", Value: "many"},
		{Row: 3, Field: "unit_cost_base", Value: "abc"},
		{Row: 3, Field: "end", Value: "soon"},
		{Row: 5, Field: "quantity", Value: "0"},
		{Row: 5, Field: "unit_cost_base", Value: "-3"},
		{Row: 6, Field: "unit_cost_base", Value: "Inf"},
		{Row: 7, Field: "quantity", Value: "NaN"},
		{Row: 7, Field: "unit_cost_base", Value: "Infinity"},
	}
	if len(res.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), res.Issues)
	}
	for i, w := range want {
		got := res.Issues[i]
		if got.Row != w.Row || got.Field != w.Field || got.Value != w.Value || got.Rejected {
			t.Fatalf("issue %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestServiceRows_UnrecognizedHeader(t *testing.T) {
	_, err := ServiceRows(strings.NewReader("a,b\n1,2\n"), FormatCSV)
	if err == nil || !strings.Contains(err.Error(), "no recognized service columns") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Offering", "Qty", "Start", "End", "Unit Cost Local"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"IBM Support for Red Hat", 3, "2026-01-01", 46387, 37752.25})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	_ = f.Close()

	res, err := ServiceRows(bytes.NewReader(buf.Bytes()), FormatXLSX)
	if err != nil {
		t.Fatalf("ServiceRows() error = %v", err)
	}
	if len(res.Items) != 1 || len(res.Issues) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	item := res.Items[0]
	if item.Quantity != 3 || item.UnitCostLocal != 37752.25 {
		t.Fatalf("unexpected item: %+v", item)
	}
	// Serial 46387 is 2026-12-31.
	if item.End.String() != "2026-12-31" {
		t.Fatalf("serial date not converted, got %s", item.End)
	}
}

func TestLaborRows_RejectsUnknownCategory(t *testing.T) {
	input := strings.Join([]string{
		"Category,Code,Hours",
		"machine category,A,4",
		"Plumbing,P1,2",
		"Brand Rate Full,B1,x",
	}, "\n")

	res, err := LaborRows(strings.NewReader(input), FormatCSV, []string{"Machine Category", "Brand Rate Full"})
	if err != nil {
		t.Fatalf("LaborRows() error = %v", err)
	}
	if res.TotalRows != 3 || len(res.Items) != 2 {
		t.Fatalf("expected 2 of 3 rows, got %+v", res)
	}
	if res.Items[0].Category != "Machine Category" || res.Items[0].Quantity != 4 {
		t.Fatalf("unexpected first item: %+v", res.Items[0])
	}
	if res.Items[1].Quantity != 1 {
		t.Fatalf("expected quantity default, got %+v", res.Items[1])
	}

	if len(res.Issues) != 2 || !res.Issues[0].Rejected || res.Issues[0].Row != 3 || res.Issues[1].Field != "quantity" {
		t.Fatalf("unexpected issues: %+v", res.Issues)
	}
	if got := Summary(res.TotalRows, len(res.Items), res.Issues); got != "2 of 3 rows imported, 1 values substituted, 1 rows rejected" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"10":        10,
		" 1,234.5 ": 1234.5,
		"12,5":      12.5,
		"$ 99":      99,
		"R$ 7.25":   7.25,
	}
	for in, want := range cases {
		got, ok := parseNumber(in)
		if !ok || got != want {
			t.Fatalf("parseNumber(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	for _, in := range []string{"ten", "NaN", "Inf", "-Infinity", "+inf"} {
		if _, ok := parseNumber(in); ok {
			t.Fatalf("parseNumber(%q) should fail", in)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-03-04", "04/03/2026", "4/3/2026", "03-04-26", "46085"} {
		d, ok := parseDate(in)
		if !ok || !d.Equal(want) {
			t.Fatalf("parseDate(%q) = %s, %v", in, d, ok)
		}
	}
}
