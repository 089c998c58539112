package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/Simplici0/supportquote/internal/pricing"
)

// RowIssue describes one substituted or rejected cell. Row is the 1-based
// spreadsheet row, counting the header.
type RowIssue struct {
	Row      int    `json:"row"`
	Field    string `json:"field"`
	Value    string `json:"value"`
	Message  string `json:"message"`
	Rejected bool   `json:"rejected"`
}

// ServiceResult is the outcome of reading service rows.
type ServiceResult struct {
	TotalRows int                       `json:"total_rows"`
	Items     []pricing.ServiceLineItem `json:"items"`
	Issues    []RowIssue                `json:"issues"`
}

// LaborResult is the outcome of reading labor rows.
type LaborResult struct {
	TotalRows int                     `json:"total_rows"`
	Items     []pricing.LaborLineItem `json:"items"`
	Issues    []RowIssue              `json:"issues"`
}

var serviceColumns = []column{
	{key: "offering", aliases: []string{"offering name", "service", "description"}},
	{key: "slc", aliases: []string{"slc code", "service level"}},
	{key: "quantity", aliases: []string{"qty", "units"}},
	{key: "start", aliases: []string{"start date", "from"}},
	{key: "end", aliases: []string{"end date", "to"}},
	{key: "unit_cost_base", aliases: []string{"unit cost", "unit cost usd", "cost", "cost usd"}},
	{key: "unit_cost_local", aliases: []string{"unit cost local", "cost local", "local cost"}},
}

var laborColumns = []column{
	{key: "category", aliases: []string{"rate category", "labor category"}},
	{key: "code", aliases: []string{"definition", "labor code"}},
	{key: "quantity", aliases: []string{"qty", "hours", "units"}},
}

// ServiceRows reads service line items. A non-numeric quantity becomes 1, a
// non-numeric or negative cost becomes 0 and an unparseable date is left
// unset. Each substitution is listed in Issues.
func ServiceRows(r io.Reader, format Format) (ServiceResult, error) {
	headers, rows, err := ReadTable(r, format)
	if err != nil {
		return ServiceResult{}, err
	}
	keys := mapHeaders(headers, serviceColumns)
	if !anyMapped(keys) {
		return ServiceResult{}, fmt.Errorf("no recognized service columns in header %q", strings.Join(headers, ","))
	}

	res := ServiceResult{Items: make([]pricing.ServiceLineItem, 0, len(rows)), Issues: []RowIssue{}}
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		res.TotalRows++
		rowNum := i + 2
		v := rowValues(row, keys)

		item := pricing.ServiceLineItem{
			Offering: v["offering"],
			SLC:      v["slc"],
			Quantity: quantity(rowNum, v["quantity"], &res.Issues),
		}
		item.UnitCostBase = cost(rowNum, "unit_cost_base", v["unit_cost_base"], &res.Issues)
		item.UnitCostLocal = cost(rowNum, "unit_cost_local", v["unit_cost_local"], &res.Issues)
		item.Start = date(rowNum, "start", v["start"], &res.Issues)
		item.End = date(rowNum, "end", v["end"], &res.Issues)

		res.Items = append(res.Items, item)
	}
	return res, nil
}

// LaborRows reads labor line items. Rows whose category is not one of
// categories are rejected; quantity is handled as for services.
func LaborRows(r io.Reader, format Format, categories []string) (LaborResult, error) {
	headers, rows, err := ReadTable(r, format)
	if err != nil {
		return LaborResult{}, err
	}
	keys := mapHeaders(headers, laborColumns)
	if !anyMapped(keys) {
		return LaborResult{}, fmt.Errorf("no recognized labor columns in header %q", strings.Join(headers, ","))
	}

	known := make(map[string]string, len(categories))
	for _, c := range categories {
		known[strings.ToLower(strings.TrimSpace(c))] = c
	}

	res := LaborResult{Items: make([]pricing.LaborLineItem, 0, len(rows)), Issues: []RowIssue{}}
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		res.TotalRows++
		rowNum := i + 2
		v := rowValues(row, keys)

		category, ok := known[strings.ToLower(v["category"])]
		if !ok {
			res.Issues = append(res.Issues, RowIssue{
				Row:      rowNum,
				Field:    "category",
				Value:    v["category"],
				Message:  "unknown labor category, row skipped",
				Rejected: true,
			})
			continue
		}

		res.Items = append(res.Items, pricing.LaborLineItem{
			Category: category,
			Code:     v["code"],
			Quantity: quantity(rowNum, v["quantity"], &res.Issues),
		})
	}
	return res, nil
}

func anyMapped(keys []string) bool {
	for _, k := range keys {
		if k != "" {
			return true
		}
	}
	return false
}

func quantity(row int, raw string, issues *[]RowIssue) int {
	if raw == "" {
		return 1
	}
	v, ok := parseNumber(raw)
	if !ok || v < 1 || v != float64(int(v)) {
		*issues = append(*issues, RowIssue{
			Row:     row,
			Field:   "quantity",
			Value:   raw,
			Message: "quantity must be a whole number of at least 1, using 1",
		})
		return 1
	}
	return int(v)
}

func cost(row int, field, raw string, issues *[]RowIssue) float64 {
	if raw == "" {
		return 0
	}
	v, ok := parseNumber(raw)
	if !ok || v < 0 {
		*issues = append(*issues, RowIssue{
			Row:     row,
			Field:   field,
			Value:   raw,
			Message: "cost must be a non-negative number, using 0",
		})
		return 0
	}
	return v
}

func date(row int, field, raw string, issues *[]RowIssue) pricing.Date {
	if raw == "" {
		return pricing.Date{}
	}
	d, ok := parseDate(raw)
	if !ok {
		*issues = append(*issues, RowIssue{
			Row:     row,
			Field:   field,
			Value:   raw,
			Message: "unrecognized date, left empty",
		})
	}
	return d
}

// Summary is a one-line description of an import for logs and responses.
func Summary(total, imported int, issues []RowIssue) string {
	rejected := 0
	for _, is := range issues {
		if is.Rejected {
			rejected++
		}
	}
	return fmt.Sprintf("%d of %d rows imported, %d values substituted, %d rows rejected",
		imported, total, len(issues)-rejected, rejected)
}
