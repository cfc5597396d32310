package adapters

import (
	"fmt"
	"strings"

	"github.com/Marlvin12/perfit/dom"
	"github.com/Marlvin12/perfit/internal/types"
)

// Canonical size chart columns
const (
	ColumnSize   = "Size"
	ColumnChest  = "Chest"
	ColumnWaist  = "Waist"
	ColumnHips   = "Hips"
	ColumnLength = "Length"
)

var chartColumns = []string{ColumnSize, ColumnChest, ColumnWaist, ColumnHips, ColumnLength}

// headerRules maps header keywords to canonical columns, checked in order.
// "bust" and "chest" share a column.
var headerRules = []struct {
	keyword string
	column  string
}{
	{"size", ColumnSize},
	{"bust", ColumnChest},
	{"chest", ColumnChest},
	{"waist", ColumnWaist},
	{"hip", ColumnHips},
	{"length", ColumnLength},
}

// ExtractSizeChart reads the size chart table at tableSelector and
// normalizes it to the canonical columns
func (b *BaseAdapter) ExtractSizeChart(doc dom.Document, tableSelector string) (*types.SizeChart, error) {
	raw, err := b.ExtractTableData(doc, tableSelector)
	if err != nil {
		return nil, err
	}

	chart := b.FilterSizeChart(raw)
	if chart == nil || len(chart.Rows) == 0 {
		return nil, fmt.Errorf("table %s has no size chart columns", tableSelector)
	}

	return chart, nil
}

// ExtractTableData extracts a table into headers and rows keyed by header.
// Headers come from thead when present, otherwise from the first row.
func (b *BaseAdapter) ExtractTableData(doc dom.Document, tableSelector string) (*types.SizeChart, error) {
	table, ok := doc.QuerySelector(tableSelector)
	if !ok {
		return nil, fmt.Errorf("table not found with selector: %s", tableSelector)
	}

	var headers []string
	var bodyRows []dom.Element
	if headCells := table.QuerySelectorAll("thead th, thead td"); len(headCells) > 0 {
		headers = cellTexts(headCells)
		bodyRows = table.QuerySelectorAll("tbody tr")
	} else if trs := table.QuerySelectorAll("tr"); len(trs) > 0 {
		headers = cellTexts(trs[0].QuerySelectorAll("th, td"))
		bodyRows = trs[1:]
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("no headers found in table")
	}

	var rows []map[string]string
	for _, tr := range bodyRows {
		row := make(map[string]string)
		for j, cell := range tr.QuerySelectorAll("td, th") {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(cell.Text())
			}
		}

		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows found in table")
	}

	return &types.SizeChart{
		Headers: headers,
		Rows:    rows,
	}, nil
}

// FilterSizeChart maps store-specific headers onto the canonical columns and
// drops rows without any measurement. Returns nil when no header is recognized.
func (b *BaseAdapter) FilterSizeChart(sizeChart *types.SizeChart) *types.SizeChart {
	if sizeChart == nil {
		return nil
	}

	// canonical column -> first input header mapped to it
	columnSource := make(map[string]string)
	for _, h := range sizeChart.Headers {
		column := canonicalColumn(h)
		if column == "" {
			continue
		}
		if _, taken := columnSource[column]; !taken {
			columnSource[column] = h
		}
	}

	if len(columnSource) == 0 {
		return nil
	}

	var headers []string
	for _, column := range chartColumns {
		if _, ok := columnSource[column]; ok {
			headers = append(headers, column)
		}
	}

	var filteredRows []map[string]string
	for _, row := range sizeChart.Rows {
		filteredRow := make(map[string]string, len(headers))
		measured := false
		for _, column := range headers {
			value := row[columnSource[column]]
			filteredRow[column] = value
			if column != ColumnSize && value != "" {
				measured = true
			}
		}

		if measured {
			filteredRows = append(filteredRows, filteredRow)
		}
	}

	return &types.SizeChart{
		Headers: headers,
		Rows:    filteredRows,
	}
}

func canonicalColumn(header string) string {
	lower := strings.ToLower(header)
	for _, rule := range headerRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.column
		}
	}
	return ""
}

func cellTexts(cells []dom.Element) []string {
	texts := make([]string, 0, len(cells))
	for _, cell := range cells {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	}
	return texts
}
