// Package importer reads nesting inputs into the model: spreadsheet order
// lists (CSV and Excel) and DXF outline files. It supports automatic CSV
// delimiter detection, flexible column mapping, and case-insensitive header
// recognition in both English and Russian.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/CarpetNest/internal/model"
	"github.com/xuri/excelize/v2"
)

// OrderRow is one parsed line of an order sheet: a single DXF outline to be
// cut a number of times for one customer order.
type OrderRow struct {
	Filename string
	OrderID  string
	Color    string
	Priority model.Priority
	Quantity int
}

// ImportResult holds the results of an order sheet import.
type ImportResult struct {
	Rows     []OrderRow
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Filename int
	OrderID  int
	Color    int
	Priority int
	Quantity int
}

// Canonical colors produced by NormalizeColor. Inventory colors must use the
// same names for allocation color matching to work.
const (
	colorBlack = "black"
	colorGrey  = "grey"
	colorWhite = "white"
)

// headerAliases maps canonical column names to their accepted aliases (all
// lowercase). Russian aliases follow the workshop's order spreadsheets.
var headerAliases = map[string][]string{
	"filename": {"file", "filename", "file name", "dxf", "dxf file", "path", "файл", "имя файла", "чертеж", "чертёж"},
	"order":    {"order", "order id", "order no", "order number", "заказ", "номер заказа", "zakaz", "артикул"},
	"color":    {"color", "colour", "цвет"},
	"priority": {"priority", "prio", "приоритет"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces", "количество", "кол-во", "шт"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV
// delimiter. It tries comma, semicolon, tab, and pipe. The delimiter that
// produces the most consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score: count how many rows have the same column count as the first row.
		// Only consider delimiters that produce more than 1 column.
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column
// role. Returns the mapping and true if a header was detected, or a default
// positional mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Filename: -1,
		OrderID:  -1,
		Color:    -1,
		Priority: -1,
		Quantity: -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					switch role {
					case "filename":
						if mapping.Filename == -1 {
							mapping.Filename = i
						}
					case "order":
						if mapping.OrderID == -1 {
							mapping.OrderID = i
						}
					case "color":
						if mapping.Color == -1 {
							mapping.Color = i
						}
					case "priority":
						if mapping.Priority == -1 {
							mapping.Priority = i
						}
					case "quantity":
						if mapping.Quantity == -1 {
							mapping.Quantity = i
						}
					}
				}
			}
		}
	}

	if !isHeader {
		// Fall back to positional mapping: Filename, Order, Color, Priority, Quantity
		return ColumnMapping{
			Filename: 0,
			OrderID:  1,
			Color:    2,
			Priority: 3,
			Quantity: 4,
		}, false
	}

	return mapping, true
}

// NormalizeColor maps free-form color text onto the canonical stock colors.
// The order sheets come from a Russian-speaking workshop, so Russian and
// English spellings are both accepted. It returns the canonical color and a
// boolean indicating whether the text was recognized; unrecognized or empty
// values fall back to grey, the bulk of the stock.
func NormalizeColor(s string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(s))
	switch {
	case c == "":
		return colorGrey, true
	case strings.Contains(c, "черн"), strings.Contains(c, "чёрн"), strings.Contains(c, "black"):
		return colorBlack, true
	case strings.Contains(c, "сер"), strings.Contains(c, "grey"), strings.Contains(c, "gray"):
		return colorGrey, true
	case strings.Contains(c, "бел"), strings.Contains(c, "white"):
		return colorWhite, true
	default:
		return colorGrey, false
	}
}

// parsePriority converts a priority cell to a model.Priority value.
// It returns the priority and a boolean indicating whether the string was
// recognized.
func parsePriority(s string) (model.Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "main", "основной", "обязательный":
		return model.PriorityMandatory, true
	case "2", "filler", "доп", "наполнитель":
		return model.PriorityFiller, true
	default:
		return model.PriorityMandatory, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts an OrderRow from a row using the given column mapping.
// Returns the order row, any error message, and any warning messages.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (OrderRow, string, []string) {
	filename := getCell(row, mapping.Filename)
	if filename == "" {
		return OrderRow{}, fmt.Sprintf("%s: Missing DXF filename", rowLabel), nil
	}

	orderID := getCell(row, mapping.OrderID)
	if orderID == "" {
		return OrderRow{}, fmt.Sprintf("%s: Missing order ID", rowLabel), nil
	}

	var warnings []string

	colorStr := getCell(row, mapping.Color)
	color, known := NormalizeColor(colorStr)
	if !known {
		warnings = append(warnings, fmt.Sprintf("%s: Unknown color '%s', using %s", rowLabel, colorStr, color))
	}

	priority := model.PriorityMandatory
	prioStr := getCell(row, mapping.Priority)
	if prioStr != "" {
		p, ok := parsePriority(prioStr)
		if ok {
			priority = p
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown priority '%s', defaulting to mandatory", rowLabel, prioStr))
		}
	}

	// Quantity is optional: most mats are cut once per order.
	qty := 1
	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr != "" {
		q, err := strconv.Atoi(qtyStr)
		if err != nil {
			return OrderRow{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), warnings
		}
		qty = q
	}
	if qty <= 0 {
		return OrderRow{}, fmt.Sprintf("%s: Quantity must be positive", rowLabel), warnings
	}

	return OrderRow{
		Filename: filename,
		OrderID:  orderID,
		Color:    color,
		Priority: priority,
		Quantity: qty,
	}, "", warnings
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportOrders imports order rows from a spreadsheet, choosing the parser by
// file extension. Excel files go through excelize, everything else is read as
// CSV.
func ImportOrders(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls", ".xlsm":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

// ImportCSV imports order rows from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	result = importFromRows(records, "Line", result.Warnings)
	return result
}

// ImportCSVFromReader imports order rows from a CSV reader with a specific
// delimiter. This is useful for testing or when the delimiter is already
// known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports order rows from an Excel (.xlsx, .xls) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into order rows.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	// Detect columns from first row
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		// Validate that required columns were found
		missing := []string{}
		if mapping.Filename == -1 {
			missing = append(missing, "File")
		}
		if mapping.OrderID == -1 {
			missing = append(missing, "Order")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else {
		// No recognized header: if the first cell does not look like a DXF
		// path the row is probably an unfamiliar header. Skip it but keep
		// the positional mapping.
		if len(rows[0]) >= 2 && !strings.Contains(strings.ToLower(getCell(rows[0], 0)), ".dxf") {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		orderRow, errMsg, warnings := parseRow(row, mapping, rowLabel)

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)

		result.Rows = append(result.Rows, orderRow)
	}

	return result
}
