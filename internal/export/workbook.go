package export

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// Sheet is one named table of a workbook.
type Sheet struct {
	Name string
	Rows any
}

// WorkbookSheets builds the default sheet set for snap.
func WorkbookSheets(snap ledger.Snapshot) ([]Sheet, error) {
	sheets := make([]Sheet, 0, len(collections))
	for _, c := range collections {
		rows, err := Rows(snap, c.key)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, Sheet{Name: c.sheet, Rows: rows})
	}
	return sheets, nil
}

// Workbook renders every collection of snap as an XLSX document.
func Workbook(snap ledger.Snapshot) ([]byte, error) {
	sheets, err := WorkbookSheets(snap)
	if err != nil {
		return nil, err
	}
	return WriteWorkbook(sheets)
}

// WriteWorkbook writes one sheet per entry with a bold header row taken from
// the csv tags of the row type. Sheet names are truncated to 30 characters.
func WriteWorkbook(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("export: workbook needs at least one sheet")
	}
	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(`{"font":{"bold":true}}`)
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}
	for i, sheet := range sheets {
		name := SheetName(sheet.Name)
		if i == 0 {
			f.SetSheetName("Sheet1", name)
		} else {
			f.NewSheet(name)
		}
		headers, records, err := table(sheet.Rows)
		if err != nil {
			return nil, fmt.Errorf("export: sheet %s: %w", name, err)
		}
		for col, header := range headers {
			f.SetCellValue(name, cellName(col, 1), header)
		}
		if len(headers) > 0 {
			f.SetCellStyle(name, cellName(0, 1), cellName(len(headers)-1, 1), headerStyle)
		}
		for r, record := range records {
			for col, value := range record {
				axis := cellName(col, r+2)
				if m, ok := value.(money); ok {
					f.SetCellDefault(name, axis, string(m))
					continue
				}
				f.SetCellValue(name, axis, value)
			}
		}
	}
	f.SetActiveSheet(1)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadWorkbook returns the rows of every sheet keyed by sheet name.
func ReadWorkbook(data []byte) (map[string][][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("export: open workbook: %w", err)
	}
	out := make(map[string][][]string)
	for _, name := range f.GetSheetMap() {
		out[name] = f.GetRows(name)
	}
	return out, nil
}

// table flattens a slice of structs into header names and cell values.
func table(rows any) ([]string, [][]any, error) {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return nil, nil, fmt.Errorf("rows must be a slice, got %s", v.Kind())
	}
	elem := v.Type().Elem()
	if elem.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("rows must hold structs, got %s", elem.Kind())
	}
	var headers []string
	var fields []int
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		tag := field.Tag.Get("csv")
		if tag == "" || tag == "-" {
			continue
		}
		headers = append(headers, tag)
		fields = append(fields, i)
	}
	records := make([][]any, 0, v.Len())
	for r := 0; r < v.Len(); r++ {
		item := v.Index(r)
		record := make([]any, 0, len(fields))
		for _, idx := range fields {
			record = append(record, item.Field(idx).Interface())
		}
		records = append(records, record)
	}
	return headers, records, nil
}

// cellName converts a zero-based column and one-based row into A1 notation.
func cellName(col, row int) string {
	name := ""
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name + strconv.Itoa(row)
}
