package output

import (
	"fmt"
	"io"

	"github.com/rodaine/table"
)

// RenderTable renders rows as an aligned table. headerStyle, if non-nil,
// decorates the header line.
func RenderTable(w io.Writer, columns []Column, rows []map[string]string, headerStyle func(string) string) {
	if len(rows) == 0 {
		return
	}

	headers := make([]interface{}, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}

	tbl := table.New(headers...).WithWriter(w)
	if headerStyle != nil {
		tbl.WithHeaderFormatter(func(format string, vals ...interface{}) string {
			return headerStyle(fmt.Sprintf(format, vals...))
		})
	}

	for _, row := range rows {
		rowData := make([]interface{}, len(columns))
		for i, col := range columns {
			value := row[col.Key]
			if col.Width > 0 {
				value = TruncateString(value, col.Width)
			}
			rowData[i] = value
		}
		tbl.AddRow(rowData...)
	}

	tbl.Print()
}

// TruncateString truncates a string to maxLen and adds "..." if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
