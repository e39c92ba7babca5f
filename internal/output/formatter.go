package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/termenv"
)

// Formatter is the interface for output formatting. Results go to the
// output writer, status messages, errors and hints to the error writer.
type Formatter interface {
	Print(data any) error
	PrintList(items any, columns []Column) error
	PrintMessage(msg string)
	PrintError(err error)
	PrintHint(msg string)
}

// Column defines a column for table/list output
type Column struct {
	Name  string // Display name
	Key   string // Struct field name or map key
	Width int    // Width for rich mode (0 = auto)
}

// Modes accepted by New.
const (
	ModeJSON  = "json"
	ModePlain = "plain"
	ModeRich  = "rich"
)

// New creates a formatter for the specified mode. Unknown modes fall back
// to plain.
func New(mode string, out, errOut io.Writer) Formatter {
	switch mode {
	case ModeJSON:
		return &jsonFormatter{out: out, errOut: errOut}
	case ModeRich:
		return &richFormatter{
			plainFormatter: plainFormatter{out: out, errOut: errOut},
			profile:        termenv.NewOutput(out).Profile,
		}
	default:
		return &plainFormatter{out: out, errOut: errOut}
	}
}

// NewJSON creates a JSON formatter with optional results-only mode
func NewJSON(resultsOnly bool, out, errOut io.Writer) Formatter {
	return &jsonFormatter{resultsOnly: resultsOnly, out: out, errOut: errOut}
}

// jsonFormatter outputs JSON
type jsonFormatter struct {
	resultsOnly bool
	out         io.Writer
	errOut      io.Writer
}

func (f *jsonFormatter) Print(data any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *jsonFormatter) PrintList(items any, columns []Column) error {
	if f.resultsOnly {
		return f.Print(items)
	}

	v := reflect.Indirect(reflect.ValueOf(items))
	count := 0
	if v.Kind() == reflect.Slice {
		count = v.Len()
	}

	return f.Print(map[string]any{
		"data":  items,
		"count": count,
	})
}

func (f *jsonFormatter) PrintMessage(msg string) {
	fmt.Fprintln(f.errOut, msg)
}

func (f *jsonFormatter) PrintError(err error) {
	enc := json.NewEncoder(f.errOut)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]string{"error": err.Error()})
}

// PrintHint is silent in JSON mode so stderr stays machine-readable.
func (f *jsonFormatter) PrintHint(string) {}

// plainFormatter outputs tab-separated values
type plainFormatter struct {
	out    io.Writer
	errOut io.Writer
}

func (f *plainFormatter) Print(data any) error {
	v := reflect.Indirect(reflect.ValueOf(data))

	if v.Kind() == reflect.Struct {
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			fmt.Fprintf(f.out, "%s\t%v\n", t.Field(i).Name, v.Field(i).Interface())
		}
		return nil
	}

	fmt.Fprintf(f.out, "%v\n", data)
	return nil
}

func (f *plainFormatter) PrintList(items any, columns []Column) error {
	rows, err := tableRows(items, columns)
	if err != nil {
		return err
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	fmt.Fprintln(f.out, strings.Join(headers, "\t"))

	for _, row := range rows {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = row[col.Key]
		}
		fmt.Fprintln(f.out, strings.Join(values, "\t"))
	}

	return nil
}

func (f *plainFormatter) PrintMessage(msg string) {
	fmt.Fprintln(f.errOut, msg)
}

func (f *plainFormatter) PrintError(err error) {
	fmt.Fprintf(f.errOut, "error: %v\n", err)
}

func (f *plainFormatter) PrintHint(msg string) {
	fmt.Fprintf(f.errOut, "hint: %v\n", msg)
}

// richFormatter outputs styled content for a terminal. Styling is skipped
// when the output has no color support.
type richFormatter struct {
	plainFormatter
	profile termenv.Profile
}

func (f *richFormatter) styled() bool {
	return f.profile != termenv.Ascii
}

func (f *richFormatter) render(style lipgloss.Style, s string) string {
	if !f.styled() {
		return s
	}
	return style.Render(s)
}

func (f *richFormatter) Print(data any) error {
	v := reflect.Indirect(reflect.ValueOf(data))

	if v.Kind() == reflect.Struct {
		keyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			fmt.Fprintf(f.out, "%s: %v\n", f.render(keyStyle, t.Field(i).Name), v.Field(i).Interface())
		}
		return nil
	}

	fmt.Fprintf(f.out, "%v\n", data)
	return nil
}

func (f *richFormatter) PrintList(items any, columns []Column) error {
	rows, err := tableRows(items, columns)
	if err != nil {
		return err
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Underline(true)
	RenderTable(f.out, columns, rows, func(s string) string {
		return f.render(headerStyle, s)
	})
	return nil
}

func (f *richFormatter) PrintMessage(msg string) {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fmt.Fprintln(f.errOut, f.render(style, msg))
}

func (f *richFormatter) PrintError(err error) {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	fmt.Fprintln(f.errOut, f.render(style, "error: "+err.Error()))
}

func (f *richFormatter) PrintHint(msg string) {
	style := lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("8"))
	fmt.Fprintln(f.errOut, f.render(style, "hint: "+msg))
}

// tableRows flattens a slice of structs or maps into rows keyed by
// Column.Key.
func tableRows(items any, columns []Column) ([]map[string]string, error) {
	v := reflect.Indirect(reflect.ValueOf(items))
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("PrintList requires a slice")
	}

	rows := make([]map[string]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := reflect.Indirect(v.Index(i))
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			switch item.Kind() {
			case reflect.Map:
				if val := item.MapIndex(reflect.ValueOf(col.Key)); val.IsValid() {
					row[col.Key] = fmt.Sprintf("%v", val.Interface())
				}
			case reflect.Struct:
				if field := item.FieldByName(col.Key); field.IsValid() {
					row[col.Key] = fmt.Sprintf("%v", field.Interface())
				}
			}
		}
		rows[i] = row
	}
	return rows, nil
}
