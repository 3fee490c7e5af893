package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/yourusername/vornify-cli/internal/models"
)

// Color functions
var (
	SuccessColor = color.New(color.FgGreen, color.Bold)
	ErrorColor   = color.New(color.FgRed, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	KeyColor     = color.New(color.FgYellow)
)

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintError writes a red error line, or a plain one when color is off
func PrintError(w io.Writer, msg string) {
	if color.NoColor {
		fmt.Fprintln(w, "Error:", msg)
		return
	}
	ErrorColor.Fprint(w, "✗ Error: ")
	fmt.Fprintln(w, msg)
}

// PrintSuccess writes a green check line
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if color.NoColor {
		fmt.Fprintln(w, msg)
		return
	}
	SuccessColor.Fprintf(w, "✓ %s\n", msg)
}

// PrintKeyValue writes "key: value" with a highlighted key
func PrintKeyValue(w io.Writer, key string, value interface{}) {
	KeyColor.Fprintf(w, "%s: ", key)
	fmt.Fprintln(w, value)
}

// PrintEnvelope prints the outcome and payload of a response envelope
func PrintEnvelope(w io.Writer, resp *models.ResponseEnvelope) error {
	if resp.OK() {
		PrintSuccess(w, "%s", "Success")
	} else {
		PrintError(w, resp.GetError())
	}
	if resp.Message != "" && resp.OK() {
		PrintKeyValue(w, "Message", resp.Message)
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}

	var data interface{}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return err
	}
	switch v := data.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			PrintKeyValue(w, k, compact(v[k]))
		}
		return nil
	default:
		return PrintJSON(w, data)
	}
}

func compact(v interface{}) string {
	switch val := v.(type) {
	case string:
		return truncate(val, 120)
	case nil:
		return "-"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return truncate(string(b), 120)
	}
}
