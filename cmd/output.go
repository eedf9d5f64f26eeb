package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const maxCellWidth = 48

// render prints result in the configured output format. text, when not
// nil, renders the human readable form; otherwise result is printed as
// key/value pairs and tables.
func render(cmd *cobra.Command, result any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()

	switch currentFormat() {
	case "json":
		return writeJSON(w, result)
	case "yaml":
		return writeYAML(w, result)
	default:
		if text != nil {
			return text(w)
		}
		return writeText(w, result)
	}
}

func currentFormat() string {
	if jsonOutput {
		return "json"
	}
	if cfg != nil && cfg.Output.Format != "" {
		return cfg.Output.Format
	}
	return "text"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plain(v)); err != nil {
		return err
	}
	return enc.Close()
}

// plain converts json.Number values and typed results into plain values
func plain(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = plain(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = plain(val)
		}
		return out
	case nil, string, bool, int, int64, float64:
		return x
	default:
		// Structs go through their JSON form so field names match the json output
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		var generic any
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil {
			return fmt.Sprint(x)
		}
		return plain(generic)
	}
}

// writeText prints scalars as "key: value" lines and lists of objects as tables
func writeText(w io.Writer, v any) error {
	obj, ok := plain(v).(map[string]any)
	if !ok {
		_, err := fmt.Fprintln(w, formatValue(plain(v)))
		return err
	}

	var lists []string
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		if rows, ok := recordList(obj[key]); ok && len(rows) > 0 {
			lists = append(lists, key)
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", key, formatValue(obj[key]))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, key := range lists {
		rows, _ := recordList(obj[key])
		fmt.Fprintf(w, "\n%s (%d):\n", key, len(rows))
		if err := writeTable(w, rows); err != nil {
			return err
		}
	}
	return nil
}

func recordList(v any) ([]map[string]any, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		rows = append(rows, row)
	}
	return rows, true
}

// writeTable prints rows with the union of their scalar columns. id comes first.
func writeTable(w io.Writer, rows []map[string]any) error {
	seen := map[string]bool{}
	for _, row := range rows {
		for k, v := range row {
			switch v.(type) {
			case map[string]any, []any:
				continue
			}
			seen[k] = true
		}
	}
	columns := slices.Sorted(maps.Keys(seen))
	if i := slices.Index(columns, "id"); i > 0 {
		columns = append([]string{"id"}, slices.Delete(columns, i, i+1)...)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = truncate(formatValue(row[c]), maxCellWidth)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case map[string]any, []any:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	default:
		return fmt.Sprint(x)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
