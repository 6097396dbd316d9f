package handlers

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

func parseOutputFormat(s string) (string, error) {
	switch s {
	case "", OutputTable:
		return OutputTable, nil
	case OutputJSON, OutputYAML:
		return s, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want %s, %s or %s)", s, OutputTable, OutputJSON, OutputYAML)
	}
}

// writeStructured writes v as JSON or YAML. The YAML form follows the json
// tags of v.
func writeStructured(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case OutputYAML:
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// render writes v in the selected structured format, or calls table for the
// default human-readable form.
func (a *app) render(v any, table func() string) error {
	if a.format == OutputTable {
		a.printf("%s\n", table())
		return nil
	}
	return writeStructured(a.out, a.format, v)
}
