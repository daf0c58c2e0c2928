// Package export writes session listings to CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// Field maps a CSV column header to a JSON path inside a session record
type Field struct {
	Header string
	Path   string
}

// DefaultSessionFields is the column set used when the caller does not
// configure its own.
var DefaultSessionFields = []Field{
	{Header: "Name", Path: "name"},
	{Header: "Status", Path: "status"},
	{Header: "Image", Path: "image"},
	{Header: "Type", Path: "type"},
	{Header: "Access Key", Path: "accessKey"},
	{Header: "CPU", Path: "occupiedSlots.cpu"},
	{Header: "Memory", Path: "occupiedSlots.mem"},
	{Header: "Created", Path: "createdAt"},
}

// WriteSessionsCSV writes the sessions as CSV rows with a header line.
// Each field is resolved as a JSON path against the session record, so
// callers can export nested values like occupiedSlots.cpu.
func WriteSessionsCSV(w io.Writer, sessions []model.Session, fields []Field) error {
	if len(fields) == 0 {
		fields = DefaultSessionFields
	}

	writer := csv.NewWriter(w)

	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = field.Header
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, session := range sessions {
		raw, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to encode session %s: %w", session.Name, err)
		}

		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = formatValue(gjson.GetBytes(raw, field.Path))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatValue renders a plucked JSON value as a CSV cell
func formatValue(value gjson.Result) string {
	if !value.Exists() || value.Type == gjson.Null {
		return ""
	}
	if value.IsArray() {
		parts := make([]string, 0, len(value.Array()))
		for _, item := range value.Array() {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, " ")
	}
	return value.String()
}

// DefaultFileName returns a timestamped file name for a session export
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("sessions-%s.csv", now.Format("20060102-150405"))
}
