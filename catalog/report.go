package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-shader-export/export"
	"github.com/xuri/excelize/v2"
)

// ReportFormat selects the catalog report encoding.
type ReportFormat string

const (
	ReportCSV  ReportFormat = "csv"
	ReportJSON ReportFormat = "json"
	ReportXLSX ReportFormat = "xlsx"
)

const reportSheetName = "Shaders"

var reportHeaders = []string{"ID", "Name", "Description", "Tags"}

// ParseReportFormat normalizes a report format name.
func ParseReportFormat(value string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", ReportCSV:
		return ReportCSV, nil
	case ReportJSON:
		return ReportJSON, nil
	case ReportXLSX, "excel":
		return ReportXLSX, nil
	default:
		return "", export.NewError(export.KindValidation, fmt.Sprintf("unsupported report format %q", value), nil)
	}
}

// RenderReport writes the records as a listing in the given format.
func RenderReport(w io.Writer, format ReportFormat, records []ShaderMetadata) error {
	switch format {
	case ReportCSV:
		return renderCSV(w, records)
	case ReportJSON:
		return renderJSON(w, records)
	case ReportXLSX:
		return renderXLSX(w, records)
	default:
		return export.NewError(export.KindValidation, fmt.Sprintf("unsupported report format %q", format), nil)
	}
}

func reportRow(record ShaderMetadata) []string {
	return []string{record.ID, record.Name, record.Description, strings.Join(record.Tags, ", ")}
}

func renderCSV(w io.Writer, records []ShaderMetadata) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeaders); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(reportRow(record)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func renderJSON(w io.Writer, records []ShaderMetadata) error {
	if records == nil {
		records = []ShaderMetadata{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func renderXLSX(w io.Writer, records []ShaderMetadata) error {
	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	defaultSheet := file.GetSheetName(0)
	if defaultSheet != reportSheetName {
		file.SetSheetName(defaultSheet, reportSheetName)
	}

	stream, err := file.NewStreamWriter(reportSheetName)
	if err != nil {
		return err
	}
	headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	headers := make([]interface{}, len(reportHeaders))
	for i, label := range reportHeaders {
		headers[i] = excelize.Cell{StyleID: headerID, Value: label}
	}
	if err := stream.SetRow("A1", headers); err != nil {
		return err
	}

	for i, record := range records {
		row := reportRow(record)
		cells := make([]interface{}, len(row))
		for j, value := range row {
			cells[j] = value
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", i+2), cells); err != nil {
			return err
		}
	}
	if err := stream.Flush(); err != nil {
		return err
	}

	_, err = file.WriteTo(w)
	return err
}
