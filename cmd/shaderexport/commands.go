package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goliatone/go-command/dispatcher"
	trackerbun "github.com/goliatone/go-shader-export/adapters/tracker/bun"
	"github.com/goliatone/go-shader-export/catalog"
	"github.com/goliatone/go-shader-export/command"
	"github.com/goliatone/go-shader-export/export"
	shaderqry "github.com/goliatone/go-shader-export/query"
	"github.com/olekukonko/tablewriter"
)

// ExportCmd exports a catalog shader or a pair of stage files.
type ExportCmd struct {
	ID       string `arg:"" optional:"" help:"Catalog shader ID."`
	Format   string `short:"f" help:"Export format: html, react, vue, js, angular, next."`
	Title    string `help:"Title used for stage files."`
	Fragment string `help:"Fragment stage file." type:"existingfile"`
	Vertex   string `help:"Vertex stage file." type:"existingfile"`
}

func (c *ExportCmd) Run(ctx context.Context, app *App) error {
	msg := command.ExportShader{
		ID:     c.ID,
		Title:  c.Title,
		Format: export.Format(c.Format),
		Sink:   app.Store,
	}
	if c.Fragment != "" || c.Vertex != "" {
		if c.Fragment == "" || c.Vertex == "" {
			return export.NewError(export.KindValidation, "both --fragment and --vertex are required", nil)
		}
		src, err := readStages(c.Fragment, c.Vertex)
		if err != nil {
			return err
		}
		if msg.Title == "" {
			msg.Title = strings.TrimSuffix(filepath.Base(c.Fragment), filepath.Ext(c.Fragment))
		}
		msg.Sources = &src
	}

	result, err := dispatcher.DispatchWithResult[command.ExportShader, export.ExportResult](ctx, msg)
	if err != nil {
		return err
	}
	if result.RequestedFormat != "" {
		app.Logger.Warnf("format %q is not supported, exported %s instead", result.RequestedFormat, result.Format)
	}
	if result.FellBack {
		app.Logger.Warnf("archive unavailable, wrote %d files instead of %s", len(result.Files), result.Filename)
		for _, name := range result.Files {
			fmt.Fprintf(app.Out, "%s\n", filepath.Join(app.Store.Root, name))
		}
		return nil
	}
	app.Logger.Success("exported %s (%s, %s)", result.Filename, result.Format, humanize.Bytes(uint64(result.Bytes)))
	fmt.Fprintf(app.Out, "%s\n", filepath.Join(app.Store.Root, result.Filename))
	return nil
}

func readStages(fragmentPath, vertexPath string) (export.SourcePair, error) {
	fragment, err := os.ReadFile(fragmentPath)
	if err != nil {
		return export.SourcePair{}, err
	}
	vertex, err := os.ReadFile(vertexPath)
	if err != nil {
		return export.SourcePair{}, err
	}
	return export.SourcePair{Fragment: string(fragment), Vertex: string(vertex)}, nil
}

// ListCmd lists catalog shaders.
type ListCmd struct {
	Tag  string `short:"t" help:"Only list shaders with this tag."`
	JSON bool   `name:"json" help:"Print JSON instead of a table."`
}

func (c *ListCmd) Run(ctx context.Context, app *App) error {
	records, err := dispatcher.Query[shaderqry.ListShaders, []catalog.ShaderMetadata](ctx, shaderqry.ListShaders{Tag: c.Tag})
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(app.Out, records)
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{record.ID, record.Name, strings.Join(record.Tags, ", "), record.Description})
	}
	renderTable(app.Out, []string{"ID", "Name", "Tags", "Description"}, rows)
	return nil
}

// FormatsCmd lists the registered export formats.
type FormatsCmd struct{}

func (c *FormatsCmd) Run(ctx context.Context, app *App) error {
	options, err := dispatcher.Query[shaderqry.ListFormats, []export.FormatOption](ctx, shaderqry.ListFormats{})
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(options))
	for _, option := range options {
		output := option.Extension
		if option.Archive {
			output = "zip"
		}
		rows = append(rows, []string{string(option.Format), option.Label, output})
	}
	renderTable(app.Out, []string{"Format", "Label", "Output"}, rows)
	return nil
}

// NewCmd scaffolds a shader directory.
type NewCmd struct {
	Name string `arg:"" help:"Shader ID, used as the directory name."`
	Root string `help:"Directory the shader is created in. Defaults to --shaders or ./shaders." type:"path"`
}

func (c *NewCmd) Run(ctx context.Context, app *App) error {
	root := c.Root
	if root == "" {
		root = app.Config.Catalog.ShaderDir
	}
	if root == "" {
		root = "shaders"
	}
	var dir string
	if err := dispatcher.Dispatch(ctx, command.ScaffoldShader{Root: root, Name: c.Name, Result: &dir}); err != nil {
		return err
	}
	app.Logger.Success("created %s", dir)
	return nil
}

// ReportCmd writes a catalog report.
type ReportCmd struct {
	Format string `short:"f" default:"csv" help:"Report format: csv, json, xlsx."`
	Output string `help:"File to write. Defaults to stdout." type:"path"`
	Tag    string `short:"t" help:"Only report shaders with this tag."`
}

func (c *ReportCmd) Run(ctx context.Context, app *App) error {
	format, err := catalog.ParseReportFormat(c.Format)
	if err != nil {
		return err
	}
	records, err := app.Catalog.FilterByTag(ctx, c.Tag)
	if err != nil {
		return err
	}
	if c.Output == "" {
		return catalog.RenderReport(app.Out, format, records)
	}

	file, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	if err := catalog.RenderReport(file, format, records); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	app.Logger.Success("wrote %d shaders to %s", len(records), c.Output)
	return nil
}

// ThumbnailCmd renders a preview image with headless Chromium.
type ThumbnailCmd struct {
	ID     string `arg:"" help:"Catalog shader ID."`
	Output string `help:"PNG file to write. Defaults to <id>.png." type:"path"`
}

func (c *ThumbnailCmd) Run(ctx context.Context, app *App) error {
	image, err := app.Service.Preview(ctx, c.ID)
	if err != nil {
		return err
	}
	target := c.Output
	if target == "" {
		target = c.ID + ".png"
	}
	if err := os.WriteFile(target, image, 0o644); err != nil {
		return err
	}
	app.Logger.Success("wrote %s (%s)", target, humanize.Bytes(uint64(len(image))))
	return nil
}

// BatchCmd exports several shaders from a JSON batch file.
type BatchCmd struct {
	From string `arg:"" help:"JSON file holding a list of id and format pairs." type:"existingfile"`
}

func (c *BatchCmd) Run(ctx context.Context, app *App) error {
	batch := command.NewBatchExportCommand(app.Service, app.Store, nil,
		command.WithBatchLimits(command.BatchLimits{
			MaxItems:    app.Config.Batch.MaxItems,
			MinInterval: app.Config.Batch.MinInterval,
		}),
		command.WithBatchLogger(app.Logger),
	)
	results, err := batch.Run(ctx, c.From)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(results))
	var total int64
	for _, result := range results {
		total += result.Bytes
		rows = append(rows, []string{result.Title, string(result.Format), result.Filename, humanize.Bytes(uint64(result.Bytes))})
	}
	renderTable(app.Out, []string{"Shader", "Format", "File", "Size"}, rows)
	app.Logger.Success("exported %d shaders (%s)", len(results), humanize.Bytes(uint64(total)))
	return nil
}

// HistoryCmd lists recorded exports.
type HistoryCmd struct {
	Format string        `short:"f" help:"Only list exports in this format."`
	State  string        `help:"Only list exports in this state."`
	Since  time.Duration `help:"Only list exports newer than this age."`
	Limit  int           `default:"20" help:"Maximum rows."`
	JSON   bool          `name:"json" help:"Print JSON instead of a table."`
}

func (c *HistoryCmd) Run(ctx context.Context, app *App) error {
	if app.Tracker == nil {
		app.Logger.Warnf("export history is kept in memory only, pass --db to persist it")
		results, err := dispatcher.Query[shaderqry.ExportHistory, []export.ExportResult](ctx, shaderqry.ExportHistory{Format: export.Format(c.Format)})
		if err != nil {
			return err
		}
		if c.JSON {
			return writeJSON(app.Out, results)
		}
		rows := make([][]string, 0, len(results))
		for _, result := range results {
			rows = append(rows, []string{result.ID, string(result.Format), result.Filename, "completed", humanize.Bytes(uint64(result.Bytes)), humanize.Time(result.CreatedAt)})
		}
		renderTable(app.Out, historyHeaders, rows)
		return nil
	}

	filter := trackerbun.Filter{
		Format: export.Format(c.Format),
		State:  c.State,
		Limit:  c.Limit,
	}
	if c.Since > 0 {
		filter.Since = time.Now().Add(-c.Since)
	}
	records, err := app.Tracker.List(ctx, filter)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(app.Out, records)
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		format := string(record.Format)
		if record.RequestedFormat != "" {
			format = fmt.Sprintf("%s (asked %s)", record.Format, record.RequestedFormat)
		}
		file := record.Filename
		if record.FellBack {
			file = strconv.Itoa(len(record.Files)) + " files"
		}
		rows = append(rows, []string{record.ID, format, file, record.State, humanize.Bytes(uint64(record.Bytes)), humanize.Time(record.CreatedAt)})
	}
	renderTable(app.Out, historyHeaders, rows)
	return nil
}

var historyHeaders = []string{"ID", "Format", "File", "State", "Size", "When"}

// PruneCmd removes downloads older than the retention window.
type PruneCmd struct {
	OlderThan time.Duration `help:"Delete downloads older than this. Defaults to export.retention."`
}

func (c *PruneCmd) Run(ctx context.Context, app *App) error {
	window := c.OlderThan
	if window <= 0 {
		window = app.Config.Export.Retention
	}
	if window <= 0 {
		return export.NewError(export.KindValidation, "a retention window is required, set --older-than or export.retention", nil)
	}
	removed, err := app.Store.Prune(ctx, window)
	if err != nil {
		return err
	}
	var freed int64
	for _, meta := range removed {
		freed += meta.Size
		app.Logger.Debugf("removed %s saved %s", meta.Filename, humanize.Time(meta.SavedAt))
	}
	app.Logger.Success("removed %d downloads, freed %s", len(removed), humanize.Bytes(uint64(freed)))
	return nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
