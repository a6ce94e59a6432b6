package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-shader-export/config"
)

// CLI is the shaderexport command line.
type CLI struct {
	Config  string `help:"Path to a YAML config file." type:"path" env:"SHADER_EXPORT_CONFIG"`
	DB      string `name:"db" help:"SQLite DSN for the catalog and export history."`
	Shaders string `help:"Directory holding <id>/vertex.glsl and <id>/fragment.glsl." type:"path"`
	Seed    string `help:"YAML file seeding the catalog." type:"path"`
	Out     string `short:"o" help:"Directory downloads are written to." type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging."`
	NoColor bool   `help:"Disable colored output."`

	Export    ExportCmd    `cmd:"" help:"Export a shader to a download."`
	List      ListCmd      `cmd:"" help:"List catalog shaders."`
	Formats   FormatsCmd   `cmd:"" help:"List export formats."`
	New       NewCmd       `cmd:"" help:"Create a shader from the starter templates."`
	Report    ReportCmd    `cmd:"" help:"Write a catalog report."`
	Thumbnail ThumbnailCmd `cmd:"" help:"Render a shader preview image."`
	Batch     BatchCmd     `cmd:"" help:"Export the shaders listed in a JSON batch file."`
	History   HistoryCmd   `cmd:"" help:"Show recorded exports."`
	Prune     PruneCmd     `cmd:"" help:"Delete old downloads from the output directory."`
	Serve     ServeCmd     `cmd:"" help:"Serve the shader gallery over HTTP."`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...kong.Option) int {
	var cli CLI
	options := append([]kong.Option{
		kong.Name("shaderexport"),
		kong.Description("Export GLSL shaders as HTML, React, Vue, JavaScript, Angular, and Next.js downloads."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	}, opts...)

	parser, err := kong.New(&cli, options...)
	if err != nil {
		fmt.Fprintf(stderr, "shaderexport: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%v", err)
		return 2
	}

	logger := NewConsoleLogger(stderr, "shaderexport", cli.Verbose, cli.NoColor)
	cfg, err := cli.resolveConfig(kctx.Command())
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	app, err := NewApp(ctx, cfg, logger, stdout)
	if err != nil {
		logger.Errorf("failed to create app: %v", err)
		return 1
	}
	defer app.Close()

	if err := kctx.Run(app); err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	return 0
}

func (c *CLI) resolveConfig(command string) (config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return config.Config{}, err
	}
	if c.DB != "" {
		cfg.Catalog.Database = c.DB
	}
	if c.Shaders != "" {
		cfg.Catalog.ShaderDir = c.Shaders
	}
	if c.Seed != "" {
		cfg.Catalog.SeedFile = c.Seed
	}
	if c.Out != "" {
		cfg.Export.OutputDir = c.Out
	}
	if strings.HasPrefix(command, "thumbnail") {
		cfg.Preview.Enabled = true
	}
	return cfg, nil
}
