package command

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
)

// BatchItem is one entry of a batch export file.
type BatchItem struct {
	ID     string        `json:"id"`
	Format export.Format `json:"format"`
}

// BatchLoader loads batch items from a source.
type BatchLoader func(ctx context.Context) ([]BatchItem, error)

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxItems    int
	MinInterval time.Duration
}

// BatchCommand exports many catalog shaders into one sink.
type BatchCommand struct {
	service   gallery.Service
	sink      export.Sink
	loader    BatchLoader
	cliConfig gcmd.CLIConfig
	limits    BatchLimits
	logger    export.Logger
	sleep     func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// WithBatchLogger sets the batch logger.
func WithBatchLogger(logger export.Logger) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.logger = logger
	}
}

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

// NewBatchExportCommand creates a batch export command. When loader is nil
// the items must come from a file.
func NewBatchExportCommand(svc gallery.Service, sink export.Sink, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		service: svc,
		sink:    sink,
		loader:  loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"shaders-batch"},
			Description: "Export several shaders from a batch file",
			Group:       "shaders",
		},
		logger: export.NopLogger{},
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// Run exports every item and returns the results. Items are exported in
// order; the first failure stops the batch.
func (c *BatchCommand) Run(ctx context.Context, from string) ([]export.ExportResult, error) {
	if c == nil || c.service == nil {
		return nil, errors.New("gallery service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	items, err := c.loadItems(ctx, from)
	if err != nil {
		return nil, err
	}
	if c.limits.MaxItems > 0 && len(items) > c.limits.MaxItems {
		c.logger.Warnf("batch truncated to %d of %d items", c.limits.MaxItems, len(items))
		items = items[:c.limits.MaxItems]
	}

	results := make([]export.ExportResult, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if i > 0 && c.limits.MinInterval > 0 {
			c.sleep(c.limits.MinInterval)
		}
		if strings.TrimSpace(item.ID) == "" {
			return results, errors.New("batch item ID is required", errors.CategoryValidation).
				WithTextCode("BATCH_ITEM_INVALID")
		}
		result, err := c.service.Export(ctx, item.ID, item.Format, c.sink)
		if err != nil {
			return results, err
		}
		c.logger.Infof("batch exported %s as %s", item.ID, result.Filename)
		results = append(results, result)
	}
	return results, nil
}

// CLIHandler exposes the batch via CLI.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions describes batch CLI metadata.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

func (c *BatchCommand) loadItems(ctx context.Context, from string) ([]BatchItem, error) {
	if strings.TrimSpace(from) != "" {
		return LoadBatchFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to a JSON batch file'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.Run(context.Background(), c.From)
	return err
}

// LoadBatchFile reads batch items from a JSON array file.
func LoadBatchFile(path string) ([]BatchItem, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var items []BatchItem
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return items, nil
}
