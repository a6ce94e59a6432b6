package catalogbun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-shader-export/catalog"
	"github.com/goliatone/go-shader-export/export"
	"github.com/uptrace/bun"
)

// Catalog stores shader metadata in a Bun-backed database.
type Catalog struct {
	DB  *bun.DB
	Now func() time.Time
}

// NewCatalog creates a Bun-backed catalog.
func NewCatalog(db *bun.DB) *Catalog {
	return &Catalog{DB: db, Now: time.Now}
}

var _ catalog.Catalog = (*Catalog)(nil)

// CreateSchema creates the shaders table when missing.
func (c *Catalog) CreateSchema(ctx context.Context) error {
	if c == nil || c.DB == nil {
		return export.NewError(export.KindNotImpl, "catalog database not configured", nil)
	}
	_, err := c.DB.NewCreateTable().Model((*shaderModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Put inserts or replaces a record. New records are listed after existing ones.
func (c *Catalog) Put(ctx context.Context, record catalog.ShaderMetadata) error {
	if c == nil || c.DB == nil {
		return export.NewError(export.KindNotImpl, "catalog database not configured", nil)
	}
	if err := record.Validate(); err != nil {
		return err
	}

	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return err
	}

	return c.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(shaderModel)
		err := tx.NewSelect().Model(existing).Where("id = ?", record.ID).Limit(1).Scan(ctx)
		switch {
		case err == nil:
			_, err = tx.NewUpdate().Model((*shaderModel)(nil)).
				Set("name = ?", record.Name).
				Set("description = ?", record.Description).
				Set("tags = ?", tags).
				Set("updated_at = ?", c.now()).
				Where("id = ?", record.ID).
				Exec(ctx)
			return err
		case errors.Is(err, sql.ErrNoRows):
		default:
			return err
		}

		var position int64
		if err := tx.NewSelect().Model((*shaderModel)(nil)).
			ColumnExpr("COALESCE(MAX(position), 0) + 1").
			Scan(ctx, &position); err != nil {
			return err
		}

		model := shaderModel{
			ID:          record.ID,
			Name:        record.Name,
			Description: record.Description,
			Tags:        tags,
			Position:    position,
			UpdatedAt:   c.now(),
		}
		_, err = tx.NewInsert().Model(&model).Exec(ctx)
		return err
	})
}

// Seed puts every record.
func (c *Catalog) Seed(ctx context.Context, records []catalog.ShaderMetadata) error {
	for _, record := range records {
		if err := c.Put(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a record.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if c == nil || c.DB == nil {
		return export.NewError(export.KindNotImpl, "catalog database not configured", nil)
	}
	if id == "" {
		return export.NewError(export.KindValidation, "shader id is required", nil)
	}

	res, err := c.DB.NewDelete().Model((*shaderModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return export.NewError(export.KindNotFound, fmt.Sprintf("shader %q not found", id), nil)
	}
	return nil
}

// List returns every record in insertion order.
func (c *Catalog) List(ctx context.Context) ([]catalog.ShaderMetadata, error) {
	if c == nil || c.DB == nil {
		return nil, export.NewError(export.KindNotImpl, "catalog database not configured", nil)
	}

	models := make([]shaderModel, 0)
	if err := c.DB.NewSelect().Model(&models).Order("position ASC").Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]catalog.ShaderMetadata, 0, len(models))
	for _, model := range models {
		record, err := model.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Get returns the record for id.
func (c *Catalog) Get(ctx context.Context, id string) (catalog.ShaderMetadata, error) {
	if c == nil || c.DB == nil {
		return catalog.ShaderMetadata{}, export.NewError(export.KindNotImpl, "catalog database not configured", nil)
	}
	if id == "" {
		return catalog.ShaderMetadata{}, export.NewError(export.KindValidation, "shader id is required", nil)
	}

	model := new(shaderModel)
	err := c.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.ShaderMetadata{}, export.NewError(export.KindNotFound, fmt.Sprintf("shader %q not found", id), nil)
		}
		return catalog.ShaderMetadata{}, err
	}
	return model.toRecord()
}

// FilterByTag returns the records carrying tag. An empty tag matches all.
func (c *Catalog) FilterByTag(ctx context.Context, tag string) ([]catalog.ShaderMetadata, error) {
	records, err := c.List(ctx)
	if err != nil || tag == "" {
		return records, err
	}
	out := make([]catalog.ShaderMetadata, 0, len(records))
	for _, record := range records {
		if record.HasTag(tag) {
			out = append(out, record)
		}
	}
	return out, nil
}

// Tags returns the distinct tags in first-seen order.
func (c *Catalog) Tags(ctx context.Context) ([]string, error) {
	records, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.CollectTags(records), nil
}

func (c *Catalog) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

type shaderModel struct {
	bun.BaseModel `bun:"table:shaders,alias:shaders"`

	ID          string    `bun:",pk"`
	Name        string    `bun:",notnull"`
	Description string    `bun:"description"`
	Tags        []byte    `bun:"tags"`
	Position    int64     `bun:"position,notnull"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

func (m shaderModel) toRecord() (catalog.ShaderMetadata, error) {
	record := catalog.ShaderMetadata{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
	}
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &record.Tags); err != nil {
			return catalog.ShaderMetadata{}, err
		}
	}
	return record, nil
}
