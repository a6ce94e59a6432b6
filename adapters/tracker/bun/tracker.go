package trackerbun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-shader-export/export"
	"github.com/uptrace/bun"
)

// Export states recorded by the tracker.
const (
	StateGenerated = "generated"
	StateArchived  = "archived"
	StateFallback  = "fallback"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Record is one tracked export.
type Record struct {
	ID              string        `json:"id"`
	Format          export.Format `json:"format"`
	RequestedFormat export.Format `json:"requested_format,omitempty"`
	Title           string        `json:"title"`
	Filename        string        `json:"filename,omitempty"`
	Files           []string      `json:"files,omitempty"`
	State           string        `json:"state"`
	Archived        bool          `json:"archived"`
	FellBack        bool          `json:"fell_back"`
	Bytes           int64         `json:"bytes"`
	Error           string        `json:"error,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	CompletedAt     time.Time     `json:"completed_at,omitempty"`
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Format export.Format
	State  string
	Since  time.Time
	Limit  int
}

// Tracker persists export lifecycle events in a Bun-backed database. It is
// installed as the exporter's ChangeEmitter.
type Tracker struct {
	DB  *bun.DB
	Now func() time.Time
}

var _ export.ChangeEmitter = (*Tracker)(nil)

// NewTracker creates a Bun-backed tracker.
func NewTracker(db *bun.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now}
}

// CreateSchema creates the export table if it does not exist.
func (t *Tracker) CreateSchema(ctx context.Context) error {
	if t == nil || t.DB == nil {
		return export.NewError(export.KindNotImpl, "tracker database not configured", nil)
	}
	_, err := t.DB.NewCreateTable().Model((*recordModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Emit records an export lifecycle event.
func (t *Tracker) Emit(ctx context.Context, evt export.ChangeEvent) error {
	if t == nil || t.DB == nil {
		return export.NewError(export.KindNotImpl, "tracker database not configured", nil)
	}
	if evt.ExportID == "" {
		return export.NewError(export.KindValidation, "export ID is required", nil)
	}

	switch evt.Name {
	case "export.generated":
		created := evt.Result.CreatedAt
		if created.IsZero() {
			created = evt.Timestamp
		}
		if created.IsZero() {
			created = t.now()
		}
		model := recordModel{
			ID:              evt.ExportID,
			Format:          string(evt.Format),
			RequestedFormat: string(evt.Result.RequestedFormat),
			Title:           evt.Title,
			State:           StateGenerated,
			CreatedAt:       created,
		}
		_, err := t.DB.NewInsert().Model(&model).Exec(ctx)
		return err
	case "export.archived":
		return t.update(ctx, evt.ExportID, map[string]any{
			"state":    StateArchived,
			"archived": true,
		})
	case "export.fallback":
		return t.update(ctx, evt.ExportID, map[string]any{
			"state":     StateFallback,
			"fell_back": true,
		})
	case "export.failed":
		message := fmt.Sprint(evt.Metadata["error"])
		return t.update(ctx, evt.ExportID, map[string]any{
			"state":        StateFailed,
			"error":        message,
			"completed_at": t.stamp(evt),
		})
	case "export.completed":
		files, err := json.Marshal(evt.Result.Files)
		if err != nil {
			return err
		}
		return t.update(ctx, evt.ExportID, map[string]any{
			"state":        StateCompleted,
			"filename":     evt.Result.Filename,
			"files":        files,
			"archived":     evt.Result.Archived,
			"fell_back":    evt.Result.FellBack,
			"bytes":        evt.Result.Bytes,
			"completed_at": t.stamp(evt),
		})
	default:
		return nil
	}
}

// Status returns one export record.
func (t *Tracker) Status(ctx context.Context, id string) (Record, error) {
	if t == nil || t.DB == nil {
		return Record{}, export.NewError(export.KindNotImpl, "tracker database not configured", nil)
	}
	if id == "" {
		return Record{}, export.NewError(export.KindValidation, "export ID is required", nil)
	}

	model := new(recordModel)
	err := t.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, export.NewError(export.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
		}
		return Record{}, err
	}
	return model.toRecord()
}

// List returns records matching filter, newest first.
func (t *Tracker) List(ctx context.Context, filter Filter) ([]Record, error) {
	if t == nil || t.DB == nil {
		return nil, export.NewError(export.KindNotImpl, "tracker database not configured", nil)
	}

	models := make([]recordModel, 0)
	query := t.DB.NewSelect().Model(&models)
	if filter.Format != "" {
		query = query.Where("format = ?", string(export.NormalizeFormat(filter.Format)))
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(models))
	for _, model := range models {
		record, err := model.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes an export record.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if t == nil || t.DB == nil {
		return export.NewError(export.KindNotImpl, "tracker database not configured", nil)
	}
	if id == "" {
		return export.NewError(export.KindValidation, "export ID is required", nil)
	}
	res, err := t.DB.NewDelete().Model((*recordModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return export.NewError(export.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return nil
}

func (t *Tracker) update(ctx context.Context, id string, values map[string]any) error {
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).Where("id = ?", id)
	for column, value := range values {
		query = query.Set("? = ?", bun.Ident(column), value)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return export.NewError(export.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return nil
}

func (t *Tracker) stamp(evt export.ChangeEvent) time.Time {
	if !evt.Timestamp.IsZero() {
		return evt.Timestamp
	}
	return t.now()
}

func (t *Tracker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

type recordModel struct {
	bun.BaseModel `bun:"table:shader_exports,alias:shader_exports"`

	ID              string    `bun:",pk"`
	Format          string    `bun:",notnull"`
	RequestedFormat string    `bun:"requested_format"`
	Title           string    `bun:"title"`
	Filename        string    `bun:"filename"`
	Files           []byte    `bun:"files"`
	State           string    `bun:",notnull"`
	Archived        bool      `bun:"archived,notnull,default:false"`
	FellBack        bool      `bun:"fell_back,notnull,default:false"`
	Bytes           int64     `bun:"bytes"`
	Error           string    `bun:"error"`
	CreatedAt       time.Time `bun:"created_at"`
	CompletedAt     time.Time `bun:"completed_at,nullzero"`
}

func (m recordModel) toRecord() (Record, error) {
	record := Record{
		ID:              m.ID,
		Format:          export.Format(m.Format),
		RequestedFormat: export.Format(m.RequestedFormat),
		Title:           m.Title,
		Filename:        m.Filename,
		State:           m.State,
		Archived:        m.Archived,
		FellBack:        m.FellBack,
		Bytes:           m.Bytes,
		Error:           m.Error,
		CreatedAt:       m.CreatedAt,
		CompletedAt:     m.CompletedAt,
	}
	if len(m.Files) > 0 {
		if err := json.Unmarshal(m.Files, &record.Files); err != nil {
			return Record{}, err
		}
	}
	return record, nil
}
