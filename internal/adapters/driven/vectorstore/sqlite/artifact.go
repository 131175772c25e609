// Package sqlite stores the event index artifact in a single SQLite file.
//
// The artifact holds every chunk with its metadata and embedding, plus
// the model and vector size it was built with. Writers never touch the
// live file: a complete artifact is written next to it and renamed over
// it, so readers see either the old or the new index.
package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// FormatVersion is bumped when the artifact layout changes.
const FormatVersion = 1

const schema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE chunks (
	id        TEXT PRIMARY KEY,
	position  INTEGER NOT NULL,
	content   TEXT NOT NULL,
	metadata  TEXT NOT NULL,
	embedding BLOB NOT NULL
);
CREATE INDEX idx_chunks_position ON chunks(position);
`

// Meta keys.
const (
	metaFormat     = "format_version"
	metaModel      = "model"
	metaDimensions = "dimensions"
	metaCount      = "count"
	metaCreatedAt  = "created_at"
)

// Chunk is one embedded document.
type Chunk struct {
	ID        string
	Document  domain.EventDocument
	Embedding []float32
}

// Info describes an artifact.
type Info struct {
	Path       string    `json:"path"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Count      int       `json:"count"`
	CreatedAt  time.Time `json:"created_at"`
}

type chunkRow struct {
	ID        string `db:"id"`
	Position  int    `db:"position"`
	Content   string `db:"content"`
	Metadata  string `db:"metadata"`
	Embedding []byte `db:"embedding"`
}

type metaRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Write replaces the artifact at path with the given chunks.
// The previous artifact stays in place until the new one is complete.
func Write(ctx context.Context, path, model string, chunks []Chunk) (*Info, error) {
	if path == "" {
		return nil, errors.New("artifact: path cannot be empty")
	}
	if len(chunks) == 0 {
		return nil, errors.New("artifact: no chunks to write")
	}
	dims := len(chunks[0].Embedding)
	if dims == 0 {
		return nil, errors.New("artifact: empty embedding")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("artifact: create directory: %w", err)
	}

	tmp := path + ".tmp-" + uuid.NewString()
	info := &Info{
		Path:       path,
		Model:      model,
		Dimensions: dims,
		Count:      len(chunks),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}

	if err := writeFile(ctx, tmp, info, chunks); err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}
	if err := syncFile(tmp); err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("artifact: replace: %w", err)
	}
	syncDir(filepath.Dir(path))

	return info, nil
}

func writeFile(ctx context.Context, path string, info *Info, chunks []Chunk) error {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("artifact: open: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("artifact: create schema: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("artifact: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	meta := map[string]string{
		metaFormat:     strconv.Itoa(FormatVersion),
		metaModel:      info.Model,
		metaDimensions: strconv.Itoa(info.Dimensions),
		metaCount:      strconv.Itoa(info.Count),
		metaCreatedAt:  info.CreatedAt.Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("artifact: write meta: %w", err)
		}
	}

	for i, c := range chunks {
		if len(c.Embedding) != info.Dimensions {
			return fmt.Errorf("artifact: chunk %s has %d dimensions, want %d", c.ID, len(c.Embedding), info.Dimensions)
		}
		md, err := json.Marshal(c.Document.Metadata)
		if err != nil {
			return fmt.Errorf("artifact: encode metadata: %w", err)
		}
		row := chunkRow{
			ID:        c.ID,
			Position:  i,
			Content:   c.Document.Content,
			Metadata:  string(md),
			Embedding: float32SliceToBytes(c.Embedding),
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO chunks (id, position, content, metadata, embedding)
			VALUES (:id, :position, :content, :metadata, :embedding)
		`, row); err != nil {
			return fmt.Errorf("artifact: write chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("artifact: commit: %w", err)
	}
	return nil
}

// ReadInfo reports what the artifact at path was built with.
func ReadInfo(ctx context.Context, path string) (*Info, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return readMeta(ctx, db, path)
}

func openReadOnly(path string) (*sqlx.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no index at %s", domain.ErrIndexUnavailable, path)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	db, err := sqlx.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrIndexUnavailable, path, err)
	}
	return db, nil
}

func readMeta(ctx context.Context, db *sqlx.DB, path string) (*Info, error) {
	var rows []metaRow
	if err := db.SelectContext(ctx, &rows, `SELECT key, value FROM meta`); err != nil {
		return nil, fmt.Errorf("%w: read meta: %w", domain.ErrIndexUnavailable, err)
	}
	meta := make(map[string]string, len(rows))
	for _, r := range rows {
		meta[r.Key] = r.Value
	}

	if v := meta[metaFormat]; v != strconv.Itoa(FormatVersion) {
		return nil, fmt.Errorf("%w: unsupported artifact format %q", domain.ErrIndexUnavailable, v)
	}
	dims, err := strconv.Atoi(meta[metaDimensions])
	if err != nil || dims <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %q", domain.ErrIndexUnavailable, meta[metaDimensions])
	}
	count, _ := strconv.Atoi(meta[metaCount])
	created, _ := time.Parse(time.RFC3339, meta[metaCreatedAt])

	return &Info{
		Path:       path,
		Model:      meta[metaModel],
		Dimensions: dims,
		Count:      count,
		CreatedAt:  created,
	}, nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("artifact: sync: %w", err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return fmt.Errorf("artifact: sync: %w", err)
	}
	return nil
}

// syncDir persists the rename. Failures are ignored; not every platform
// supports syncing a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// float32SliceToBytes converts a float32 slice to bytes for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts bytes back to a float32 slice.
func bytesToFloat32Slice(buf []byte) []float32 {
	if len(buf)%4 != 0 {
		return nil
	}
	floats := make([]float32, len(buf)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return floats
}
