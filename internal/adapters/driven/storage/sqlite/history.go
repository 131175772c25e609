package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// defaultHistoryLimit caps listings when the caller passes no limit.
const defaultHistoryLimit = 100

// ==================== Ask Log ====================

// askLogStore implements driven.AskLogStore.
type askLogStore struct {
	store *Store
}

var _ driven.AskLogStore = (*askLogStore)(nil)

type askRow struct {
	ID            string          `db:"id"`
	Question      string          `db:"question"`
	AllowedCities sql.NullString  `db:"allowed_cities"`
	FutureOnly    bool            `db:"future_only"`
	Verdict       string          `db:"verdict"`
	Sources       string          `db:"sources"`
	BestDistance  sql.NullFloat64 `db:"best_distance"`
	Relaxed       bool            `db:"relaxed"`
	DurationMS    int64           `db:"duration_ms"`
	Error         string          `db:"error"`
	CreatedAt     time.Time       `db:"created_at"`
}

// RecordAsk stores one ask outcome. Re-recording an id replaces it.
func (s *askLogStore) RecordAsk(ctx context.Context, rec domain.AskRecord) error {
	cities, err := marshalJSON(rec.AllowedCities)
	if err != nil {
		return fmt.Errorf("marshalling cities: %w", err)
	}
	sources, err := json.Marshal(nonNil(rec.Sources))
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	row := askRow{
		ID:         rec.ID,
		Question:   rec.Question,
		FutureOnly: rec.FutureOnly,
		Verdict:    string(rec.Verdict),
		Sources:    string(sources),
		Relaxed:    rec.Relaxed,
		DurationMS: rec.Duration.Milliseconds(),
		Error:      rec.Error,
		CreatedAt:  rec.CreatedAt.UTC(),
	}
	if cities != nil {
		row.AllowedCities = sql.NullString{String: *cities, Valid: true}
	}
	if rec.BestDistance != nil {
		row.BestDistance = sql.NullFloat64{Float64: *rec.BestDistance, Valid: true}
	}

	_, err = s.store.db.NamedExecContext(ctx, `
		INSERT INTO asks (id, question, allowed_cities, future_only, verdict, sources,
			best_distance, relaxed, duration_ms, error, created_at)
		VALUES (:id, :question, :allowed_cities, :future_only, :verdict, :sources,
			:best_distance, :relaxed, :duration_ms, :error, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			question = excluded.question,
			allowed_cities = excluded.allowed_cities,
			future_only = excluded.future_only,
			verdict = excluded.verdict,
			sources = excluded.sources,
			best_distance = excluded.best_distance,
			relaxed = excluded.relaxed,
			duration_ms = excluded.duration_ms,
			error = excluded.error,
			created_at = excluded.created_at
	`, row)
	if err != nil {
		return fmt.Errorf("recording ask: %w", err)
	}
	return nil
}

// RecentAsks returns up to limit records, newest first.
func (s *askLogStore) RecentAsks(ctx context.Context, limit int) ([]domain.AskRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var rows []askRow
	if err := s.store.db.SelectContext(ctx, &rows, `
		SELECT id, question, allowed_cities, future_only, verdict, sources,
			best_distance, relaxed, duration_ms, error, created_at
		FROM asks
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit); err != nil {
		return nil, fmt.Errorf("listing asks: %w", err)
	}

	records := make([]domain.AskRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r askRow) toDomain() (domain.AskRecord, error) {
	rec := domain.AskRecord{
		ID:         r.ID,
		Question:   r.Question,
		FutureOnly: r.FutureOnly,
		Verdict:    domain.Verdict(r.Verdict),
		Relaxed:    r.Relaxed,
		Duration:   time.Duration(r.DurationMS) * time.Millisecond,
		Error:      r.Error,
		CreatedAt:  r.CreatedAt,
	}
	if r.AllowedCities.Valid {
		if err := json.Unmarshal([]byte(r.AllowedCities.String), &rec.AllowedCities); err != nil {
			return rec, fmt.Errorf("unmarshalling cities of ask %s: %w", r.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(r.Sources), &rec.Sources); err != nil {
		return rec, fmt.Errorf("unmarshalling sources of ask %s: %w", r.ID, err)
	}
	if r.BestDistance.Valid {
		d := r.BestDistance.Float64
		rec.BestDistance = &d
	}
	return rec, nil
}

// ==================== Rebuild Log ====================

// rebuildLogStore implements driven.RebuildLogStore.
type rebuildLogStore struct {
	store *Store
}

var _ driven.RebuildLogStore = (*rebuildLogStore)(nil)

type rebuildRow struct {
	ID         string    `db:"id"`
	Status     string    `db:"status"`
	Message    string    `db:"message"`
	DurationMS int64     `db:"duration_ms"`
	Details    string    `db:"details"`
	StartedAt  time.Time `db:"started_at"`
}

// RecordRebuild stores one rebuild outcome.
func (s *rebuildLogStore) RecordRebuild(ctx context.Context, res domain.RebuildResult) error {
	details, err := json.Marshal(res.Details)
	if err != nil {
		return fmt.Errorf("marshalling details: %w", err)
	}
	if res.StartedAt.IsZero() {
		res.StartedAt = time.Now()
	}

	_, err = s.store.db.NamedExecContext(ctx, `
		INSERT INTO rebuilds (id, status, message, duration_ms, details, started_at)
		VALUES (:id, :status, :message, :duration_ms, :details, :started_at)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			message = excluded.message,
			duration_ms = excluded.duration_ms,
			details = excluded.details,
			started_at = excluded.started_at
	`, rebuildRow{
		ID:         res.ID,
		Status:     string(res.Status),
		Message:    res.Message,
		DurationMS: res.Duration.Milliseconds(),
		Details:    string(details),
		StartedAt:  res.StartedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("recording rebuild: %w", err)
	}
	return nil
}

// RecentRebuilds returns up to limit results, newest first.
func (s *rebuildLogStore) RecentRebuilds(ctx context.Context, limit int) ([]domain.RebuildResult, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var rows []rebuildRow
	if err := s.store.db.SelectContext(ctx, &rows, `
		SELECT id, status, message, duration_ms, details, started_at
		FROM rebuilds
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit); err != nil {
		return nil, fmt.Errorf("listing rebuilds: %w", err)
	}

	results := make([]domain.RebuildResult, 0, len(rows))
	for _, r := range rows {
		res := domain.RebuildResult{
			ID:        r.ID,
			Status:    domain.RebuildStatus(r.Status),
			Message:   r.Message,
			Duration:  time.Duration(r.DurationMS) * time.Millisecond,
			StartedAt: r.StartedAt,
		}
		if err := json.Unmarshal([]byte(r.Details), &res.Details); err != nil {
			return nil, fmt.Errorf("unmarshalling details of rebuild %s: %w", r.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
