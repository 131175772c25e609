package openagenda

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.EventSource = (*Source)(nil)

// Source lists every event of one agenda.
type Source struct {
	cfg    Config
	client *Client
}

// New creates an OpenAgenda source. The config must be valid.
func New(cfg Config, httpClient *http.Client) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Source{cfg: cfg, client: NewClient(cfg, httpClient)}, nil
}

// Name returns the agenda uid.
func (s *Source) Name() string {
	return s.cfg.AgendaUID
}

// FetchAll pages through the agenda until an empty page or a null cursor.
func (s *Source) FetchAll(ctx context.Context) ([]json.RawMessage, error) {
	var (
		all   []json.RawMessage
		after cursor
	)

	for n := 1; ; n++ {
		p, err := s.client.fetchPage(ctx, after)
		if err != nil {
			return nil, err
		}

		events := p.items()
		if len(events) == 0 {
			break
		}
		all = append(all, events...)
		logger.Debug("OpenAgenda page %d: +%d (total=%d)", n, len(events), len(all))

		after = parseCursor(p.After)
		if after == nil {
			break
		}
		if s.cfg.MaxPages > 0 && n >= s.cfg.MaxPages {
			logger.Warn("OpenAgenda: stopping after %d pages", n)
			break
		}
	}

	return all, nil
}
