package openagenda

import (
	"fmt"
	"strings"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// Defaults for the OpenAgenda client.
const (
	DefaultBaseURL           = "https://api.openagenda.com/v2"
	DefaultPageSize          = 100
	DefaultRequestsPerSecond = 2.0
	DefaultTimeout           = 30 * time.Second

	// MaxPageSize is the largest page the API serves.
	MaxPageSize = 300
)

// Config holds connector settings.
type Config struct {
	BaseURL           string
	APIKey            string
	AgendaUID         string
	PageSize          int
	RequestsPerSecond float64
	Timeout           time.Duration

	// MaxPages stops paging early when positive.
	MaxPages int
}

// ConfigFromSettings maps application settings onto a Config.
func ConfigFromSettings(s domain.OpenAgendaSettings) Config {
	return Config{
		BaseURL:           s.BaseURL,
		APIKey:            s.APIKey,
		AgendaUID:         s.AgendaUID,
		PageSize:          s.PageSize,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "openagenda.api_key")
	}
	if c.AgendaUID == "" {
		missing = append(missing, "openagenda.agenda_uid")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}
