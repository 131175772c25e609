package mcp

import (
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
)

// Ports are the services the MCP server exposes. Only Answer is required;
// the rebuild tool and history resources appear when their port is set.
type Ports struct {
	Answer  driving.AnswerService
	Rebuild driving.RebuildService
	History driving.HistoryService
}

// Validate reports a missing answer service.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
