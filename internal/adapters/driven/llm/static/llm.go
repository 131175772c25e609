// Package static provides an offline LLM that answers without a model.
// It lists the titles of the events it was given, which keeps the full
// answer path exercisable with no network or API key.
package static

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// ModelName is reported for the static service.
const ModelName = "static"

var (
	sourceHeader = regexp.MustCompile(`(?m)^\[SOURCE \d+\]$`)
	fieldLine    = regexp.MustCompile(`(?m)^(date|city|location|Titre): (.*)$`)
)

// LLMService renders a deterministic summary of the prompt's sources.
type LLMService struct{}

// NewLLMService creates a static LLM.
func NewLLMService() *LLMService {
	return &LLMService{}
}

// Chat lists one line per source block found in the last user turn.
func (s *LLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	var prompt string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == driven.RoleUser {
			prompt = messages[i].Content
			break
		}
	}

	blocks := splitSources(prompt)
	if len(blocks) == 0 {
		return "Je n'ai pas trouvé d'événement correspondant à cette demande.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Voici %d événement(s) correspondant à ta demande :\n", len(blocks))
	for _, block := range blocks {
		fields := make(map[string]string)
		for _, m := range fieldLine.FindAllStringSubmatch(block, -1) {
			if _, seen := fields[m[1]]; !seen {
				fields[m[1]] = strings.TrimSpace(m[2])
			}
		}
		title := fields["Titre"]
		if title == "" {
			title = "Événement"
		}
		fmt.Fprintf(&b, "- %s", title)
		for _, key := range []string{"date", "location", "city"} {
			if v := fields[key]; v != "" {
				fmt.Fprintf(&b, " | %s", v)
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func splitSources(prompt string) []string {
	idx := sourceHeader.FindAllStringIndex(prompt, -1)
	blocks := make([]string, 0, len(idx))
	for i, loc := range idx {
		end := len(prompt)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		blocks = append(blocks, prompt[loc[1]:end])
	}
	return blocks
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *LLMService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
