package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// User-facing messages for answers that skip synthesis.
const (
	NotFoundMessage = "Je n'ai pas trouvé d'événement correspondant à cette demande. " +
		"Tu peux essayer d'élargir le thème, la période ou la zone géographique."

	LowConfidenceMessage = "Je n'ai pas trouvé d'événement suffisamment pertinent pour cette demande " +
		"dans les données. Essaie un thème plus large (ex: “conférence”, “exposition”, “atelier”) " +
		"ou une autre ville."
)

const (
	sourcesHeader  = "\n\nSources :\n"
	noSourcesLine  = "- Aucune source pertinente."
	excerptMaxRune = 220
)

// Assembler turns ranked documents into an answer.
// Sources are projected from the documents, never read from the LLM output.
type Assembler struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    driven.ChatOptions
}

// NewAssembler creates an assembler. prompts may be nil.
func NewAssembler(llm driven.LLMService, prompts driven.PromptStore, opts driven.ChatOptions) *Assembler {
	return &Assembler{llm: llm, prompts: prompts, opts: opts}
}

// Assemble prompts the LLM with docs in rank order and appends the sources block.
// It returns the answer text and the sorted unique uids of docs.
func (a *Assembler) Assemble(ctx context.Context, question string, docs []domain.EventDocument) (string, []string, error) {
	if a.llm == nil {
		return "", nil, domain.ErrLLMUnavailable
	}

	messages := a.Messages(question, docs)
	logger.Debug("Prompting %s with %d documents", a.llm.ModelName(), len(docs))

	reply, err := a.llm.Chat(ctx, messages, a.opts)
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return "", nil, fmt.Errorf("assemble: %w", err)
		}
		return "", nil, fmt.Errorf("assemble: %w: %w", domain.ErrLLMUnavailable, err)
	}

	sources := SourceUIDs(docs)
	return strings.TrimSpace(reply) + FormatSourcesBlock(sources), sources, nil
}

// Messages builds the system and user turns for docs.
func (a *Assembler) Messages(question string, docs []domain.EventDocument) []driven.ChatMessage {
	system := a.prompt(driven.PromptSystem, domain.DefaultSystemPrompt)
	human := a.prompt(driven.PromptHuman, domain.DefaultHumanPrompt)

	user := strings.NewReplacer(
		"{context}", FormatContext(docs),
		"{question}", question,
	).Replace(human)

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: strings.TrimSpace(system)},
		{Role: driven.RoleUser, Content: strings.TrimSpace(user)},
	}
}

func (a *Assembler) prompt(name, fallback string) string {
	if a.prompts == nil {
		return fallback
	}
	p, err := a.prompts.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		logger.Warn("Prompt %q unavailable, using built-in: %v", name, err)
		return fallback
	}
	return p
}

// FormatContext renders docs as numbered source blocks, in rank order.
func FormatContext(docs []domain.EventDocument) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		md := d.Metadata
		blocks[i] = fmt.Sprintf(
			"[SOURCE %d]\nuid: %s\ndate: %s\ncity: %s\nlocation: %s\nagenda_url: %s\ntext:\n%s\n",
			i+1, md.UID, md.FirstBeginDT, md.LocationCity, md.LocationName, md.AgendaURL, d.Content,
		)
	}
	return strings.Join(blocks, "\n")
}

// SourceUIDs returns the sorted unique non-blank uids of docs.
func SourceUIDs(docs []domain.EventDocument) []string {
	seen := make(map[string]struct{}, len(docs))
	uids := make([]string, 0, len(docs))
	for _, d := range docs {
		uid := strings.TrimSpace(d.Metadata.UID)
		if uid == "" {
			continue
		}
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// FormatSourcesBlock renders the trailing sources section.
func FormatSourcesBlock(uids []string) string {
	if len(uids) == 0 {
		return sourcesHeader + noSourcesLine
	}
	return sourcesHeader + "- " + strings.Join(uids, "\n- ")
}

// Citations mirrors docs with a short excerpt each, in rank order.
func Citations(docs []domain.EventDocument) []domain.Citation {
	out := make([]domain.Citation, len(docs))
	for i, d := range docs {
		out[i] = domain.Citation{Metadata: d.Metadata, Excerpt: excerpt(d.Content, excerptMaxRune)}
	}
	return out
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
