package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into pieces of at most size runes, preferring
// paragraph, then line, then sentence, then word boundaries. Adjacent
// pieces share up to overlap runes of context. Separators stay attached
// to the start of the piece that follows them, and pieces are trimmed.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter. Overlap is clamped below size.
func NewSplitter(size, overlap int, separators []string) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{size: size, overlap: overlap, separators: separators}
}

// Split returns the pieces of text. Empty text yields none.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var chunks, good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < s.size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			chunks = append(chunks, s.merge(good)...)
			good = nil
		}
		if len(next) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, next)...)
		}
	}
	if len(good) > 0 {
		chunks = append(chunks, s.merge(good)...)
	}
	return chunks
}

// merge packs consecutive pieces greedily into chunks, carrying a tail
// of at most overlap runes into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var (
		out     []string
		current []string
		total   int
	)
	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.size && len(current) > 0 {
			if doc := join(current); doc != "" {
				out = append(out, doc)
			}
			for total > s.overlap || (total+n > s.size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if doc := join(current); doc != "" {
		out = append(out, doc)
	}
	return out
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

// splitKeepingSeparator splits text on sep, prefixing every piece after
// the first with the separator. An empty separator splits into runes.
func splitKeepingSeparator(text, sep string) []string {
	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
