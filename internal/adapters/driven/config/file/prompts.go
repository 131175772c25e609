package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// prompt describes one editable template.
type prompt struct {
	fallback     string
	placeholders []string
}

var prompts = map[string]prompt{
	driven.PromptSystem: {fallback: domain.DefaultSystemPrompt},
	driven.PromptHuman: {
		fallback:     domain.DefaultHumanPrompt,
		placeholders: []string{"{context}", "{question}"},
	},
}

const promptReadme = "# Prompts\n\n" +
	"Edit these files to change how answers are written.\n\n" +
	"- `system.txt`: instructions given to the model before every question\n" +
	"- `human.txt`: the question template\n\n" +
	"`human.txt` must keep the `{context}` and `{question}` placeholders;\n" +
	"a template missing one is ignored in favour of the default.\n" +
	"Delete a file to restore its default. Changes apply on the next command,\n" +
	"or after `pulsrag serve` is restarted.\n"

// PromptStore serves answer prompts from <dir>/<name>.txt.
//
// The directory is seeded with the built-in templates on the first Load;
// the constructor does no I/O. Files that are missing, empty or lack a
// required placeholder fall back to the built-in template.
type PromptStore struct {
	dir string

	mu      sync.RWMutex
	seeded  bool
	seedErr error
	loaded  map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// An empty dir means <HomeDir()>/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, "prompts")
	}
	return &PromptStore{dir: dir, loaded: map[string]string{}}, nil
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named prompt template.
func (s *PromptStore) Load(name string) (string, error) {
	p, known := prompts[name]

	if err := s.seed(); err != nil {
		if known {
			return p.fallback, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", err)
	}

	s.mu.RLock()
	text, ok := s.loaded[name]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	text, err := s.read(name, p)
	if err != nil {
		if known {
			logger.Warn("prompt %s: %v, using the built-in template", name, err)
			return p.fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if first, ok := s.loaded[name]; ok {
		text = first
	} else {
		s.loaded[name] = text
	}
	s.mu.Unlock()
	return text, nil
}

// Reload forgets loaded templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.loaded = map[string]string{}
	s.mu.Unlock()
}

func (s *PromptStore) read(name string, p prompt) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("empty file")
	}
	for _, ph := range p.placeholders {
		if !strings.Contains(text, ph) {
			return "", fmt.Errorf("missing %s placeholder", ph)
		}
	}
	return text, nil
}

// seed writes every template and the README that does not exist yet.
// It runs once; the outcome is remembered.
func (s *PromptStore) seed() error {
	s.mu.RLock()
	done, err := s.seeded, s.seedErr
	s.mu.RUnlock()
	if done {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return s.seedErr
	}
	s.seeded = true

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return s.seedErr
	}
	files := map[string]string{"README.md": promptReadme}
	for name, p := range prompts {
		files[name+".txt"] = p.fallback
	}
	for file, content := range files {
		if err := writeIfMissing(filepath.Join(s.dir, file), content); err != nil {
			s.seedErr = fmt.Errorf("create %s: %w", file, err)
			return s.seedErr
		}
	}
	return nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}
