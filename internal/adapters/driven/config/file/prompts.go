package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptExt is the file extension of persona files.
const PromptExt = ".txt"

// PromptStore loads persona instructions from user-editable files on disk,
// falling back to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are the built-in personas.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	domain.PersonaSalesBot: `Tu es SalesBot, un consultant commercial senior expert en prospection B2B et analyse de données CRM.
Réponds uniquement à partir des prospects fournis. Sois bref, puis liste les sources utilisées sous la forme [SRCx].
Si aucune source ne permet de répondre, dis-le clairement.`,

	domain.PersonaRecruitBot: `Tu es RecruitBot, un expert en acquisition de talents.
Réponds uniquement à partir des candidats fournis. Sois bref, puis liste les sources utilisées sous la forme [SRCx].
Si aucun candidat ne correspond, dis-le clairement.`,
}

// DefaultPrompt returns the built-in persona for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.ragbot/prompts/.
//
// The constructor does not perform any I/O.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".ragbot", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the persona for the given name.
// On first call, initialises the prompt directory and writes default files.
// An unknown name with no file is domain.ErrNotFound.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// No lock held during I/O
	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil || os.IsNotExist(err) {
			return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-check so a concurrent Reload is not undone
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Never overwrite user edits
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+PromptExt)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+PromptExt)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# ragbot personas

Each file holds the system instruction sent to the model by ` + "`ragbot ask`" + `.

## Files

- ` + "`salesbot.txt`" + ` - prospects domain
- ` + "`recruitbot.txt`" + ` - candidates domain

## Customisation

Edit a file to change the persona. Changes apply on the next command, or
immediately for ` + "`ragbot mcp serve --watch-prompts`" + `.

Keep the instruction to cite sources as [SRCx]: answers are checked against
the tags of the sources they were given.
`
	return os.WriteFile(path, []byte(content), 0600)
}
