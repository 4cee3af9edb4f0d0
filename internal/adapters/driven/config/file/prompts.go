package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

var errBlankPrompt = errors.New("prompt file is blank")

// PromptStore loads LLM prompts from user-editable files on disk, falling
// back to built-in defaults. Files are created on first Load, not in the
// constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are used when user files don't exist and seed new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswerSystem: `You are a helpful assistant that answers questions based on provided document excerpts.

Your task is to:
1. Answer the question using ONLY the information from the provided sources
2. Cite your sources by referencing the source numbers [Source N]
3. If the sources don't contain enough information, say so clearly
4. Be concise but thorough

You MUST respond with a valid JSON object in this exact format:
{
    "answer": "Your detailed answer here with inline citations like [Source 1]",
    "confidence": 0.85,
    "citations": [
        {
            "source_number": 1,
            "relevance": "Brief explanation of why this source is relevant"
        }
    ]
}

The confidence score should be:
- 0.9-1.0: Answer is directly stated in sources
- 0.7-0.9: Answer can be inferred from sources
- 0.5-0.7: Partial information available
- Below 0.5: Limited relevant information

Always include at least one citation if you provide an answer.`,

	driven.PromptAnswerUser: `Question: {{question}}

Sources:
{{context}}

Please answer the question based on the sources above. Remember to respond with valid JSON.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.insight/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := HomeDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name. A file that is
// missing or blank falls back to the default.
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

	prompt, err := s.loadFromFile(name)
	if err == nil && prompt == "" {
		err = errBlankPrompt
	}
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		prompt = s.cache[name]
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

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
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

	content := `# Insight prompts

These files control how answers are generated. Edit them to change the
model's instructions; changes apply to the next question asked by a fresh
process.

- ` + "`answer_system.txt`" + ` - instructions and the JSON reply format
- ` + "`answer_user.txt`" + ` - the question and the numbered sources

` + "`answer_user.txt`" + ` must keep the ` + "`{{question}}`" + ` and ` + "`{{context}}`" + `
placeholders. The reply must stay a JSON object with ` + "`answer`" + `,
` + "`confidence`" + ` and ` + "`citations[].source_number`" + `.

Delete a file to restore its default.
`
	return os.WriteFile(path, []byte(content), 0600)
}
