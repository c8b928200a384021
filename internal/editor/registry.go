package editor

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"collaboratex/internal/domain"
)

//go:embed languages/*.yaml
var languageFiles embed.FS

// Registry holds the editor languages loaded from embedded YAML.
type Registry struct {
	languages map[string]*Language
	mu        sync.RWMutex
}

// NewRegistry loads every embedded language file.
func NewRegistry() (*Registry, error) {
	return loadRegistry(languageFiles)
}

func loadRegistry(fsys fs.FS) (*Registry, error) {
	r := &Registry{
		languages: make(map[string]*Language),
	}

	files, err := fs.Glob(fsys, "languages/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list language files: %w", err)
	}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := r.add(data); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
	}

	return r, nil
}

// add parses and checks one language definition
func (r *Registry) add(data []byte) error {
	var lang Language
	if err := yaml.Unmarshal(data, &lang); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if lang.ID == "" {
		return fmt.Errorf("language id is required")
	}
	if _, ok := lang.Tokenizer["root"]; !ok {
		return fmt.Errorf("language %s: tokenizer has no root state", lang.ID)
	}
	for state, rules := range lang.Tokenizer {
		for _, rule := range rules {
			re, err := regexp.Compile(rule.Regex)
			if err != nil {
				return fmt.Errorf("language %s, state %s: %w", lang.ID, state, err)
			}
			// One token per capture group, or a single token for the whole match
			if groups := re.NumSubexp(); len(rule.Tokens) > 1 && len(rule.Tokens) != groups {
				return fmt.Errorf("language %s, state %s: rule %q has %d groups but %d tokens",
					lang.ID, state, rule.Regex, groups, len(rule.Tokens))
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.languages[lang.ID]; dup {
		return fmt.Errorf("duplicate language %s", lang.ID)
	}
	r.languages[lang.ID] = &lang
	return nil
}

// Get returns the language with the given id
func (r *Registry) Get(id string) (*Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lang, ok := r.languages[id]
	if !ok {
		return nil, fmt.Errorf("language %s: %w", id, domain.ErrNotFound)
	}
	return lang, nil
}

// List returns all languages ordered by id
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.languages))
	for _, lang := range r.languages {
		out = append(out, Summary{
			ID:          lang.ID,
			DisplayName: lang.DisplayName,
			Extensions:  lang.Extensions,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
