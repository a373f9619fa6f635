package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/spec-kit/haf/internal/domain"
)

// ErrTemplateNotFound is returned when a call type has no template.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRepository encapsulates the template dictionary file.
type TemplateRepository interface {
	Load(ctx context.Context) (map[string]domain.Template, error)
	Get(ctx context.Context, callType string) (domain.Template, error)
	Keys(ctx context.Context) ([]string, error)
	Save(ctx context.Context, templates map[string]domain.Template) error
	Upsert(ctx context.Context, callType string, tmpl domain.Template) error
	Sort(ctx context.Context) error
}

type templateRepository struct {
	path string
	mu   sync.Mutex
}

// NewTemplateRepository instantiates repository.
func NewTemplateRepository(path string) TemplateRepository {
	return &templateRepository{path: path}
}

func (r *templateRepository) Load(ctx context.Context) (map[string]domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Get resolves callType. A missing dictionary file has no templates, so it
// reports ErrTemplateNotFound too.
func (r *templateRepository) Get(ctx context.Context, callType string) (domain.Template, error) {
	templates, err := r.Load(ctx)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Template{}, fmt.Errorf("%w: %q: %w", ErrTemplateNotFound, callType, err)
	}
	if err != nil {
		return domain.Template{}, err
	}
	tmpl, ok := templates[callType]
	if !ok {
		return domain.Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, callType)
	}
	return tmpl, nil
}

func (r *templateRepository) Keys(ctx context.Context) ([]string, error) {
	templates, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return sortedKeys(templates), nil
}

// Save rewrites the dictionary as plain JSON. Comments and trailing commas
// accepted by Load are not carried over; neither Upsert nor Sort keeps them.
func (r *templateRepository) Save(ctx context.Context, templates map[string]domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(templates)
}

// Upsert validates tmpl and stores it under callType, creating the file when
// missing. The file is rewritten through save, so comments are dropped.
func (r *templateRepository) Upsert(ctx context.Context, callType string, tmpl domain.Template) error {
	callType = strings.TrimSpace(callType)
	if callType == "" {
		return fmt.Errorf("%w: empty call type", domain.ErrInvalidTemplateDefinition)
	}
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("template %q: %w", callType, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	templates, err := r.load()
	if errors.Is(err, os.ErrNotExist) {
		templates = map[string]domain.Template{}
	} else if err != nil {
		return err
	}
	templates[callType] = tmpl
	return r.save(templates)
}

// Sort rewrites the dictionary in key order. Comments are dropped.
func (r *templateRepository) Sort(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	templates, err := r.load()
	if err != nil {
		return err
	}
	return r.save(templates)
}

// HasComments reports whether raw dictionary bytes carry comments or trailing
// commas that a rewrite would drop.
func HasComments(raw []byte) bool {
	return !bytes.Equal(jsonc.ToJSON(raw), raw)
}

func (r *templateRepository) load() (map[string]domain.Template, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	templates := map[string]domain.Template{}
	if err := json.Unmarshal(jsonc.ToJSON(raw), &templates); err != nil {
		return nil, fmt.Errorf("decode templates %s: %w", r.path, err)
	}
	for _, key := range sortedKeys(templates) {
		if err := templates[key].Validate(); err != nil {
			return nil, fmt.Errorf("template %q: %w", key, err)
		}
	}
	return templates, nil
}

// save writes the dictionary with keys in case-insensitive order, which
// encoding/json cannot do for maps on its own.
func (r *templateRepository) save(templates map[string]domain.Template) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, key := range sortedKeys(templates) {
		if i > 0 {
			buf.WriteString(",")
		}
		name, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("encode template key %q: %w", key, err)
		}
		body, err := json.MarshalIndent(templates[key], "    ", "    ")
		if err != nil {
			return fmt.Errorf("encode template %q: %w", key, err)
		}
		buf.WriteString("\n    ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(body)
	}
	if len(templates) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return writeFile(r.path, buf.Bytes())
}

func sortedKeys(templates map[string]domain.Template) []string {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if li == lj {
			return keys[i] < keys[j]
		}
		return li < lj
	})
	return keys
}
