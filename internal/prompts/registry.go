// Package prompts owns the template registry and prompt composition.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/errors"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/models"
)

type templateCacheEntry struct {
	text     string
	loadedAt time.Time
}

// Registry maps each PromptKind to its system-instruction text. Templates are
// read from one file per kind (<kind lower-cased>.txt) inside a fixed
// directory and cached for the process lifetime.
type Registry struct {
	dir    string
	logger logger.Logger
	cache  map[models.PromptKind]*templateCacheEntry
	mu     sync.RWMutex
}

func NewRegistry(dir string, log logger.Logger) *Registry {
	return &Registry{
		dir:    dir,
		logger: log.WithFields(map[string]interface{}{"component": "prompt-registry"}),
		cache:  make(map[models.PromptKind]*templateCacheEntry),
	}
}

// SystemInstruction returns the template text for kind.
func (r *Registry) SystemInstruction(kind models.PromptKind) (string, error) {
	r.mu.RLock()
	if entry, ok := r.cache[kind]; ok {
		r.mu.RUnlock()
		return entry.text, nil
	}
	r.mu.RUnlock()

	known := false
	for _, k := range models.AllPromptKinds {
		if kind == k {
			known = true
			break
		}
	}
	if !known {
		return "", errors.NewTemplateNotFoundError(string(kind))
	}

	// A known kind whose file cannot be read is a loading failure, distinct
	// from an unmapped kind.
	path := filepath.Join(r.dir, strings.ToLower(string(kind))+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Error("template file could not be loaded", map[string]interface{}{
			"promptKind": string(kind),
			"path":       path,
		})
		return "", errors.NewTemplateUnreadableError(string(kind), err)
	}
	if !utf8.Valid(data) {
		r.logger.Error("template file is not valid UTF-8", map[string]interface{}{
			"promptKind": string(kind),
			"path":       path,
		})
		return "", errors.NewTemplateUnreadableError(string(kind), fmt.Errorf("file %s is not valid UTF-8", path))
	}

	text := string(data)

	r.mu.Lock()
	r.cache[kind] = &templateCacheEntry{text: text, loadedAt: time.Now()}
	r.mu.Unlock()

	return text, nil
}

// Preload loads every known kind eagerly so configuration errors surface at
// startup instead of on the first request.
func (r *Registry) Preload() error {
	for _, kind := range models.AllPromptKinds {
		if _, err := r.SystemInstruction(kind); err != nil {
			return err
		}
	}
	return nil
}
