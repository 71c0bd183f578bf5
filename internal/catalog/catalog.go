package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"forgefit/internal/models"

	"github.com/BurntSushi/toml"
)

//go:embed exercises.toml
var defaultCatalogTOML string

// Catalog is the immutable exercise collection. Built once at process start
// and passed around read-only; swap a fixture in tests instead of mutating.
type Catalog struct {
	exercises []models.Exercise
	byID      map[string]int
	byAlias   map[string]int
}

type catalogFile struct {
	Exercises []models.Exercise `toml:"exercise"`
}

// New builds a catalog from a slice of exercise definitions. Duplicate ids
// are a programming error in the data file.
func New(exercises []models.Exercise) (*Catalog, error) {
	c := &Catalog{
		exercises: exercises,
		byID:      make(map[string]int, len(exercises)),
		byAlias:   make(map[string]int),
	}
	for i, ex := range exercises {
		if ex.ID == "" {
			return nil, fmt.Errorf("exercise %q has no id", ex.Name)
		}
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise id %q", ex.ID)
		}
		c.byID[ex.ID] = i
		for _, alias := range ex.Aliases {
			c.byAlias[alias] = i
		}
	}
	return c, nil
}

// LoadDefault parses the embedded catalog.
func LoadDefault() (*Catalog, error) {
	return parse(defaultCatalogTOML)
}

// LoadFile parses a catalog override from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return parse(string(data))
}

func parse(data string) (*Catalog, error) {
	var file catalogFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return New(file.Exercises)
}

// All returns the exercises in catalog order. Callers must not modify the
// returned slice.
func (c *Catalog) All() []models.Exercise {
	return c.exercises
}

// Get looks an exercise up by id, falling back to aliases.
func (c *Catalog) Get(id string) (models.Exercise, bool) {
	if i, ok := c.byID[id]; ok {
		return c.exercises[i], true
	}
	if i, ok := c.byAlias[id]; ok {
		return c.exercises[i], true
	}
	return models.Exercise{}, false
}

// ByIntent returns every exercise training the given intent, in catalog
// order. Catalog order is the implicit tie-breaker throughout scoring, so
// the order here must stay stable.
func (c *Catalog) ByIntent(intent models.Intent) []models.Exercise {
	var out []models.Exercise
	for _, ex := range c.exercises {
		if ex.HasIntent(intent) {
			out = append(out, ex)
		}
	}
	return out
}

// Len reports the number of exercises.
func (c *Catalog) Len() int { return len(c.exercises) }
