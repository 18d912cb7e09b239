package templates

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Templates []domain.WorkoutTemplate `yaml:"templates"`
}

// Default returns a registry filled from the built-in catalog.
func Default() (*Registry, error) {
	return Parse(embeddedCatalog)
}

// Load reads a YAML catalog from r.
func Load(r io.Reader) (*Registry, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Parse decodes a YAML catalog and registers every template in it.
func Parse(b []byte) (*Registry, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return FromTemplates(cf.Templates)
}

// FromTemplates builds a registry from already decoded templates, such as
// rows read from the database. Duplicate ids are rejected.
func FromTemplates(ts []domain.WorkoutTemplate) (*Registry, error) {
	r := NewRegistry()
	for _, t := range ts {
		if _, dup := r.Template(t.ID); dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	for _, id := range r.List() {
		t, _ := r.Template(id)
		for _, other := range t.DontFollow {
			if _, ok := r.Template(other); !ok {
				return nil, fmt.Errorf("template %s: dont_follow names unknown template %q", id, other)
			}
		}
	}
	return r, nil
}
