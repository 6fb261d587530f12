// Package catalog holds the known-file lists used to recognize export archives.
//
// The lists are data, not code: the embedded catalog.yaml ships with the binary and an
// operator may point the CLI at a replacement file with the same shape when an export
// provider renames or adds files.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Representation is how an export ships its data.
type Representation string

const (
	Structured Representation = "structured"
	Markup     Representation = "markup"
)

// Extension returns the member file extension used by the representation.
func (r Representation) Extension() string {
	switch r {
	case Markup:
		return ".html"
	default:
		return ".json"
	}
}

// Entry is one declared export category.
type Entry struct {
	ID             string         `yaml:"id" json:"id"`
	Representation Representation `yaml:"representation" json:"representation"`
	Language       string         `yaml:"language" json:"language"`
	KnownFiles     []string       `yaml:"known_files" json:"known_files"`
}

// Validate validates a catalog entry.
func (e *Entry) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Representation, validation.Required, validation.In(Structured, Markup)),
		validation.Field(&e.KnownFiles, validation.Required),
	)
}

// Catalog is the ordered list of categories. It is never mutated after loading and
// may be shared between concurrent analyses.
type Catalog struct {
	Entries []Entry `yaml:"entries"`
}

// Validate validates every entry and rejects duplicate ids.
func (c *Catalog) Validate() error {
	if err := validation.ValidateStruct(c, validation.Field(&c.Entries, validation.Required)); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Entries))
	for index := range c.Entries {
		entry := &c.Entries[index]
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", index, err)
		}
		if _, duplicate := seen[entry.ID]; duplicate {
			return fmt.Errorf("entry %d: duplicate id %q", index, entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

//go:embed catalog.yaml
var embeddedCatalog []byte

var defaultCatalog = sync.OnceValue(func() *Catalog {
	cat, err := Parse(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return cat
})

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return defaultCatalog()
}

func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if unmarshalErr := yaml.Unmarshal(data, &cat); unmarshalErr != nil {
		return nil, fmt.Errorf("parse catalog: %w", unmarshalErr)
	}
	if validateErr := cat.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate catalog: %w", validateErr)
	}
	return &cat, nil
}

func Load(r io.Reader) (*Catalog, error) {
	data, readErr := io.ReadAll(r)
	if readErr != nil {
		return nil, fmt.Errorf("read catalog: %w", readErr)
	}
	return Parse(data)
}

func LoadFile(catalogPath string) (*Catalog, error) {
	file, openErr := os.Open(catalogPath)
	if openErr != nil {
		return nil, fmt.Errorf("open catalog %q: %w", catalogPath, openErr)
	}
	defer file.Close()
	return Load(file)
}
