// Package fields resolves canonical values out of decoded structured-data exports.
//
// Export providers rename keys per language and per release, so the accepted spellings
// live in variants.yaml rather than in branching code. Supporting a new language is an
// edit to that table.
package fields

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ddp_extract/internal/jsondata"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnexpectedShape = errors.New("unexpected structure")
	ErrFieldMissing    = errors.New("field missing")
)

// Field is a canonical personal-info attribute.
type Field string

const (
	Username       Field = "username"
	DisplayName    Field = "display_name"
	Gender         Field = "gender"
	DateOfBirth    Field = "date_of_birth"
	PrivateAccount Field = "private_account"
)

// PersonalInfo holds the canonical profile fields. Every field defaults to "".
type PersonalInfo struct {
	Username       string
	DisplayName    string
	Gender         string
	DateOfBirth    string
	PrivateAccount string
}

func (p *PersonalInfo) Set(field Field, value string) {
	switch field {
	case Username:
		p.Username = value
	case DisplayName:
		p.DisplayName = value
	case Gender:
		p.Gender = value
	case DateOfBirth:
		p.DateOfBirth = value
	case PrivateAccount:
		p.PrivateAccount = value
	}
}

func (p PersonalInfo) IsZero() bool {
	return p == PersonalInfo{}
}

type variant struct {
	Field Field    `yaml:"field"`
	Keys  []string `yaml:"keys"`
}

// Variants is the table of accepted key spellings.
type Variants struct {
	Fields     []variant `yaml:"fields"`
	ListLabels []string  `yaml:"list_labels"`
}

// FieldForLabel maps a label as printed in an export back to its canonical field.
func (v *Variants) FieldForLabel(label string) (Field, bool) {
	trimmed := strings.TrimSpace(jsondata.RepairMojibake(label))
	for _, entry := range v.Fields {
		for _, key := range entry.Keys {
			if strings.EqualFold(key, trimmed) {
				return entry.Field, true
			}
		}
	}
	return "", false
}

//go:embed variants.yaml
var embeddedVariants []byte

var defaultVariants = sync.OnceValue(func() *Variants {
	variants, err := ParseVariants(embeddedVariants)
	if err != nil {
		panic(fmt.Sprintf("embedded variants: %v", err))
	}
	return variants
})

// DefaultVariants returns the table compiled into the binary.
func DefaultVariants() *Variants {
	return defaultVariants()
}

func ParseVariants(data []byte) (*Variants, error) {
	var variants Variants
	if unmarshalErr := yaml.Unmarshal(data, &variants); unmarshalErr != nil {
		return nil, fmt.Errorf("parse variants: %w", unmarshalErr)
	}
	if len(variants.Fields) == 0 {
		return nil, errors.New("parse variants: no fields declared")
	}
	return &variants, nil
}

// Resolver looks up canonical personal-info fields in decoded personal_information.json trees.
type Resolver struct {
	variants *Variants
}

func NewResolver(variants *Variants) *Resolver {
	if variants == nil {
		variants = DefaultVariants()
	}
	return &Resolver{variants: variants}
}

// Lookup resolves each field independently. A missing or wrong-shaped profile container
// yields an all-default record and ErrUnexpectedShape. Fields absent under every spelling
// stay empty and are reported together as ErrFieldMissing alongside the populated record.
func (r *Resolver) Lookup(v jsondata.Value) (PersonalInfo, error) {
	container, ok := jsondata.Lookup(v, "profile_user", 0, "string_map_data")
	if !ok {
		return PersonalInfo{}, fmt.Errorf("%w: profile_user[0].string_map_data not found", ErrUnexpectedShape)
	}
	stringMap, ok := jsondata.Object(container)
	if !ok {
		return PersonalInfo{}, fmt.Errorf("%w: string_map_data is %T", ErrUnexpectedShape, container)
	}

	repaired := make(map[string]any, len(stringMap))
	for key, value := range stringMap {
		repaired[jsondata.RepairMojibake(key)] = value
	}

	var (
		info    PersonalInfo
		missing []string
	)
	for _, entry := range r.variants.Fields {
		value, found := firstPresent(repaired, entry.Keys)
		if !found {
			missing = append(missing, string(entry.Field))
			continue
		}
		info.Set(entry.Field, value)
	}
	if len(missing) > 0 {
		return info, fmt.Errorf("%w: %s", ErrFieldMissing, strings.Join(missing, ", "))
	}
	return info, nil
}

// Resolve is Lookup without the error: it never fails.
func (r *Resolver) Resolve(v jsondata.Value) PersonalInfo {
	info, _ := r.Lookup(v)
	return info
}

func firstPresent(stringMap map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		entry, exists := stringMap[key]
		if !exists {
			continue
		}
		raw, _ := jsondata.Lookup(entry, "value")
		text, _ := jsondata.String(raw)
		return jsondata.RepairMojibake(text), true
	}
	return "", false
}
