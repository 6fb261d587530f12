package markup

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Role is the part an element plays in an export page.
type Role string

const (
	RoleProfileFieldLabel Role = "profile_field_label"
	RoleProfileFieldValue Role = "profile_field_value"
	RoleContactEntry      Role = "contact_entry"
	RoleMessageSender     Role = "message_sender"
	RoleMessageContent    Role = "message_content"
	RoleLikeAuthor        Role = "like_author"
	RoleConversationTitle Role = "conversation_title"
)

var requiredRoles = []Role{
	RoleProfileFieldLabel,
	RoleProfileFieldValue,
	RoleContactEntry,
	RoleMessageSender,
	RoleMessageContent,
	RoleLikeAuthor,
	RoleConversationTitle,
}

// pairedRoles are read from the same container element.
var pairedRoles = [][2]Role{
	{RoleProfileFieldLabel, RoleProfileFieldValue},
	{RoleMessageSender, RoleMessageContent},
}

// Signature locates a container by tag and an exact attribute value, then selects the child
// at position Child. Child -1 selects the container itself.
type Signature struct {
	Tag   string `yaml:"tag"`
	Attr  string `yaml:"attr"`
	Value string `yaml:"value"`
	Child int    `yaml:"child"`
}

func (s Signature) matches(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != s.Tag {
		return false
	}
	if s.Attr == "" {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == s.Attr {
			return attr.Val == s.Value
		}
	}
	return false
}

func (s Signature) sameContainer(other Signature) bool {
	return s.Tag == other.Tag && s.Attr == other.Attr && s.Value == other.Value
}

// Generator is one snapshot of the export generator's markup.
type Generator struct {
	Version string             `yaml:"version"`
	Roles   map[Role]Signature `yaml:"roles"`
}

type SignatureSet struct {
	Default    string      `yaml:"default"`
	Generators []Generator `yaml:"generators"`
}

func (s *SignatureSet) Generator(version string) (*Generator, error) {
	if version == "" {
		version = s.Default
	}
	for index := range s.Generators {
		if s.Generators[index].Version == version {
			return &s.Generators[index], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, version)
}

func (s *SignatureSet) validate() error {
	if len(s.Generators) == 0 {
		return errors.New("no generators declared")
	}
	if _, err := s.Generator(s.Default); err != nil {
		return fmt.Errorf("default generator: %w", err)
	}
	for _, generator := range s.Generators {
		for _, role := range requiredRoles {
			signature, ok := generator.Roles[role]
			if !ok || signature.Tag == "" {
				return fmt.Errorf("generator %q: role %s has no tag", generator.Version, role)
			}
			if signature.Child < -1 {
				return fmt.Errorf("generator %q: role %s has child %d", generator.Version, role, signature.Child)
			}
		}
		for _, pair := range pairedRoles {
			if !generator.Roles[pair[0]].sameContainer(generator.Roles[pair[1]]) {
				return fmt.Errorf("generator %q: roles %s and %s must share a container", generator.Version, pair[0], pair[1])
			}
		}
	}
	return nil
}

//go:embed signatures.yaml
var embeddedSignatures []byte

var defaultSignatures = sync.OnceValue(func() *SignatureSet {
	set, err := ParseSignatures(embeddedSignatures)
	if err != nil {
		panic(fmt.Sprintf("embedded signatures: %v", err))
	}
	return set
})

func DefaultSignatures() *SignatureSet {
	return defaultSignatures()
}

func ParseSignatures(data []byte) (*SignatureSet, error) {
	var set SignatureSet
	if unmarshalErr := yaml.Unmarshal(data, &set); unmarshalErr != nil {
		return nil, fmt.Errorf("parse signatures: %w", unmarshalErr)
	}
	if validateErr := set.validate(); validateErr != nil {
		return nil, fmt.Errorf("validate signatures: %w", validateErr)
	}
	return &set, nil
}
