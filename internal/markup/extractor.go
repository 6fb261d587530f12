// Package markup extracts export data from rendered HTML pages.
//
// HTML exports carry no schema, only the generator's styling classes. Every class string
// this package depends on lives in signatures.yaml, so a generator change never reaches
// the aggregation code. A signature that matches nothing degrades that one element to its
// default and is reported as ErrSignatureMiss.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"ddp_extract/internal/fields"
	"ddp_extract/internal/likes"
	"ddp_extract/internal/messages"

	"golang.org/x/net/html"
)

var (
	ErrSignatureMiss    = errors.New("markup signature matched nothing")
	ErrUnknownGenerator = errors.New("unknown export generator version")
	ErrParse            = errors.New("parse markup")
)

type Extractor struct {
	generator *Generator
	variants  *fields.Variants
}

// NewExtractor selects a generator version from set; an empty version selects the set's default.
func NewExtractor(set *SignatureSet, version string, variants *fields.Variants) (*Extractor, error) {
	if set == nil {
		set = DefaultSignatures()
	}
	if variants == nil {
		variants = fields.DefaultVariants()
	}
	generator, err := set.Generator(version)
	if err != nil {
		return nil, err
	}
	return &Extractor{generator: generator, variants: variants}, nil
}

// Default returns an extractor for the default generator of the embedded signatures.
func Default() *Extractor {
	extractor, err := NewExtractor(nil, "", nil)
	if err != nil {
		panic(err)
	}
	return extractor
}

func (e *Extractor) Version() string {
	return e.generator.Version
}

// PersonalInfo reads labelled profile rows. Labels are mapped to canonical fields with the
// same variant table the structured path uses.
func (e *Extractor) PersonalInfo(data []byte) (fields.PersonalInfo, error) {
	doc, parseErr := parse(data)
	if parseErr != nil {
		return fields.PersonalInfo{}, parseErr
	}
	labelSignature := e.generator.Roles[RoleProfileFieldLabel]
	valueSignature := e.generator.Roles[RoleProfileFieldValue]
	containers := findAll(doc, labelSignature)
	if len(containers) == 0 {
		return fields.PersonalInfo{}, missError(RoleProfileFieldLabel)
	}

	var info fields.PersonalInfo
	resolved := make(map[fields.Field]bool)
	for _, container := range containers {
		field, ok := e.variants.FieldForLabel(childText(container, labelSignature.Child))
		if !ok || resolved[field] {
			continue
		}
		resolved[field] = true
		info.Set(field, childText(container, valueSignature.Child))
	}

	var missing []string
	for _, entry := range e.variants.Fields {
		if !resolved[entry.Field] {
			missing = append(missing, string(entry.Field))
		}
	}
	if len(missing) > 0 {
		return info, fmt.Errorf("%w: %s", fields.ErrFieldMissing, strings.Join(missing, ", "))
	}
	return info, nil
}

// ContactCount counts the entries of a followers or following page.
func (e *Extractor) ContactCount(data []byte) (int, error) {
	doc, parseErr := parse(data)
	if parseErr != nil {
		return 0, parseErr
	}
	signature := e.generator.Roles[RoleContactEntry]
	count := 0
	for _, container := range findAll(doc, signature) {
		if childText(container, signature.Child) != "" {
			count++
		}
	}
	if count == 0 {
		return 0, missError(RoleContactEntry)
	}
	return count, nil
}

// Conversation reads one message_1.html page. Participants are the distinct senders.
func (e *Extractor) Conversation(data []byte) (messages.Conversation, error) {
	doc, parseErr := parse(data)
	if parseErr != nil {
		return messages.Conversation{}, parseErr
	}
	senderSignature := e.generator.Roles[RoleMessageSender]
	contentSignature := e.generator.Roles[RoleMessageContent]
	titleSignature := e.generator.Roles[RoleConversationTitle]

	var conversation messages.Conversation
	if titles := findAll(doc, titleSignature); len(titles) > 0 {
		conversation.Title = childText(titles[0], titleSignature.Child)
	}

	containers := findAll(doc, senderSignature)
	if len(containers) == 0 {
		return conversation, missError(RoleMessageSender)
	}
	seen := make(map[string]struct{})
	for _, container := range containers {
		sender := childText(container, senderSignature.Child)
		if sender == "" {
			continue
		}
		if _, ok := seen[sender]; !ok {
			seen[sender] = struct{}{}
			conversation.Participants = append(conversation.Participants, sender)
		}
		message := messages.Message{Sender: sender}
		if content := childText(container, contentSignature.Child); content != "" {
			message.Content = &content
		}
		conversation.Messages = append(conversation.Messages, message)
	}
	return conversation, nil
}

// LikeEvents reads liked_posts.html or liked_comments.html.
func (e *Extractor) LikeEvents(data []byte) ([]likes.Event, error) {
	doc, parseErr := parse(data)
	if parseErr != nil {
		return nil, parseErr
	}
	signature := e.generator.Roles[RoleLikeAuthor]
	var events []likes.Event
	for _, container := range findAll(doc, signature) {
		if author := childText(container, signature.Child); author != "" {
			events = append(events, likes.Event{Author: author})
		}
	}
	if len(events) == 0 {
		return nil, missError(RoleLikeAuthor)
	}
	return events, nil
}

func missError(role Role) error {
	return fmt.Errorf("%w: %s", ErrSignatureMiss, role)
}

func parse(data []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// findAll returns matching elements in document order. Matches are not searched for
// nested matches.
func findAll(root *html.Node, signature Signature) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if signature.matches(n) {
			found = append(found, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// childText returns the text of the index-th meaningful child of n: element children and
// non-blank text nodes, in order. Index -1 reads n itself.
func childText(n *html.Node, index int) string {
	if index < 0 {
		return nodeText(n)
	}
	position := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
		case html.ElementNode:
		default:
			continue
		}
		if position == index {
			return nodeText(c)
		}
		position++
	}
	return ""
}

// nodeText concatenates descendant text with whitespace collapsed.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			parts = append(parts, node.Data)
			return
		}
		if node.Type == html.ElementNode {
			switch node.Data {
			case "script", "style":
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
