// Package messages summarizes conversations per counterpart.
package messages

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"ddp_extract/internal/pseudonym"
)

type Message struct {
	Sender string
	// Content is nil for messages without text, such as shared media.
	Content     *string
	TimestampMS int64
}

type Conversation struct {
	Title        string
	Participants []string
	Messages     []Message
}

// Summary is one aggregate row per conversation.
type Summary struct {
	CounterpartName string
	CounterpartHash string
	MessageCount    int
	WordCount       int
	CharCount       int
}

// GroupMode decides what happens to conversations with more than two participants.
type GroupMode string

const (
	// GroupsAuto keeps each source's behavior: structured exports keep groups, markup exports drop them.
	GroupsAuto    GroupMode = "auto"
	GroupsInclude GroupMode = "include"
	GroupsExclude GroupMode = "exclude"
)

func ParseGroupMode(s string) (GroupMode, error) {
	switch mode := GroupMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return GroupsAuto, nil
	case GroupsAuto, GroupsInclude, GroupsExclude:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown group mode %q", s)
	}
}

// IncludeGroups resolves the mode for one source representation.
func (m GroupMode) IncludeGroups(markup bool) bool {
	switch m {
	case GroupsInclude:
		return true
	case GroupsExclude:
		return false
	default:
		return !markup
	}
}

type Options struct {
	// Self is the data subject; their own messages never count.
	Self          string
	IncludeGroups bool
}

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
	wordRun       = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]+`)
)

// Normalize drops non-printable runes, then collapses whitespace runs to single spaces and trims.
func Normalize(text string) string {
	printable := strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsSpace(r) || unicode.In(r, unicode.Z) {
			return r
		}
		return -1
	}, text)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(printable, " "))
}

func CountWords(text string) int {
	return len(wordRun.FindAllStringIndex(text, -1))
}

// participantSet returns the distinct participant names in first-seen order.
func (c Conversation) participantSet() []string {
	seen := make(map[string]struct{}, len(c.Participants))
	unique := make([]string, 0, len(c.Participants))
	for _, name := range c.Participants {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}

func (c Conversation) IsGroup() bool {
	return len(c.participantSet()) > 2
}

// Counterpart names everyone in the conversation except self, falling back to the title.
func (c Conversation) Counterpart(self string) string {
	var others []string
	for _, name := range c.participantSet() {
		if name != self {
			others = append(others, name)
		}
	}
	if len(others) == 0 {
		return c.Title
	}
	return strings.Join(others, ", ")
}

// Summarize counts the messages of one conversation sent by anyone other than self.
func Summarize(c Conversation, self string) Summary {
	counterpart := c.Counterpart(self)
	summary := Summary{
		CounterpartName: counterpart,
		CounterpartHash: pseudonym.Hash(counterpart),
	}
	for _, message := range c.Messages {
		if message.Content == nil || message.Sender == self {
			continue
		}
		normalized := Normalize(*message.Content)
		summary.MessageCount++
		summary.WordCount += CountWords(normalized)
		summary.CharCount += utf8.RuneCountInString(normalized)
	}
	return summary
}

// Aggregate returns one row per kept conversation, busiest first.
func Aggregate(conversations []Conversation, opts Options) []Summary {
	summaries := make([]Summary, 0, len(conversations))
	for _, conversation := range conversations {
		if !opts.IncludeGroups && conversation.IsGroup() {
			continue
		}
		summaries = append(summaries, Summarize(conversation, opts.Self))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].MessageCount != summaries[j].MessageCount {
			return summaries[i].MessageCount > summaries[j].MessageCount
		}
		return summaries[i].CounterpartName < summaries[j].CounterpartName
	})
	return summaries
}

// SelfFromTitles reads self off one-to-one conversations: their title is the counterpart's
// name, so the other participant is self. The name found most often wins, ties to the
// lexicographically smallest; "" when no conversation qualifies.
func SelfFromTitles(conversations []Conversation) string {
	counts := make(map[string]int)
	for _, conversation := range conversations {
		participants := conversation.participantSet()
		if len(participants) != 2 || conversation.Title == "" {
			continue
		}
		switch conversation.Title {
		case participants[0]:
			counts[participants[1]]++
		case participants[1]:
			counts[participants[0]]++
		}
	}
	return mostFrequent(counts)
}

// InferSelf guesses the data subject as the participant present in the most conversations.
// Ties go to the lexicographically smallest name; with no participants it returns "".
func InferSelf(conversations []Conversation) string {
	counts := make(map[string]int)
	for _, conversation := range conversations {
		for _, name := range conversation.participantSet() {
			counts[name]++
		}
	}
	return mostFrequent(counts)
}

func mostFrequent(counts map[string]int) string {
	best, bestCount := "", 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && name < best) {
			best, bestCount = name, count
		}
	}
	return best
}
