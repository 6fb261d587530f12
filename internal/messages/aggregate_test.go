package messages

import (
	"testing"

	"ddp_extract/internal/pseudonym"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) *string {
	return &s
}

func TestSummarizeSkipsSelfAndAbsentContent(t *testing.T) {
	conversation := Conversation{
		Participants: []string{"A", "B"},
		Messages: []Message{
			{Sender: "A", Content: text("hi")},
			{Sender: "B", Content: text("hello there")},
			{Sender: "B", Content: nil},
		},
	}

	summary := Summarize(conversation, "A")
	assert.Equal(t, Summary{
		CounterpartName: "B",
		CounterpartHash: pseudonym.Hash("B"),
		MessageCount:    1,
		WordCount:       2,
		CharCount:       11,
	}, summary)
}

func TestSummarizeOnlySelfMessages(t *testing.T) {
	conversation := Conversation{
		Participants: []string{"A", "B"},
		Messages: []Message{
			{Sender: "A", Content: text("one")},
			{Sender: "A", Content: text("two words")},
		},
	}
	summary := Summarize(conversation, "A")
	assert.Zero(t, summary.MessageCount)
	assert.Zero(t, summary.WordCount)
	assert.Zero(t, summary.CharCount)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "hello there", want: "hello there"},
		{in: "  hello \n\t there  ", want: "hello there"},
		{in: "bell\a ring", want: "bell ring"},
		{in: "zero\u200bwidth", want: "zerowidth"},
		{in: "no\u00a0break", want: "no break"},
		{in: "hi \u200e there", want: "hi there"},
		{in: "a \u200b\u200b b", want: "a b"},
		{in: "line\u2028sep\vtab", want: "line sep tab"},
		{in: "", want: ""},
		{in: "émoji 🌻 ok", want: "émoji 🌻 ok"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "hello there", want: 2},
		{in: "", want: 0},
		{in: "it's snake_case, ok?", want: 4},
		{in: "naïve café 2024", want: 3},
		{in: "🌻 🌻", want: 0},
		{in: "日本語 text", want: 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountWords(tt.in), tt.in)
	}
}

func TestAggregateGroupsAndOrdering(t *testing.T) {
	conversations := []Conversation{
		{
			Title:        "quiet",
			Participants: []string{"Carol", "Me"},
			Messages:     []Message{{Sender: "Carol", Content: text("hey")}},
		},
		{
			Title:        "busy",
			Participants: []string{"Bob", "Me"},
			Messages: []Message{
				{Sender: "Bob", Content: text("one")},
				{Sender: "Bob", Content: text("two")},
			},
		},
		{
			Title:        "team",
			Participants: []string{"Bob", "Carol", "Dan", "Me"},
			Messages: []Message{
				{Sender: "Dan", Content: text("a")},
				{Sender: "Carol", Content: text("b")},
				{Sender: "Bob", Content: text("c")},
			},
		},
	}

	withGroups := Aggregate(conversations, Options{Self: "Me", IncludeGroups: true})
	require.Len(t, withGroups, 3)
	assert.Equal(t, "Bob, Carol, Dan", withGroups[0].CounterpartName)
	assert.Equal(t, 3, withGroups[0].MessageCount)
	assert.Equal(t, "Bob", withGroups[1].CounterpartName)
	assert.Equal(t, "Carol", withGroups[2].CounterpartName)

	withoutGroups := Aggregate(conversations, Options{Self: "Me"})
	require.Len(t, withoutGroups, 2)
	assert.Equal(t, "Bob", withoutGroups[0].CounterpartName)
	assert.Equal(t, "Carol", withoutGroups[1].CounterpartName)
}

func TestCounterpartFallsBackToTitle(t *testing.T) {
	conversation := Conversation{Title: "Deleted user", Participants: []string{"Me"}}
	assert.Equal(t, "Deleted user", conversation.Counterpart("Me"))
	assert.False(t, conversation.IsGroup())
}

func TestInferSelf(t *testing.T) {
	conversations := []Conversation{
		{Participants: []string{"Bob", "Me"}},
		{Participants: []string{"Carol", "Me"}},
		{Participants: []string{"Alice", "Carol", "Me"}},
	}
	assert.Equal(t, "Me", InferSelf(conversations))
	assert.Equal(t, "A", InferSelf([]Conversation{{Participants: []string{"B", "A"}}}))
	assert.Equal(t, "", InferSelf(nil))
}

func TestSelfFromTitles(t *testing.T) {
	tests := []struct {
		name          string
		conversations []Conversation
		want          string
	}{
		{
			name:          "title names the counterpart",
			conversations: []Conversation{{Title: "Anna", Participants: []string{"Anna", "Zed"}}},
			want:          "Zed",
		},
		{
			name: "majority over conversations",
			conversations: []Conversation{
				{Title: "Anna", Participants: []string{"Anna", "Zed"}},
				{Title: "Bob", Participants: []string{"Zed", "Bob"}},
				{Title: "Zed", Participants: []string{"Zed", "Carl"}},
			},
			want: "Zed",
		},
		{
			name:          "groups are ignored",
			conversations: []Conversation{{Title: "Anna", Participants: []string{"Anna", "Zed", "Bob"}}},
		},
		{
			name:          "title matches nobody",
			conversations: []Conversation{{Title: "Chat", Participants: []string{"Anna", "Zed"}}},
		},
		{
			name:          "untitled",
			conversations: []Conversation{{Participants: []string{"Anna", "Zed"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelfFromTitles(tt.conversations))
		})
	}
}

func TestGroupMode(t *testing.T) {
	mode, err := ParseGroupMode("")
	require.NoError(t, err)
	assert.Equal(t, GroupsAuto, mode)
	assert.True(t, mode.IncludeGroups(false))
	assert.False(t, mode.IncludeGroups(true))

	mode, err = ParseGroupMode(" Include ")
	require.NoError(t, err)
	assert.True(t, mode.IncludeGroups(true))

	mode, err = ParseGroupMode("exclude")
	require.NoError(t, err)
	assert.False(t, mode.IncludeGroups(false))

	_, err = ParseGroupMode("sometimes")
	assert.Error(t, err)
}
