package fields

import (
	"testing"

	"ddp_extract/internal/jsondata"
	"ddp_extract/internal/likes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, text string) jsondata.Value {
	t.Helper()
	value, err := jsondata.Decode([]byte(text))
	require.NoError(t, err)
	return value
}

func TestLookupEnglish(t *testing.T) {
	tree := decode(t, `{"profile_user": [{"string_map_data": {
		"Username": {"href": "", "value": "alice_01", "timestamp": 0},
		"Name": {"value": "Alice"},
		"Gender": {"value": "female"},
		"Date of birth": {"value": "1990-01-01"},
		"Private Account": {"value": "True"}
	}}]}`)

	info, err := NewResolver(nil).Lookup(tree)
	require.NoError(t, err)
	assert.Equal(t, PersonalInfo{
		Username:       "alice_01",
		DisplayName:    "Alice",
		Gender:         "female",
		DateOfBirth:    "1990-01-01",
		PrivateAccount: "True",
	}, info)
}

func TestLookupDutchOnly(t *testing.T) {
	tree := decode(t, `{"profile_user": [{"string_map_data": {
		"Gebruikersnaam": {"value": "bram"},
		"Geslacht": {"value": "man"}
	}}]}`)

	info, err := NewResolver(nil).Lookup(tree)
	assert.ErrorIs(t, err, ErrFieldMissing)
	assert.Equal(t, "bram", info.Username)
	assert.Equal(t, "man", info.Gender)
	assert.Empty(t, info.DisplayName)
	assert.Empty(t, info.DateOfBirth)
	assert.Empty(t, info.PrivateAccount)
}

func TestLookupRepairsMojibakeKeysAndValues(t *testing.T) {
	tree := decode(t, `{"profile_user": [{"string_map_data": {
		"PrivÃ©account": {"value": "Nee"},
		"Naam": {"value": "ZoÃ«"}
	}}]}`)

	info := NewResolver(nil).Resolve(tree)
	assert.Equal(t, "Nee", info.PrivateAccount)
	assert.Equal(t, "Zoë", info.DisplayName)
}

func TestLookupFirstSpellingWins(t *testing.T) {
	tree := decode(t, `{"profile_user": [{"string_map_data": {
		"Username": {"value": "english"},
		"Gebruikersnaam": {"value": "dutch"}
	}}]}`)
	assert.Equal(t, "english", NewResolver(nil).Resolve(tree).Username)
}

func TestLookupWrongShape(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "empty object", json: `{}`},
		{name: "empty profile list", json: `{"profile_user": []}`},
		{name: "profile not a list", json: `{"profile_user": {"string_map_data": {}}}`},
		{name: "string map not an object", json: `{"profile_user": [{"string_map_data": ["Username"]}]}`},
		{name: "root array", json: `[{"Username": {"value": "x"}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := decode(t, tt.json)
			info, err := NewResolver(nil).Lookup(tree)
			assert.ErrorIs(t, err, ErrUnexpectedShape)
			assert.True(t, info.IsZero())
			assert.True(t, NewResolver(nil).Resolve(tree).IsZero())
		})
	}
}

func TestResolveNeverFailsOnEmptyContainer(t *testing.T) {
	tree := decode(t, `{"profile_user": [{"string_map_data": {}}]}`)
	assert.NotPanics(t, func() {
		info := NewResolver(nil).Resolve(tree)
		assert.True(t, info.IsZero())
	})
}

func TestVariantsAreData(t *testing.T) {
	variants, err := ParseVariants([]byte("fields:\n  - field: username\n    keys: [Benutzername]\n"))
	require.NoError(t, err)

	tree := decode(t, `{"profile_user": [{"string_map_data": {"Benutzername": {"value": "kai"}, "Username": {"value": "ignored"}}}]}`)
	info, err := NewResolver(variants).Lookup(tree)
	require.NoError(t, err)
	assert.Equal(t, "kai", info.Username)

	_, err = ParseVariants([]byte("fields: []\n"))
	assert.Error(t, err)
}

func TestFieldForLabel(t *testing.T) {
	variants := DefaultVariants()
	tests := []struct {
		label string
		want  Field
		ok    bool
	}{
		{label: "Username", want: Username, ok: true},
		{label: " gebruikersnaam ", want: Username, ok: true},
		{label: "PrivÃ©account", want: PrivateAccount, ok: true},
		{label: "Date of birth", want: DateOfBirth, ok: true},
		{label: "Email", ok: false},
	}
	for _, tt := range tests {
		got, ok := variants.FieldForLabel(tt.label)
		assert.Equal(t, tt.ok, ok, tt.label)
		assert.Equal(t, tt.want, got, tt.label)
	}
}

func TestCounts(t *testing.T) {
	following, err := FollowingCount(decode(t, `{"relationships_following": [1, 2, 3]}`))
	require.NoError(t, err)
	assert.Equal(t, 3, following)

	_, err = FollowingCount(decode(t, `{"relationships_followers": []}`))
	assert.ErrorIs(t, err, ErrUnexpectedShape)

	followers, err := FollowerCount(decode(t, `[{"title": ""}, {"title": ""}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, followers)

	followers, err = FollowerCount(decode(t, `{"relationships_followers": [{}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, followers)

	_, err = FollowerCount(decode(t, `{}`))
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestTopicsAndInterests(t *testing.T) {
	resolver := NewResolver(nil)

	topics, err := resolver.Topics(decode(t, `{"topics_your_topics": [
		{"string_map_data": {"Naam": {"value": "Fotografie"}}},
		{"string_map_data": {"Name": {"value": "Travel"}}},
		{"string_map_data": {"Name": {"value": "CafÃ©s"}, "Extra": {"value": "x"}}},
		{"string_map_data": {}}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Fotografie", "Travel", "Cafés"}, topics)

	interests, err := resolver.Interests(decode(t, `{"inferred_data_ig_interest": [
		{"string_map_data": {"Interesse": {"value": "Dieren"}}}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Dieren"}, interests)

	_, err = resolver.Interests(decode(t, `{}`))
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestLikeEvents(t *testing.T) {
	posts, err := LikedPostEvents(decode(t, `{"likes_media_likes": [
		{"title": "alice", "string_list_data": [{"value": "ð\u009f\u0091\u008d"}]},
		{"title": "bob"},
		{"string_list_data": []}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, []likes.Event{{Author: "alice"}, {Author: "bob"}}, posts)

	comments, err := LikedCommentEvents(decode(t, `{"likes_comment_likes": [{"title": "carol"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []likes.Event{{Author: "carol"}}, comments)

	_, err = LikedCommentEvents(decode(t, `{"likes_media_likes": []}`))
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestConversationFromJSON(t *testing.T) {
	conversation, err := ConversationFromJSON(decode(t, `{
		"participants": [{"name": "B"}, {"name": "A"}],
		"title": "B",
		"messages": [
			{"sender_name": "B", "timestamp_ms": 1700000002000},
			{"sender_name": "B", "timestamp_ms": 1700000001000, "content": "hello there"},
			{"sender_name": "A", "timestamp_ms": 1700000000000, "content": "hi"}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "B", conversation.Title)
	assert.Equal(t, []string{"B", "A"}, conversation.Participants)
	require.Len(t, conversation.Messages, 3)
	assert.Nil(t, conversation.Messages[0].Content)
	require.NotNil(t, conversation.Messages[1].Content)
	assert.Equal(t, "hello there", *conversation.Messages[1].Content)
	assert.Equal(t, int64(1700000000000), conversation.Messages[2].TimestampMS)

	_, err = ConversationFromJSON(decode(t, `{"participants": []}`))
	assert.ErrorIs(t, err, ErrUnexpectedShape)
	_, err = ConversationFromJSON(decode(t, `[]`))
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}
