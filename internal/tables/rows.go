package tables

import (
	"ddp_extract/internal/fields"
	"ddp_extract/internal/likes"
	"ddp_extract/internal/messages"
	"ddp_extract/internal/pseudonym"
)

// Outcome tells the caller which flow to continue with.
type Outcome string

const (
	// OutcomeData: at least one table has rows.
	OutcomeData Outcome = "data"
	// OutcomeEmpty: the export was recognized but nothing could be extracted.
	OutcomeEmpty Outcome = "empty"
	// OutcomeUnrecognized: a readable archive that matches no known export.
	OutcomeUnrecognized Outcome = "unrecognized"
	// OutcomeMalformed: the container itself could not be read.
	OutcomeMalformed Outcome = "malformed"
)

// Decide applies the flow rules: extracted rows always win, then recognition decides
// between an empty donation and a retry prompt.
func Decide(malformed, recognized bool, results *Results) Outcome {
	switch {
	case malformed:
		return OutcomeMalformed
	case results != nil && results.HasData():
		return OutcomeData
	case recognized:
		return OutcomeEmpty
	default:
		return OutcomeUnrecognized
	}
}

// Counts are optional follower and following totals; nil means the source was missing.
type Counts struct {
	Followers *int
	Following *int
}

func optional(count *int) any {
	if count == nil {
		return nil
	}
	return *count
}

// PersonalInfo renders the single profile row. Username and display name are pseudonymized.
func PersonalInfo(info fields.PersonalInfo, counts Counts) ResultSet {
	table := NewTable("username_hash", "display_name_hash", "gender", "date_of_birth", "private_account", "n_followers", "n_following")
	table.Append(
		pseudonym.Hash(info.Username),
		pseudonym.Hash(info.DisplayName),
		info.Gender,
		info.DateOfBirth,
		info.PrivateAccount,
		optional(counts.Followers),
		optional(counts.Following),
	)
	return ResultSet{Title: Titles[KeyPersonalInfo], Table: table}
}

func MessageSummary(summaries []messages.Summary) ResultSet {
	table := NewTable("counterpart_name", "counterpart_hash", "n_messages", "n_words", "n_chars")
	for _, summary := range summaries {
		table.Append(summary.CounterpartName, summary.CounterpartHash, summary.MessageCount, summary.WordCount, summary.CharCount)
	}
	return ResultSet{Title: Titles[KeyMessageSummary], Adjustable: true, Table: table}
}

func Likes(summaries []likes.Summary) ResultSet {
	table := NewTable("author_name", "author_hash", "n_liked_posts", "n_liked_comments")
	for _, summary := range summaries {
		table.Append(summary.AuthorName, summary.AuthorHash, summary.LikedPosts, summary.LikedComments)
	}
	return ResultSet{Title: Titles[KeyLikes], Adjustable: true, Table: table}
}

// List renders a single-column table under key.
func List(key, column string, values []string) ResultSet {
	table := NewTable(column)
	for _, value := range values {
		table.Append(value)
	}
	return ResultSet{Title: Titles[key], Adjustable: true, Table: table}
}
