// Package likes counts liked posts and comments per author.
package likes

import (
	"sort"

	"ddp_extract/internal/pseudonym"
)

type Event struct {
	Author string
}

type Summary struct {
	AuthorName    string
	AuthorHash    string
	LikedPosts    int
	LikedComments int
}

// Aggregate groups both collections by exact author name and full outer joins them; an
// author missing from one side gets 0 for it. Rows are ordered by liked posts, then liked
// comments, both descending, then author name.
func Aggregate(posts, comments []Event) []Summary {
	byAuthor := make(map[string]*Summary)
	var order []string
	row := func(author string) *Summary {
		if existing, ok := byAuthor[author]; ok {
			return existing
		}
		created := &Summary{AuthorName: author, AuthorHash: pseudonym.Hash(author)}
		byAuthor[author] = created
		order = append(order, author)
		return created
	}
	for _, event := range posts {
		row(event.Author).LikedPosts++
	}
	for _, event := range comments {
		row(event.Author).LikedComments++
	}

	summaries := make([]Summary, 0, len(order))
	for _, author := range order {
		summaries = append(summaries, *byAuthor[author])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		left, right := summaries[i], summaries[j]
		if left.LikedPosts != right.LikedPosts {
			return left.LikedPosts > right.LikedPosts
		}
		if left.LikedComments != right.LikedComments {
			return left.LikedComments > right.LikedComments
		}
		return left.AuthorName < right.AuthorName
	})
	return summaries
}
