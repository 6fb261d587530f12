package fields

import (
	"fmt"

	"ddp_extract/internal/jsondata"
	"ddp_extract/internal/likes"
	"ddp_extract/internal/messages"
)

// FollowerCount reads followers_1.json: older exports ship a bare array, newer ones wrap it
// in relationships_followers.
func FollowerCount(v jsondata.Value) (int, error) {
	if followers, ok := jsondata.Array(v); ok {
		return len(followers), nil
	}
	if wrapped, ok := jsondata.Lookup(v, "relationships_followers"); ok {
		if followers, ok := jsondata.Array(wrapped); ok {
			return len(followers), nil
		}
	}
	return 0, fmt.Errorf("%w: followers list not found", ErrUnexpectedShape)
}

func FollowingCount(v jsondata.Value) (int, error) {
	raw, ok := jsondata.Lookup(v, "relationships_following")
	if !ok {
		return 0, fmt.Errorf("%w: relationships_following not found", ErrUnexpectedShape)
	}
	following, ok := jsondata.Array(raw)
	if !ok {
		return 0, fmt.Errorf("%w: relationships_following is %T", ErrUnexpectedShape, raw)
	}
	return len(following), nil
}

// Topics reads your_topics.json.
func (r *Resolver) Topics(v jsondata.Value) ([]string, error) {
	return r.labelledList(v, "topics_your_topics")
}

// Interests reads ads_interests.json.
func (r *Resolver) Interests(v jsondata.Value) ([]string, error) {
	return r.labelledList(v, "inferred_data_ig_interest")
}

// labelledList collects item.string_map_data.<label>.value for every item under key. The
// label is language dependent and usually the only entry, so it is not looked up by name
// unless the map carries several entries.
func (r *Resolver) labelledList(v jsondata.Value, key string) ([]string, error) {
	raw, ok := jsondata.Lookup(v, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", ErrUnexpectedShape, key)
	}
	items, ok := jsondata.Array(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrUnexpectedShape, key, raw)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		stringMap, ok := jsondata.Lookup(item, "string_map_data")
		if !ok {
			continue
		}
		entry, found := r.listEntry(stringMap)
		if !found {
			continue
		}
		raw, _ := jsondata.Lookup(entry, "value")
		if text, ok := jsondata.String(raw); ok {
			out = append(out, jsondata.RepairMojibake(text))
		}
	}
	return out, nil
}

func (r *Resolver) listEntry(stringMap jsondata.Value) (jsondata.Value, bool) {
	if _, entry, ok := jsondata.SingleEntry(stringMap); ok {
		return entry, true
	}
	for _, label := range r.variants.ListLabels {
		if entry, ok := jsondata.Lookup(stringMap, label); ok {
			return entry, true
		}
	}
	return nil, false
}

// LikedPostEvents reads liked_posts.json, one event per liked post.
func LikedPostEvents(v jsondata.Value) ([]likes.Event, error) {
	return likeEvents(v, "likes_media_likes")
}

// LikedCommentEvents reads liked_comments.json, one event per liked comment.
func LikedCommentEvents(v jsondata.Value) ([]likes.Event, error) {
	return likeEvents(v, "likes_comment_likes")
}

func likeEvents(v jsondata.Value, key string) ([]likes.Event, error) {
	raw, ok := jsondata.Lookup(v, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", ErrUnexpectedShape, key)
	}
	items, ok := jsondata.Array(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrUnexpectedShape, key, raw)
	}
	events := make([]likes.Event, 0, len(items))
	for _, item := range items {
		rawTitle, _ := jsondata.Lookup(item, "title")
		author, ok := jsondata.String(rawTitle)
		if !ok {
			continue
		}
		events = append(events, likes.Event{Author: jsondata.RepairMojibake(author)})
	}
	return events, nil
}

// ConversationFromJSON reads one message_1.json conversation file.
func ConversationFromJSON(v jsondata.Value) (messages.Conversation, error) {
	root, ok := jsondata.Object(v)
	if !ok {
		return messages.Conversation{}, fmt.Errorf("%w: conversation root is %T", ErrUnexpectedShape, v)
	}
	rawMessages, ok := jsondata.Array(root["messages"])
	if !ok {
		return messages.Conversation{}, fmt.Errorf("%w: messages list not found", ErrUnexpectedShape)
	}

	var conversation messages.Conversation
	if title, ok := jsondata.String(root["title"]); ok {
		conversation.Title = jsondata.RepairMojibake(title)
	}
	participants, _ := jsondata.Array(root["participants"])
	for _, participant := range participants {
		rawName, _ := jsondata.Lookup(participant, "name")
		if name, ok := jsondata.String(rawName); ok {
			conversation.Participants = append(conversation.Participants, jsondata.RepairMojibake(name))
		}
	}

	for _, rawMessage := range rawMessages {
		message, ok := jsondata.Object(rawMessage)
		if !ok {
			continue
		}
		sender, _ := jsondata.String(message["sender_name"])
		parsed := messages.Message{Sender: jsondata.RepairMojibake(sender)}
		if content, ok := jsondata.String(message["content"]); ok {
			repaired := jsondata.RepairMojibake(content)
			parsed.Content = &repaired
		}
		if timestamp, ok := message["timestamp_ms"].(float64); ok {
			parsed.TimestampMS = int64(timestamp)
		}
		conversation.Messages = append(conversation.Messages, parsed)
	}
	return conversation, nil
}
