package extract

import (
	"errors"
	"fmt"
	"strings"

	"ddp_extract/internal/archive"
	"ddp_extract/internal/catalog"
	"ddp_extract/internal/classify"
	"ddp_extract/internal/diagnostics"
	"ddp_extract/internal/fields"
	"ddp_extract/internal/filters"
	"ddp_extract/internal/jsondata"
	"ddp_extract/internal/likes"
	"ddp_extract/internal/markup"
	"ddp_extract/internal/messages"
	"ddp_extract/internal/tables"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Member base names, without extension, read from every export.
const (
	memberPersonalInfo  = "personal_information"
	memberFollowers     = "followers_1"
	memberFollowing     = "following"
	memberLikedPosts    = "liked_posts"
	memberLikedComments = "liked_comments"
	memberTopics        = "your_topics"
	memberInterests     = "ads_interests"
	memberConversation  = "message_1"
	inboxPath           = "messages/inbox"
)

// Options configure one analysis. Zero values select the embedded catalog, variant table
// and signatures. Everything referenced here is read-only and may be shared.
type Options struct {
	SessionID string
	Catalog   *catalog.Catalog
	Resolver  *fields.Resolver
	Extractor *markup.Extractor
	Groups    messages.GroupMode
	// Tables restricts the result sets; empty keeps all of them.
	Tables []string
	Sink   diagnostics.Sink
}

func (o Options) withDefaults() Options {
	if o.SessionID == "" {
		o.SessionID = uuid.NewString()
	}
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	if o.Resolver == nil {
		o.Resolver = fields.NewResolver(nil)
	}
	if o.Extractor == nil {
		o.Extractor = markup.Default()
	}
	if o.Groups == "" {
		o.Groups = messages.GroupsAuto
	}
	if o.Sink == nil {
		o.Sink = diagnostics.Nop{}
	}
	return o
}

// Report is the outcome of one archive analysis.
type Report struct {
	SessionID      string              `json:"session_id" yaml:"session_id"`
	File           string              `json:"file,omitempty" yaml:"file,omitempty"`
	Status         classify.Status     `json:"status" yaml:"status"`
	Category       string              `json:"category" yaml:"category"`
	Representation string              `json:"representation,omitempty" yaml:"representation,omitempty"`
	Outcome        tables.Outcome      `json:"outcome" yaml:"outcome"`
	Results        *tables.Results     `json:"results" yaml:"results"`
	Tracking       []diagnostics.Event `json:"tracking,omitempty" yaml:"tracking,omitempty"`

	Classification classify.Result `json:"-" yaml:"-"`
	// Err is set only when the archive itself could not be read.
	Err error `json:"-" yaml:"-"`
	// Recovered collects every failure that was replaced by a default value.
	Recovered error `json:"-" yaml:"-"`
}

// Analyze classifies data and extracts every known table from it. A missing member, key or
// markup element only empties the table it feeds; only an unreadable container stops the
// analysis, with OutcomeMalformed.
func Analyze(data []byte, opts Options) Report {
	opts = opts.withDefaults()
	report := Report{SessionID: opts.SessionID, Results: tables.NewResults()}
	reporter := diagnostics.NewReporter(opts.Sink, "classify")

	classification, zipArchive, openErr := classify.Archive(opts.Catalog, data)
	report.Classification = classification
	report.Status = classification.Status
	report.Category = classification.CategoryID()
	if openErr != nil {
		reporter.Error("archive unreadable", "", openErr)
		report.Err = openErr
		report.Outcome = tables.Decide(true, false, nil)
		return report
	}

	representation := catalog.Structured
	if classification.Category != nil {
		representation = classification.Category.Representation
		report.Representation = string(classification.Category.Representation)
		reporter.Info(fmt.Sprintf("recognized %s export from %d known files", classification.Category.ID, len(classification.Overlap)), "")
	} else {
		reporter.Warn("no known export files found", "", nil)
	}

	run := &analysis{
		archive:   zipArchive,
		opts:      opts,
		reporter:  diagnostics.NewReporter(opts.Sink, "extract"),
		report:    &report,
		extension: representation.Extension(),
	}
	if representation == catalog.Markup {
		run.extractMarkup()
	} else {
		run.extractStructured()
	}

	report.Results.Retain(filters.TableSelector(opts.Tables))
	found := make(map[string]struct{}, report.Results.Len())
	for _, key := range report.Results.Keys() {
		found[key] = struct{}{}
	}
	if !filters.HasAllDesired(found, opts.Tables, filters.NormalizeTableName) {
		reporter.Warn(fmt.Sprintf("requested tables not all found: %s", strings.Join(opts.Tables, ", ")), "", nil)
	}
	report.Outcome = tables.Decide(false, classification.Recognized(), report.Results)
	if report.Outcome == tables.OutcomeEmpty {
		report.Results = tables.EmptyResultSet()
	}
	reporter.Info(fmt.Sprintf("analysis finished: %s", report.Outcome), "")
	return report
}

type analysis struct {
	archive   *archive.Archive
	opts      Options
	reporter  diagnostics.Reporter
	report    *Report
	extension string
}

// name returns the member file name for base in this export's representation.
func (a *analysis) name(base string) string {
	return base + a.extension
}

// recover records a failure that the caller replaces with a default.
func (a *analysis) recover(message, member string, err error) {
	if errors.Is(err, archive.ErrMemberNotFound) {
		a.reporter.Info(message, member)
	} else {
		a.reporter.Warn(message, member, err)
	}
	a.report.Recovered = multierr.Append(a.report.Recovered, fmt.Errorf("%s: %w", member, err))
}

func (a *analysis) member(name string) ([]byte, bool) {
	data, err := a.archive.ReadMember(name)
	if err != nil {
		a.recover("member not available", name, err)
		return nil, false
	}
	a.reporter.Debug("read member", name)
	return data, true
}

func (a *analysis) decoded(name string) (jsondata.Value, bool) {
	data, ok := a.member(name)
	if !ok {
		return nil, false
	}
	value, err := jsondata.Decode(data)
	if err != nil {
		a.recover("member not decodable", name, err)
		return nil, false
	}
	return value, true
}

func (a *analysis) extractStructured() {
	var (
		info      fields.PersonalInfo
		counts    tables.Counts
		foundInfo bool
	)
	name := a.name(memberPersonalInfo)
	if tree, ok := a.decoded(name); ok {
		foundInfo = true
		resolved, err := a.opts.Resolver.Lookup(tree)
		if err != nil {
			a.recover("personal information incomplete", name, err)
		}
		info = resolved
	}
	name = a.name(memberFollowers)
	if tree, ok := a.decoded(name); ok {
		foundInfo = true
		counts.Followers = a.count(name, func() (int, error) { return fields.FollowerCount(tree) })
	}
	name = a.name(memberFollowing)
	if tree, ok := a.decoded(name); ok {
		foundInfo = true
		counts.Following = a.count(name, func() (int, error) { return fields.FollowingCount(tree) })
	}
	if foundInfo {
		a.report.Results.Set(tables.KeyPersonalInfo, tables.PersonalInfo(info, counts))
	}

	var conversations []messages.Conversation
	name = a.name(memberConversation)
	pages, err := a.archive.ReadAllMatching(name, inboxPath)
	if err != nil {
		a.recover("no conversations", name, err)
	}
	for _, page := range pages {
		tree, decodeErr := jsondata.Decode(page)
		if decodeErr != nil {
			a.recover("conversation not decodable", name, decodeErr)
			continue
		}
		conversation, shapeErr := fields.ConversationFromJSON(tree)
		if shapeErr != nil {
			a.recover("conversation skipped", name, shapeErr)
			continue
		}
		conversations = append(conversations, conversation)
	}
	a.summarizeConversations(conversations, info, false)

	postEvents, foundPosts := a.structuredLikes(a.name(memberLikedPosts), fields.LikedPostEvents)
	commentEvents, foundComments := a.structuredLikes(a.name(memberLikedComments), fields.LikedCommentEvents)
	if foundPosts || foundComments {
		a.report.Results.Set(tables.KeyLikes, tables.Likes(likes.Aggregate(postEvents, commentEvents)))
	}

	a.structuredList(a.name(memberTopics), tables.KeyTopics, "topic", a.opts.Resolver.Topics)
	a.structuredList(a.name(memberInterests), tables.KeyInterests, "interest", a.opts.Resolver.Interests)
}

func (a *analysis) count(name string, read func() (int, error)) *int {
	n, err := read()
	if err != nil {
		a.recover("count unavailable", name, err)
		return nil
	}
	return &n
}

func (a *analysis) structuredLikes(name string, read func(jsondata.Value) ([]likes.Event, error)) ([]likes.Event, bool) {
	tree, ok := a.decoded(name)
	if !ok {
		return nil, false
	}
	events, err := read(tree)
	if err != nil {
		a.recover("likes unavailable", name, err)
	}
	return events, true
}

func (a *analysis) structuredList(name, key, column string, read func(jsondata.Value) ([]string, error)) {
	tree, ok := a.decoded(name)
	if !ok {
		return
	}
	values, err := read(tree)
	if err != nil {
		a.recover("list unavailable", name, err)
	}
	a.report.Results.Set(key, tables.List(key, column, values))
}

func (a *analysis) extractMarkup() {
	extractor := a.opts.Extractor
	var (
		info      fields.PersonalInfo
		counts    tables.Counts
		foundInfo bool
	)
	name := a.name(memberPersonalInfo)
	if page, ok := a.member(name); ok {
		foundInfo = true
		resolved, err := extractor.PersonalInfo(page)
		if err != nil {
			a.recover("personal information incomplete", name, err)
		}
		info = resolved
	}
	name = a.name(memberFollowers)
	if page, ok := a.member(name); ok {
		foundInfo = true
		counts.Followers = a.count(name, func() (int, error) { return extractor.ContactCount(page) })
	}
	name = a.name(memberFollowing)
	if page, ok := a.member(name); ok {
		foundInfo = true
		counts.Following = a.count(name, func() (int, error) { return extractor.ContactCount(page) })
	}
	if foundInfo {
		a.report.Results.Set(tables.KeyPersonalInfo, tables.PersonalInfo(info, counts))
	}

	var conversations []messages.Conversation
	name = a.name(memberConversation)
	pages, err := a.archive.ReadAllMatching(name, inboxPath)
	if err != nil {
		a.recover("no conversations", name, err)
	}
	for _, page := range pages {
		conversation, extractErr := extractor.Conversation(page)
		if extractErr != nil {
			a.recover("conversation skipped", name, extractErr)
			continue
		}
		conversations = append(conversations, conversation)
	}
	a.summarizeConversations(conversations, info, true)

	postEvents, foundPosts := a.markupLikes(a.name(memberLikedPosts))
	commentEvents, foundComments := a.markupLikes(a.name(memberLikedComments))
	if foundPosts || foundComments {
		a.report.Results.Set(tables.KeyLikes, tables.Likes(likes.Aggregate(postEvents, commentEvents)))
	}
}

func (a *analysis) markupLikes(name string) ([]likes.Event, bool) {
	page, ok := a.member(name)
	if !ok {
		return nil, false
	}
	events, err := a.opts.Extractor.LikeEvents(page)
	if err != nil {
		a.recover("likes unavailable", name, err)
	}
	return events, true
}

func (a *analysis) summarizeConversations(conversations []messages.Conversation, info fields.PersonalInfo, markupExport bool) {
	if len(conversations) == 0 {
		return
	}
	self := selfName(conversations, info)
	includeGroups := a.opts.Groups.IncludeGroups(markupExport)
	a.reporter.Debug(fmt.Sprintf("summarizing %d conversations, groups included: %t", len(conversations), includeGroups), "")
	summaries := messages.Aggregate(conversations, messages.Options{Self: self, IncludeGroups: includeGroups})
	a.report.Results.Set(tables.KeyMessageSummary, tables.MessageSummary(summaries))
}

// selfName prefers the profile's own names when they appear among the participants, then
// the names left over by one-to-one conversation titles, and only then the most frequent
// participant.
func selfName(conversations []messages.Conversation, info fields.PersonalInfo) string {
	for _, candidate := range []string{info.DisplayName, info.Username} {
		if candidate == "" {
			continue
		}
		for _, conversation := range conversations {
			for _, participant := range conversation.Participants {
				if participant == candidate {
					return candidate
				}
			}
		}
	}
	if self := messages.SelfFromTitles(conversations); self != "" {
		return self
	}
	return messages.InferSelf(conversations)
}
