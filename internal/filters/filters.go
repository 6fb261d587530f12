package filters

import (
	"fmt"
	"sort"
	"strings"

	"ddp_extract/internal/tables"
)

// NormalizeTableName canonicalizes result set names, accepting the names used by earlier
// releases of the donation script.
func NormalizeTableName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	switch n {
	case "pinfo", "personal", "your_info", "your_personal_info", "profile":
		return tables.KeyPersonalInfo
	case "messages", "your_messages", "messages_summary", "dm", "dms", "inbox":
		return tables.KeyMessageSummary
	case "like", "liked", "liked_posts", "liked_comments":
		return tables.KeyLikes
	case "your_topics", "topic":
		return tables.KeyTopics
	case "ads_interests", "interest":
		return tables.KeyInterests
	default:
		return n
	}
}

var knownTables = map[string]struct{}{
	tables.KeyPersonalInfo:   {},
	tables.KeyMessageSummary: {},
	tables.KeyLikes:          {},
	tables.KeyTopics:         {},
	tables.KeyInterests:      {},
}

// UnknownTables returns the requested names that do not normalize to a known result set.
func UnknownTables(desired []string) []string {
	var unknown []string
	for _, value := range desired {
		if _, ok := knownTables[NormalizeTableName(value)]; !ok {
			unknown = append(unknown, value)
		}
	}
	return unknown
}

// HasAnyDesired returns true if any desired key is present in the found set.
func HasAnyDesired(found map[string]struct{}, desired []string, normalizer func(string) string) bool {
	if len(desired) == 0 {
		return true
	}
	for _, value := range desired {
		key := normalizer(value)
		if _, ok := found[key]; ok {
			return true
		}
	}
	return false
}

func HasAllDesired(found map[string]struct{}, desired []string, normalizer func(string) string) bool {
	if len(desired) == 0 {
		return true
	}
	for _, value := range desired {
		if _, ok := found[normalizer(value)]; !ok {
			return false
		}
	}
	return true
}

// TableSelector accepts a result set key when no tables were requested or when the key is
// among the requested ones. The empty result set is always kept.
func TableSelector(desired []string) func(key string) bool {
	return func(key string) bool {
		if key == tables.KeyEmpty {
			return true
		}
		return HasAnyDesired(map[string]struct{}{key: {}}, desired, NormalizeTableName)
	}
}

// BuildNoDataError creates a precise error when no archive produced any table rows.
func BuildNoDataError(outcomes map[string]tables.Outcome, desiredTables []string) error {
	files := make([]string, 0, len(outcomes))
	for file := range outcomes {
		files = append(files, file)
	}
	sort.Strings(files)

	parts := make([]string, 0, len(files))
	for _, file := range files {
		parts = append(parts, fmt.Sprintf("%s: %s", file, outcomes[file]))
	}
	detail := strings.Join(parts, ", ")
	if len(desiredTables) > 0 {
		return fmt.Errorf("no data extracted for table(s) %q [%s]", strings.Join(desiredTables, ","), detail)
	}
	return fmt.Errorf("no data extracted [%s]", detail)
}
