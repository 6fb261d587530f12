// Package tables shapes extraction results into the titled tables handed to the consent flow.
package tables

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Result set keys.
const (
	KeyPersonalInfo   = "personal_info"
	KeyMessageSummary = "message_summary"
	KeyLikes          = "likes"
	KeyTopics         = "topics"
	KeyInterests      = "interests"
	KeyEmpty          = "empty"
)

// Translatable is display text per locale.
type Translatable map[string]string

// Table is an ordered list of named columns and rows of cells.
type Table struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

func NewTable(columns ...string) Table {
	return Table{Columns: columns, Rows: [][]any{}}
}

// Append adds one row; it panics when the cell count does not match the columns.
func (t *Table) Append(cells ...any) {
	if len(cells) != len(t.Columns) {
		panic(fmt.Sprintf("tables: row has %d cells, table has %d columns", len(cells), len(t.Columns)))
	}
	t.Rows = append(t.Rows, cells)
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// ResultSet is one table with its display title. Adjustable tables may be edited by the
// participant before donation.
type ResultSet struct {
	Title      Translatable `json:"title" yaml:"title"`
	Adjustable bool         `json:"adjustable" yaml:"adjustable"`
	Table      Table        `json:"table" yaml:"table"`
}

// Results keeps result sets in insertion order.
type Results struct {
	keys []string
	sets map[string]ResultSet
}

func NewResults() *Results {
	return &Results{sets: make(map[string]ResultSet)}
}

// Set stores a result set, replacing an existing one under the same key in place.
func (r *Results) Set(key string, set ResultSet) {
	if _, exists := r.sets[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.sets[key] = set
}

func (r *Results) Get(key string) (ResultSet, bool) {
	set, ok := r.sets[key]
	return set, ok
}

func (r *Results) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Results) Len() int {
	return len(r.keys)
}

// HasData reports whether any result set has at least one row.
func (r *Results) HasData() bool {
	for _, key := range r.keys {
		if !r.sets[key].Table.Empty() {
			return true
		}
	}
	return false
}

// Retain drops every result set whose key is not accepted.
func (r *Results) Retain(accept func(key string) bool) {
	kept := r.keys[:0]
	for _, key := range r.keys {
		if accept(key) {
			kept = append(kept, key)
			continue
		}
		delete(r.sets, key)
	}
	r.keys = kept
}

func (r *Results) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, key := range r.keys {
		if index > 0 {
			buffer.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		setJSON, err := json.Marshal(r.sets[key])
		if err != nil {
			return nil, fmt.Errorf("marshal result set %q: %w", key, err)
		}
		buffer.Write(keyJSON)
		buffer.WriteByte(':')
		buffer.Write(setJSON)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func (r *Results) MarshalYAML() (any, error) {
	if r == nil {
		return nil, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range r.keys {
		var value yaml.Node
		if err := value.Encode(r.sets[key]); err != nil {
			return nil, fmt.Errorf("marshal result set %q: %w", key, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &value)
	}
	return node, nil
}

// Titles shown above each table.
var Titles = map[string]Translatable{
	KeyPersonalInfo: {
		"en": "Your personal info:",
		"nl": "Jouw persoonlijke gegevens:",
	},
	KeyMessageSummary: {
		"en": "Your messages summary:",
		"nl": "Samenvatting van je berichten:",
	},
	KeyLikes: {
		"en": "Accounts whose posts and comments you liked:",
		"nl": "Accounts waarvan je berichten en reacties leuk vond:",
	},
	KeyTopics: {
		"en": "Topics in which you are interested in according to Instagram:",
		"nl": "Onderwerpen waar jij volgens Instagram geintereseerd in bent:",
	},
	KeyInterests: {
		"en": "Your interests according to Instagram:",
		"nl": "Jouw interesses volgens Instagram:",
	},
	KeyEmpty: {
		"en": "We could not extract any data:",
		"nl": "We konden de gegevens niet in je donatie vinden:",
	},
}

// EmptyResultSet is what a recognized archive without extractable data reports.
func EmptyResultSet() *Results {
	table := NewTable("No data found")
	table.Append("No data found")
	results := NewResults()
	results.Set(KeyEmpty, ResultSet{Title: Titles[KeyEmpty], Table: table})
	return results
}
