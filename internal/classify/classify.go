// Package classify recognizes which export category an archive belongs to.
package classify

import (
	"path"

	"ddp_extract/internal/archive"
	"ddp_extract/internal/catalog"
)

type Status string

const (
	StatusValid     Status = "valid"
	StatusMalformed Status = "malformed"
)

// Result reports container health and the inferred category. Category is nil both for
// malformed archives and for valid archives that match no catalog entry.
type Result struct {
	Status   Status
	Category *catalog.Entry
	// Overlap lists the recognized member base names, in catalog order.
	Overlap []string
}

func (r Result) Recognized() bool {
	return r.Status == StatusValid && r.Category != nil
}

// CategoryID returns the category id or "unknown".
func (r Result) CategoryID() string {
	if r.Category == nil {
		return "unknown"
	}
	return r.Category.ID
}

// Classify matches member names against the catalog. Extensions and names compare
// case-sensitively. A single shared file name is enough:
// partial exports are normal, so entries are tried in declaration order and the first one
// with any overlap wins regardless of overlap size.
func Classify(cat *catalog.Catalog, memberNames []string) Result {
	candidates := make(map[string]struct{}, len(memberNames))
	for _, memberName := range memberNames {
		base := archive.BaseName(memberName)
		switch path.Ext(base) {
		case ".json", ".html":
			candidates[base] = struct{}{}
		}
	}

	for index := range cat.Entries {
		entry := &cat.Entries[index]
		var overlap []string
		for _, knownFile := range entry.KnownFiles {
			if _, ok := candidates[knownFile]; ok {
				overlap = append(overlap, knownFile)
			}
		}
		if len(overlap) > 0 {
			return Result{Status: StatusValid, Category: entry, Overlap: overlap}
		}
	}
	return Result{Status: StatusValid}
}

// Archive opens data and classifies its members. The archive is nil when the container
// is malformed.
func Archive(cat *catalog.Catalog, data []byte) (Result, *archive.Archive, error) {
	zipArchive, openErr := archive.Open(data)
	if openErr != nil {
		return Result{Status: StatusMalformed}, nil, openErr
	}
	return Classify(cat, zipArchive.Members()), zipArchive, nil
}
