package catalog

import (
	"kindlesync/internal/entity"
)

// Duplicate reasons.
const (
	ReasonASIN  = "asin"
	ReasonTitle = "title"
)

// Snapshot is the in-memory view of the catalog for one run: the identifiers
// and titles already present plus the classification vocabularies. It only
// grows, with the run's own creations.
type Snapshot struct {
	identifiers map[string]struct{}
	titles      map[string]struct{}

	Tags  []string
	Types []string
}

func NewSnapshot(identifiers, titles []string) *Snapshot {
	s := &Snapshot{
		identifiers: make(map[string]struct{}, len(identifiers)),
		titles:      make(map[string]struct{}, len(titles)),
	}
	for _, id := range identifiers {
		if id != "" {
			s.identifiers[id] = struct{}{}
		}
	}
	for _, t := range titles {
		if t != "" {
			s.titles[t] = struct{}{}
		}
	}
	return s
}

func (s *Snapshot) addPage(p Page) {
	if p.ASIN != "" {
		s.identifiers[p.ASIN] = struct{}{}
	}
	if p.Title != "" {
		s.titles[p.Title] = struct{}{}
	}
}

func (s *Snapshot) HasASIN(asin string) bool {
	_, ok := s.identifiers[asin]
	return asin != "" && ok
}

func (s *Snapshot) HasTitle(title string) bool {
	_, ok := s.titles[title]
	return title != "" && ok
}

// Add records a freshly created page.
func (s *Snapshot) Add(b entity.Book) {
	s.addPage(Page{Title: b.Title, ASIN: b.ASIN})
}

// Duplicate reports whether b is already in the catalog. A record with an
// ASIN matches on it; a record without one, or any record when byTitle is
// set, also matches on title.
func (s *Snapshot) Duplicate(b entity.Book, byTitle bool) (reason string, dup bool) {
	if b.ASIN != "" && s.HasASIN(b.ASIN) {
		return ReasonASIN, true
	}
	if (b.ASIN == "" || byTitle) && s.HasTitle(b.Title) {
		return ReasonTitle, true
	}
	return "", false
}

// Vocabulary reports whether both classification vocabularies are non-empty.
func (s *Snapshot) Vocabulary() bool {
	return len(s.Tags) > 0 && len(s.Types) > 0
}

func (s *Snapshot) Identifiers() int { return len(s.identifiers) }
func (s *Snapshot) Titles() int      { return len(s.titles) }
