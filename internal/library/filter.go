package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"kindlesync/internal/entity"
)

type FilterOptions struct {
	// ExcludeTags drops records whose content tag contains any entry.
	ExcludeTags []string
	// Since keeps only records purchased at or after this instant.
	Since *time.Time
}

// Filter applies opts and preserves input order. While a cutoff is active,
// records with a missing or unparseable purchase date are dropped.
func Filter(records []entity.Book, opts FilterOptions) []entity.Book {
	out := make([]entity.Book, 0, len(records))
	for _, b := range records {
		if excluded(b.ContentTag, opts.ExcludeTags) {
			continue
		}
		if opts.Since != nil {
			purchased, ok := entity.ParseDate(b.PurchaseDate)
			if !ok || purchased.Before(*opts.Since) {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

func excluded(tag string, tags []string) bool {
	for _, t := range tags {
		if t != "" && strings.Contains(tag, t) {
			return true
		}
	}
	return false
}

// ParseSince reads a purchase-date cutoff. Absolute dates are tried first,
// then English relative phrases such as "yesterday" or "3 weeks ago",
// resolved against base.
func ParseSince(s string, base time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty purchase date cutoff")
	}
	if t, ok := entity.ParseDate(s); ok {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(s, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse purchase date cutoff %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("parse purchase date cutoff %q: not a date", s)
	}
	if end := r.Index + len(r.Text); r.Index < 0 || end > len(s) || strings.TrimSpace(s[:r.Index]+s[end:]) != "" {
		return time.Time{}, fmt.Errorf("parse purchase date cutoff %q: only %q is a date", s, r.Text)
	}
	return r.Time.UTC(), nil
}
