package testutil

import (
	"howett.net/plist"
)

// Archive builds NSKeyedArchiver object tables for tests. Index 0 is always
// the "$null" sentinel, as in archives written by Foundation.
type Archive struct {
	objects []any
	classes map[string]plist.UID
}

// NewArchive returns an empty archive builder
func NewArchive() *Archive {
	return &Archive{
		objects: []any{"$null"},
		classes: make(map[string]plist.UID),
	}
}

// Add appends a raw object and returns its reference
func (a *Archive) Add(v any) plist.UID {
	a.objects = append(a.objects, v)
	return plist.UID(len(a.objects) - 1)
}

// Null returns the reference of the "$null" sentinel
func (a *Archive) Null() plist.UID { return 0 }

// Class returns the reference of a class descriptor, adding it once per name
func (a *Archive) Class(name string) plist.UID {
	if uid, ok := a.classes[name]; ok {
		return uid
	}
	uid := a.Add(map[string]any{
		"$classname": name,
		"$classes":   []any{name, "NSObject"},
	})
	a.classes[name] = uid
	return uid
}

// Array adds an NSArray holding the given references
func (a *Archive) Array(items ...plist.UID) plist.UID {
	return a.Add(map[string]any{
		"$class":     a.Class("NSArray"),
		"NS.objects": uids(items),
	})
}

// Dict adds an NSMutableDictionary zipping keys to values
func (a *Archive) Dict(keys, values []plist.UID) plist.UID {
	return a.Add(map[string]any{
		"$class":     a.Class("NSMutableDictionary"),
		"NS.keys":    uids(keys),
		"NS.objects": uids(values),
	})
}

// StringDict adds an NSMutableDictionary from string keys to references
func (a *Archive) StringDict(entries map[string]plist.UID, order ...string) plist.UID {
	keys := make([]plist.UID, 0, len(order))
	values := make([]plist.UID, 0, len(order))
	for _, k := range order {
		v, ok := entries[k]
		if !ok {
			continue
		}
		keys = append(keys, a.Add(k))
		values = append(values, v)
	}
	return a.Dict(keys, values)
}

// Objects returns the object table built so far
func (a *Archive) Objects() []any { return a.objects }

// Bytes encodes the archive as a binary plist rooted at root
func (a *Archive) Bytes(root plist.UID) ([]byte, error) {
	envelope := map[string]any{
		"$version":  100000,
		"$archiver": "NSKeyedArchiver",
		"$top":      map[string]any{"root": root},
		"$objects":  a.objects,
	}
	return plist.Marshal(envelope, plist.BinaryFormat)
}

func uids(in []plist.UID) []any {
	out := make([]any, len(in))
	for i, u := range in {
		out[i] = u
	}
	return out
}

// KindleAttrs are the sync metadata attributes stored per library row
type KindleAttrs struct {
	Title           string
	Authors         []string
	Publisher       string
	ASIN            string
	ContentTag      string
	PurchaseDate    string
	PublicationDate string
}

// KindleMetadata encodes attrs the way the e-reader stores
// ZSYNCMETADATAATTRIBUTES: a dictionary whose "attributes" entry holds the
// book fields, with authors, publishers and content tags nested one level.
func KindleMetadata(attrs KindleAttrs) ([]byte, error) {
	a := NewArchive()
	fields := make(map[string]plist.UID)
	order := []string{"title", "authors", "publishers", "ASIN", "content_tags", "purchase_date", "publication_date"}

	if attrs.Title != "" {
		fields["title"] = a.Add(attrs.Title)
	}
	if len(attrs.Authors) > 0 {
		names := make([]plist.UID, len(attrs.Authors))
		for i, n := range attrs.Authors {
			names[i] = a.Add(n)
		}
		fields["authors"] = a.StringDict(map[string]plist.UID{"author": a.Array(names...)}, "author")
	}
	if attrs.Publisher != "" {
		fields["publishers"] = a.StringDict(map[string]plist.UID{"publisher": a.Add(attrs.Publisher)}, "publisher")
	}
	if attrs.ASIN != "" {
		fields["ASIN"] = a.Add(attrs.ASIN)
	}
	if attrs.ContentTag != "" {
		fields["content_tags"] = a.StringDict(map[string]plist.UID{"tag": a.Add(attrs.ContentTag)}, "tag")
	}
	if attrs.PurchaseDate != "" {
		fields["purchase_date"] = a.Add(attrs.PurchaseDate)
	}
	if attrs.PublicationDate != "" {
		fields["publication_date"] = a.Add(attrs.PublicationDate)
	}

	inner := a.StringDict(fields, order...)
	root := a.StringDict(map[string]plist.UID{"attributes": inner}, "attributes")
	return a.Bytes(root)
}
