// Package catalog is the remote book catalog: the Notion database that
// synchronized records end up in.
package catalog

import (
	"errors"

	"kindlesync/internal/entity"
)

var (
	ErrNotFound = errors.New("catalog: page not found")
	// ErrASINPresent is returned when an update would overwrite a non-blank ASIN.
	ErrASINPresent = errors.New("catalog: page already has an ASIN")
)

// Page is one catalog entry as read back from the remote database.
type Page struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Author          string   `json:"author,omitempty" yaml:"author,omitempty"`
	Publisher       string   `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	ASIN            string   `json:"asin,omitempty" yaml:"asin,omitempty"`
	PurchaseDate    string   `json:"purchase_date,omitempty" yaml:"purchase_date,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	Tags            []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Type            string   `json:"type,omitempty" yaml:"type,omitempty"`
}

// NewPage is everything written when a record is first registered.
type NewPage struct {
	Book        entity.Book
	Tags        []string
	Type        string
	Description string
}

// Property is one column of the remote database.
type Property struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type" yaml:"type"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Schema describes the remote database.
type Schema struct {
	ID         string              `json:"id" yaml:"id"`
	Title      string              `json:"title" yaml:"title"`
	Properties map[string]Property `json:"properties" yaml:"properties"`
}

// Has reports whether the database defines a property called name.
func (s Schema) Has(name string) bool {
	_, ok := s.Properties[name]
	return ok
}

// Options returns the allowed values of a select-like property.
func (s Schema) Options(name string) []string {
	return s.Properties[name].Options
}

// PropertyNames maps record fields to database property names.
type PropertyNames struct {
	Title           string
	Author          string
	Publisher       string
	ASIN            string
	PurchaseDate    string
	PublicationDate string
	Tags            string
	Type            string
}

// DefaultPropertyNames are the column names of the reading-log template the
// tool was first used with.
func DefaultPropertyNames() PropertyNames {
	return PropertyNames{
		Title:           "タイトル",
		Author:          "著者",
		Publisher:       "出版社",
		ASIN:            "ASIN",
		PurchaseDate:    "購入日",
		PublicationDate: "出版日",
		Tags:            "タグ",
		Type:            "種別",
	}
}
