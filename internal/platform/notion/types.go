package notion

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Limits on rich text content.
const (
	MaxTextLength   = 2000
	MaxRichTextRuns = 100
)

// PaginatedResponse is the envelope of list endpoints.
type PaginatedResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// QueryResponse is the response from a database query.
type QueryResponse = PaginatedResponse[Page]

// Parent identifies the container of a page.
type Parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// DatabaseParent returns the parent reference for a row of database id.
func DatabaseParent(id string) Parent {
	return Parent{Type: "database_id", DatabaseID: id}
}

// Database represents a Notion database.
type Database struct {
	Object         string                `json:"object"`
	ID             string                `json:"id"`
	CreatedTime    time.Time             `json:"created_time"`
	LastEditedTime time.Time             `json:"last_edited_time"`
	Title          []RichText            `json:"title"`
	Description    []RichText            `json:"description"`
	Properties     map[string]DBProperty `json:"properties"`
	URL            string                `json:"url"`
	Archived       bool                  `json:"archived"`
}

// DBProperty is a database property schema.
type DBProperty struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Select      *SelectConfig `json:"select,omitempty"`
	MultiSelect *SelectConfig `json:"multi_select,omitempty"`
}

// Options returns the option names of a select or multi_select property.
func (p DBProperty) Options() []string {
	var cfg *SelectConfig
	switch p.Type {
	case "select":
		cfg = p.Select
	case "multi_select":
		cfg = p.MultiSelect
	}
	if cfg == nil {
		return nil
	}
	names := make([]string, 0, len(cfg.Options))
	for _, o := range cfg.Options {
		names = append(names, o.Name)
	}
	return names
}

// SelectConfig holds select/multi_select options.
type SelectConfig struct {
	Options []SelectOption `json:"options"`
}

// SelectOption is one option of a select property.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Page represents a Notion page (database row).
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Parent         Parent                   `json:"parent"`
	Archived       bool                     `json:"archived"`
	Properties     map[string]PropertyValue `json:"properties"`
	URL            string                   `json:"url"`
}

// PropertyValue is a page property value. Only the field matching Type is set.
type PropertyValue struct {
	ID          string        `json:"id,omitempty"`
	Type        string        `json:"type,omitempty"`
	Title       []RichText    `json:"title,omitempty"`
	RichText    []RichText    `json:"rich_text,omitempty"`
	Select      *SelectValue  `json:"select,omitempty"`
	MultiSelect []SelectValue `json:"multi_select,omitempty"`
	Date        *DateValue    `json:"date,omitempty"`
}

// SelectValue is a chosen select option.
type SelectValue struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// DateValue is a date property value.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// RichText is one run of formatted text.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the content of a text run.
type TextContent struct {
	Content string `json:"content"`
}

// Block is a page content block. Only paragraphs are written.
type Block struct {
	Object    string          `json:"object,omitempty"`
	Type      string          `json:"type"`
	Paragraph *ParagraphBlock `json:"paragraph,omitempty"`
}

// ParagraphBlock represents a paragraph block.
type ParagraphBlock struct {
	RichText []RichText `json:"rich_text"`
}

// Text splits s into text runs no longer than MaxTextLength characters,
// keeping at most MaxRichTextRuns runs.
func Text(s string) []RichText {
	if s == "" {
		return nil
	}
	var runs []RichText
	for s != "" && len(runs) < MaxRichTextRuns {
		chunk := s
		if utf8.RuneCountInString(s) > MaxTextLength {
			cut := 0
			for i := 0; i < MaxTextLength; i++ {
				_, size := utf8.DecodeRuneInString(s[cut:])
				cut += size
			}
			chunk = s[:cut]
		}
		runs = append(runs, RichText{Type: "text", Text: &TextContent{Content: chunk}})
		s = s[len(chunk):]
	}
	return runs
}

// PlainText concatenates the plain text of every run. Runs built locally
// carry only Text content, which is used instead.
func PlainText(runs []RichText) string {
	var b strings.Builder
	for _, r := range runs {
		switch {
		case r.PlainText != "":
			b.WriteString(r.PlainText)
		case r.Text != nil:
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

// Paragraph builds a paragraph block holding s.
func Paragraph(s string) Block {
	return Block{Object: "block", Type: "paragraph", Paragraph: &ParagraphBlock{RichText: Text(s)}}
}

// Filter is a single-property database filter.
type Filter struct {
	Property string      `json:"property"`
	Title    *TextFilter `json:"title,omitempty"`
	RichText *TextFilter `json:"rich_text,omitempty"`
}

// TextFilter matches text-like properties.
type TextFilter struct {
	Equals  string `json:"equals,omitempty"`
	IsEmpty bool   `json:"is_empty,omitempty"`
}

// TitleEquals matches pages whose title property equals title.
func TitleEquals(property, title string) *Filter {
	return &Filter{Property: property, Title: &TextFilter{Equals: title}}
}

// RichTextIsEmpty matches pages whose rich_text property is blank.
func RichTextIsEmpty(property string) *Filter {
	return &Filter{Property: property, RichText: &TextFilter{IsEmpty: true}}
}
