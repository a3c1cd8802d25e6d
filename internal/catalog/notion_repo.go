package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"kindlesync/internal/entity"
	"kindlesync/internal/platform/notion"
)

// maxChildren is the block limit of a single page-create request.
const maxChildren = 100

type NotionRepo struct {
	client     *notion.Client
	databaseID string
	props      PropertyNames

	mu     sync.Mutex
	schema *Schema
}

func NewNotionRepo(client *notion.Client, databaseID string, props PropertyNames) *NotionRepo {
	return &NotionRepo{client: client, databaseID: databaseID, props: props}
}

func (r *NotionRepo) Properties() PropertyNames { return r.props }

func (r *NotionRepo) QueryPages(ctx context.Context, q PageQuery) (PageBatch, error) {
	opts := &notion.QueryOptions{StartCursor: q.Cursor, PageSize: notion.PageSize}
	switch {
	case q.TitleEquals != "":
		opts.Filter = notion.TitleEquals(r.props.Title, q.TitleEquals)
	case q.MissingASIN:
		opts.Filter = notion.RichTextIsEmpty(r.props.ASIN)
	}

	resp, err := r.client.QueryDatabase(ctx, r.databaseID, opts)
	if err != nil {
		return PageBatch{}, fmt.Errorf("query catalog: %w", err)
	}

	batch := PageBatch{HasMore: resp.HasMore, Pages: make([]Page, 0, len(resp.Results))}
	if resp.NextCursor != nil {
		batch.NextCursor = *resp.NextCursor
	}
	for _, p := range resp.Results {
		batch.Pages = append(batch.Pages, r.toPage(p))
	}
	return batch, nil
}

func (r *NotionRepo) toPage(p notion.Page) Page {
	prop := func(name string) notion.PropertyValue { return p.Properties[name] }
	page := Page{
		ID:        p.ID,
		Title:     notion.PlainText(prop(r.props.Title).Title),
		Author:    notion.PlainText(prop(r.props.Author).RichText),
		Publisher: notion.PlainText(prop(r.props.Publisher).RichText),
		ASIN:      strings.TrimSpace(notion.PlainText(prop(r.props.ASIN).RichText)),
	}
	if d := prop(r.props.PurchaseDate).Date; d != nil {
		page.PurchaseDate = d.Start
	}
	if d := prop(r.props.PublicationDate).Date; d != nil {
		page.PublicationDate = d.Start
	}
	for _, t := range prop(r.props.Tags).MultiSelect {
		page.Tags = append(page.Tags, t.Name)
	}
	if s := prop(r.props.Type).Select; s != nil {
		page.Type = s.Name
	}
	return page
}

// Schema reads the database schema once and serves it from memory afterwards.
func (r *NotionRepo) Schema(ctx context.Context) (Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schema != nil {
		return *r.schema, nil
	}

	db, err := r.client.GetDatabase(ctx, r.databaseID)
	if err != nil {
		return Schema{}, fmt.Errorf("read catalog schema: %w", err)
	}
	s := Schema{
		ID:         db.ID,
		Title:      notion.PlainText(db.Title),
		Properties: make(map[string]Property, len(db.Properties)),
	}
	for name, p := range db.Properties {
		s.Properties[name] = Property{Name: name, Type: p.Type, Options: p.Options()}
	}
	r.schema = &s
	return s, nil
}

// CreatePage writes a new page. Optional properties the database does not
// define, and empty values, are left out of the request.
func (r *NotionRepo) CreatePage(ctx context.Context, p NewPage) (string, error) {
	schema, err := r.Schema(ctx)
	if err != nil {
		return "", err
	}

	props := map[string]notion.PropertyValue{
		r.props.Title: {Title: notion.Text(p.Book.Title)},
	}
	optional := func(name string, v notion.PropertyValue) {
		if name != "" && schema.Has(name) {
			props[name] = v
		}
	}
	if p.Book.Author != "" {
		optional(r.props.Author, notion.PropertyValue{RichText: notion.Text(p.Book.Author)})
	}
	if p.Book.Publisher != "" {
		optional(r.props.Publisher, notion.PropertyValue{RichText: notion.Text(p.Book.Publisher)})
	}
	if p.Book.ASIN != "" {
		optional(r.props.ASIN, notion.PropertyValue{RichText: notion.Text(p.Book.ASIN)})
	}
	if d, ok := notionDate(p.Book.PurchaseDate); ok {
		optional(r.props.PurchaseDate, notion.PropertyValue{Date: &notion.DateValue{Start: d}})
	}
	if d, ok := notionDate(p.Book.PublicationDate); ok {
		optional(r.props.PublicationDate, notion.PropertyValue{Date: &notion.DateValue{Start: d}})
	}
	if len(p.Tags) > 0 {
		tags := make([]notion.SelectValue, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = notion.SelectValue{Name: t}
		}
		optional(r.props.Tags, notion.PropertyValue{MultiSelect: tags})
	}
	if p.Type != "" {
		optional(r.props.Type, notion.PropertyValue{Select: &notion.SelectValue{Name: p.Type}})
	}

	page, err := r.client.CreatePage(ctx, &notion.CreatePageRequest{
		Parent:     notion.DatabaseParent(r.databaseID),
		Properties: props,
		Children:   paragraphs(p.Description),
	})
	if err != nil {
		return "", fmt.Errorf("create page %q: %w", p.Book.Title, err)
	}
	return page.ID, nil
}

func (r *NotionRepo) UpdateASIN(ctx context.Context, pageID, asin string) error {
	_, err := r.client.UpdatePage(ctx, pageID, &notion.UpdatePageRequest{
		Properties: map[string]notion.PropertyValue{
			r.props.ASIN: {RichText: notion.Text(asin)},
		},
	})
	if err != nil {
		return fmt.Errorf("update ASIN of %s: %w", pageID, err)
	}
	return nil
}

// notionDate renders a record date for a date property: a bare date when the
// value has no time of day, RFC 3339 otherwise.
func notionDate(s string) (string, bool) {
	t, ok := entity.ParseDate(s)
	if !ok {
		return "", false
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02"), true
	}
	return t.Format(time.RFC3339), true
}

func paragraphs(description string) []notion.Block {
	var blocks []notion.Block
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(blocks) == maxChildren {
			break
		}
		blocks = append(blocks, notion.Paragraph(line))
	}
	return blocks
}
