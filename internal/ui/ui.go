// Package ui renders command results as terminal tables.
package ui

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"kindlesync/internal/catalog"
	"kindlesync/internal/entity"
	"kindlesync/internal/ingest"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// maxCell bounds cell width so long titles do not wrap the terminal.
const maxCell = 60

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-1]) + "…"
}

// Tally prints the outcome counts of a run and the records it gave up on.
func Tally(w io.Writer, run *ingest.Run) {
	status := okStyle.Render(string(run.Status))
	if run.Status == ingest.StatusFailed || run.Tally.Failed > 0 {
		status = failStyle.Render(string(run.Status))
	}
	fmt.Fprintf(w, "%s %s %s\n", titleStyle.Render(string(run.Kind)), run.ID, status)

	t := newTable("seen", "created", "updated", "skipped", "failed").Row(
		strconv.Itoa(run.Tally.Seen),
		strconv.Itoa(run.Tally.Created),
		strconv.Itoa(run.Tally.Updated),
		strconv.Itoa(run.Tally.Skipped),
		strconv.Itoa(run.Tally.Failed),
	)
	fmt.Fprintln(w, t.Render())

	if len(run.Failures) > 0 {
		ft := newTable("title", "error")
		for _, f := range run.Failures {
			ft.Row(clip(f.Title), clip(f.Error))
		}
		fmt.Fprintln(w, ft.Render())
	}
	if run.Error != "" {
		fmt.Fprintln(w, failStyle.Render("error: "+run.Error))
	}
}

// Pages lists catalog pages.
func Pages(w io.Writer, pages []catalog.Page) {
	t := newTable("title", "author", "asin", "type")
	for _, p := range pages {
		t.Row(clip(p.Title), clip(p.Author), p.ASIN, p.Type)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d pages\n", len(pages))
}

// Books lists library records.
func Books(w io.Writer, books []entity.Book) {
	t := newTable("title", "author", "asin", "tag", "purchased")
	for _, b := range books {
		t.Row(clip(b.Title), clip(b.Author), b.ASIN, b.ContentTag, b.PurchaseDate)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d records\n", len(books))
}

// Schema lists the database properties with their options.
func Schema(w io.Writer, s catalog.Schema) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(s.Title), s.ID)
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable("property", "type", "options")
	for _, name := range names {
		p := s.Properties[name]
		t.Row(name, p.Type, clip(strings.Join(p.Options, ", ")))
	}
	fmt.Fprintln(w, t.Render())
}
