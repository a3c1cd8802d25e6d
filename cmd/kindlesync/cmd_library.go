package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kindlesync/internal/library"
	"kindlesync/internal/platform/nskeyed"
	"kindlesync/internal/ui"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		out  string
		show bool
	)
	cmd := &cobra.Command{
		Use:     "extract",
		GroupID: "library",
		Short:   "Extract and filter the local library into a CSV file",
		Long: `Read every row of the local library, decode its sync metadata, drop
records excluded by EXCLUDE_CONTENT_TAGS or older than PURCHASE_DATE_SINCE,
and write the rest as CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.records(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				out = a.cfg.CSVPath
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := library.WriteCSV(f, books); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			if show {
				ui.Books(cmd.OutOrStdout(), books)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(books), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "CSV output path (default CSV_PATH)")
	cmd.Flags().BoolVar(&show, "print", false, "also print the records as a table")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var (
		title  string
		row    int
		format string
	)
	cmd := &cobra.Command{
		Use:     "decode",
		GroupID: "library",
		Short:   "Dump the decoded sync metadata of library rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := library.OpenSQLite(a.cfg.KindleDBPath)
			if err != nil {
				return err
			}
			defer src.Close()
			rows, err := src.Rows(cmd.Context())
			if err != nil {
				return err
			}

			dump := []map[string]any{}
			for i, r := range rows {
				if row >= 0 && i != row {
					continue
				}
				if title != "" && !strings.Contains(r.DisplayTitle, title) {
					continue
				}
				entry := map[string]any{"row": i, "display_title": r.DisplayTitle}
				if !r.HasMetadata {
					entry["error"] = "no metadata column"
				} else if v, err := nskeyed.Decode(r.Metadata); err != nil {
					entry["error"] = err.Error()
				} else {
					entry["metadata"] = v.Interface()
				}
				dump = append(dump, entry)
			}
			return writeStructured(cmd, format, dump)
		},
	}
	cmd.Flags().IntVar(&row, "row", -1, "only the row at this index")
	cmd.Flags().StringVarP(&title, "title", "t", "", "only rows whose title contains this text")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func writeStructured(cmd *cobra.Command, format string, v any) error {
	w := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
