package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kindlesync/internal/catalog"
	"kindlesync/internal/config"
	"kindlesync/internal/ui"
)

func newBackfillCmd(a *app) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:     "backfill",
		GroupID: "catalog",
		Short:   "Fill blank catalog ASINs from an exported CSV",
		Long: `Read the CSV written by extract and set the ASIN of every catalog page
whose ASIN is blank and whose title appears in the export. Pages that
already have an ASIN are never modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvPath == "" {
				csvPath = a.cfg.CSVPath
			}
			mapping, err := readTitleToASIN(csvPath)
			if err != nil {
				return err
			}
			svc, closeSvc, err := a.backfillService(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeSvc()

			run, err := svc.BackfillIdentifiers(cmd.Context(), mapping)
			if run != nil {
				ui.Tally(cmd.OutOrStdout(), run)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "exported CSV path (default CSV_PATH)")
	return cmd
}

type setASINInput struct {
	Title string `flag:"title" validate:"required"`
	ASIN  string `flag:"asin" validate:"required,asin"`
}

func newSetASINCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "set-asin TITLE ASIN",
		GroupID: "catalog",
		Short:   "Set the ASIN of the page with an exact title",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := setASINInput{Title: strings.TrimSpace(args[0]), ASIN: strings.TrimSpace(args[1])}
			if err := config.Struct(in); err != nil {
				return err
			}
			svc, closeSvc, err := a.backfillService(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeSvc()

			page, err := svc.SetASIN(cmd.Context(), in.Title, in.ASIN, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ASIN set to %s\n", page.Title, page.ASIN)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an ASIN that is already set")
	return cmd
}

func newMissingASINCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "missing-asin",
		GroupID: "catalog",
		Short:   "List catalog pages whose ASIN is blank",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, index, err := a.catalog()
			if err != nil {
				return err
			}
			pages, err := index.PagesMissingASIN(cmd.Context())
			if err != nil {
				return err
			}
			if format == "table" {
				ui.Pages(cmd.OutOrStdout(), pages)
				return nil
			}
			return writeStructured(cmd, format, pages)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	return cmd
}

type inspection struct {
	Schema catalog.Schema `json:"schema" yaml:"schema"`
	Pages  []catalog.Page `json:"pages,omitempty" yaml:"pages,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		format    string
		withPages bool
	)
	cmd := &cobra.Command{
		Use:     "inspect",
		GroupID: "catalog",
		Short:   "Dump the catalog schema and, optionally, its pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, index, err := a.catalog()
			if err != nil {
				return err
			}
			var out inspection
			if out.Schema, err = index.Schema(cmd.Context()); err != nil {
				return err
			}
			if withPages {
				if out.Pages, err = index.Pages(cmd.Context()); err != nil {
					return err
				}
			}
			if format == "table" {
				ui.Schema(cmd.OutOrStdout(), out.Schema)
				if withPages {
					ui.Pages(cmd.OutOrStdout(), out.Pages)
				}
				return nil
			}
			return writeStructured(cmd, format, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: table, json or yaml")
	cmd.Flags().BoolVar(&withPages, "pages", false, "include every page")
	return cmd
}

func newDebugCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "debug",
		GroupID: "catalog",
		Short:   "Check the catalog connection and print every page title",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, index, err := a.catalog()
			if err != nil {
				return err
			}
			schema, err := index.Schema(cmd.Context())
			if err != nil {
				return fmt.Errorf("read database: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "database: %s (%s)\n", schema.Title, a.cfg.Notion.DatabaseID)

			n := 0
			err = index.EachPage(cmd.Context(), catalog.PageQuery{}, func(p catalog.Page) error {
				n++
				fmt.Fprintf(w, "%4d  %s\n", n, p.Title)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d pages\n", n)
			return nil
		},
	}
}
