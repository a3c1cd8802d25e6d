package main

import (
	"github.com/spf13/cobra"

	"kindlesync/internal/entity"
	"kindlesync/internal/ingest"
	"kindlesync/internal/ui"
)

func newSyncCmd(a *app) *cobra.Command {
	var opts ingest.SyncOptions
	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "catalog",
		Short:   "Register library titles missing from the catalog",
		Long: `Extract and filter the local library, then create a catalog page for
every record whose ASIN (or, without one, title) is not in the database yet.
Each new page is enriched with Google Books metadata and classified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			books, err := a.records(ctx)
			if err != nil {
				return err
			}
			svc, closeSvc, err := a.service(ctx, nil)
			if err != nil {
				return err
			}
			defer closeSvc()

			run, err := svc.Sync(ctx, books, opts)
			if run != nil {
				ui.Tally(cmd.OutOrStdout(), run)
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "process only the first N records")
	cmd.Flags().BoolVar(&opts.DedupTitle, "dedup-title", false, "also skip records whose title is already present")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var book entity.Book
	cmd := &cobra.Command{
		Use:     "register TITLE",
		GroupID: "catalog",
		Short:   "Register a single title unless a page with that title exists",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book.Title = args[0]
			ctx := cmd.Context()
			svc, closeSvc, err := a.service(ctx, nil)
			if err != nil {
				return err
			}
			defer closeSvc()

			run, err := svc.Register(ctx, book)
			if run != nil {
				ui.Tally(cmd.OutOrStdout(), run)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&book.Author, "author", "", "author")
	f.StringVar(&book.Publisher, "publisher", "", "publisher")
	f.StringVar(&book.ASIN, "asin", "", "ASIN")
	f.StringVar(&book.PurchaseDate, "purchase-date", "", "purchase date (YYYY-MM-DD)")
	f.StringVar(&book.PublicationDate, "publication-date", "", "publication date (YYYY-MM-DD)")
	f.StringVar(&book.ContentTag, "content-tag", "", "content tag")
	return cmd
}
