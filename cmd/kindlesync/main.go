// Command kindlesync reads the e-reader's local library database and keeps
// a Notion book database in step with it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "kindlesync",
		Short: "Sync a Kindle library into a Notion book database",
		Long: `kindlesync extracts titles from the Kindle app's BookData.sqlite,
enriches them with Google Books metadata and a model-chosen classification,
and registers the ones missing from a Notion database.

Configuration comes from the environment, .env and .env.local.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.AddGroup(
		&cobra.Group{ID: "library", Title: "Library:"},
		&cobra.Group{ID: "catalog", Title: "Catalog:"},
		&cobra.Group{ID: "server", Title: "Server:"},
	)
	root.AddCommand(
		newExtractCmd(a),
		newDecodeCmd(a),
		newSyncCmd(a),
		newRegisterCmd(a),
		newBackfillCmd(a),
		newSetASINCmd(a),
		newMissingASINCmd(a),
		newInspectCmd(a),
		newDebugCmd(a),
		newServeCmd(a),
	)
	return root
}
