package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/artwork-table/pkg/table"
	"github.com/Sternrassler/artwork-table/pkg/tui"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the artwork table in the terminal",
		Long: `Draws the artwork table in the terminal.

Logs never go to the terminal while it is drawn; set log.file (or LOG_FILE)
to keep them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogging(io.Discard)

			client, err := a.catalogClient()
			if err != nil {
				return fmt.Errorf("failed to create catalog client: %w", err)
			}

			view := table.New(client, a.tableConfig())
			return tui.Run(cmd.Context(), view)
		},
	}
}
