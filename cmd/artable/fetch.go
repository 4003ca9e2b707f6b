package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/table"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		page   int
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print one page of the catalog",
		Example: `  # Third page, 12 rows
  artable fetch --page 3

  # Raw records
  artable fetch --page 1 --limit 5 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 || limit < 1 {
				return fmt.Errorf("%w: page=%d limit=%d", catalog.ErrInvalidPageRequest, page, limit)
			}

			client, err := a.catalogClient()
			if err != nil {
				return fmt.Errorf("failed to create catalog client: %w", err)
			}

			view, err := table.Restore(client, a.tableConfig(), &table.Snapshot{Page: page, Limit: limit})
			if err != nil {
				return err
			}
			if err := view.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("failed to fetch page %d: %w", page, err)
			}

			if asJSON {
				return writePageJSON(cmd.OutOrStdout(), view)
			}
			renderPage(cmd.OutOrStdout(), view.Model())
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number (1-based)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 12, "Rows per page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the records as JSON")

	return cmd
}

func writePageJSON(w io.Writer, view *table.View) error {
	vm := view.Model()
	out := catalog.Page{
		Items: view.Rows(),
		Pagination: catalog.Pagination{
			Total:       vm.Total,
			Limit:       vm.Limit,
			CurrentPage: vm.Page,
		},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderPage(w io.Writer, vm table.Model) {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(append([]string{"ID"}, vm.Columns...)...)

	for _, r := range vm.Rows {
		t.Row(append([]string{fmt.Sprint(r.ID)}, r.Cells...)...)
	}

	if vm.Empty() {
		fmt.Fprintln(w, "No data available")
	} else {
		fmt.Fprintln(w, t.Render())
	}
	fmt.Fprintf(w, "Showing %d to %d from %d entries. Page %d of %d.\n", vm.From, vm.To, vm.Total, vm.Page, vm.TotalPages)
}
