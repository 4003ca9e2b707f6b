package main

import (
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/config"
	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/table"
)

// app carries what every subcommand needs after the root has loaded config.
type app struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "artable",
		Short: "Browse the artwork catalog as a paginated, selectable table",
		Long: `artable shows the remote artwork catalog one page at a time.

Rows can be selected individually, a whole page at once, or the first N rows
of the page. Selections survive navigation. The table is served to browsers
(serve) or drawn in the terminal (browse).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.setupLogging(cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")

	cmd.AddCommand(
		newServeCmd(a),
		newBrowseCmd(a),
		newFetchCmd(a),
		newExportCmd(a),
	)

	return cmd
}

func (a *app) setupLogging(out io.Writer) {
	lc := a.cfg.Logging()
	lc.Output = out
	logging.Setup(lc)
}

func (a *app) catalogClient() (*catalog.Client, error) {
	return catalog.New(a.cfg.CatalogClient())
}

func (a *app) tableConfig() table.Config {
	return table.Config{
		PageSize:   a.cfg.Table.PageSize,
		MaxButtons: a.cfg.Table.MaxButtons,
	}
}
