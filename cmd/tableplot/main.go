package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tableplot/adapters/excel"
	"tableplot/adapters/profiler"
	"tableplot/adapters/sqldb"
	"tableplot/domain/plot"
	"tableplot/internal/config"
	"tableplot/ports"
	"tableplot/ui"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "tableplot",
		Short: "Build plot specs from CSV, Excel, and SQL tabular data",
	}

	rootCmd.AddCommand(
		newPlotCmd(),
		newDescribeCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPlotCmd() *cobra.Command {
	var x, y, color, geomName, statName, query string

	cmd := &cobra.Command{
		Use:   "plot [file]",
		Short: "Build a plot spec from a tabular input and print it as JSON",
		Long: `Build a plot spec from a CSV or Excel file, or from a SQL query when
--query and DATABASE_URL are set. With no file argument, DATA_FILE is used.

Example: tableplot plot sales.csv --x month --y revenue --geom line`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := resolveInput(args, query)
			if err != nil {
				return err
			}

			geom, err := plot.ParseGeom(geomName)
			if err != nil {
				return err
			}

			p, err := plot.New(data, plot.Aes{X: x, Y: y, Color: color})
			if err != nil {
				return err
			}

			var opts []plot.LayerOption
			if statName != "" {
				kind, err := plot.ParseStat(statName)
				if err != nil {
					return err
				}
				opts = append(opts, plot.WithStat(kind))
			}
			if err := p.AddLayer(geom, opts...); err != nil {
				return err
			}

			spec, err := p.Build(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(spec)
		},
	}

	cmd.Flags().StringVar(&x, "x", "", "column mapped to the x aesthetic")
	cmd.Flags().StringVar(&y, "y", "", "column mapped to the y aesthetic")
	cmd.Flags().StringVar(&color, "color", "", "column mapped to the color aesthetic")
	cmd.Flags().StringVar(&geomName, "geom", "point", "geometry: point, line, bar, histogram")
	cmd.Flags().StringVar(&statName, "stat", "", "stat override: identity, bin, summary")
	cmd.Flags().StringVar(&query, "query", "", "SQL query to plot instead of a file")

	return cmd
}

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe FILE...",
		Short: "Profile tabular files column by column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type fileProfile struct {
				File     string               `json:"file"`
				RowCount int                  `json:"row_count"`
				Fields   []ports.FieldProfile `json:"fields"`
			}

			prof := profiler.New()
			results := make([]fileProfile, len(args))

			var g errgroup.Group
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					f, err := excel.NewDataReader(path).Frame()
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					fields, err := prof.Profile(f)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					results[i] = fileProfile{File: path, RowCount: f.NumRows(), Fields: fields}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return printJSON(results)
		},
	}
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the plot HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			app := ui.NewApp(cfg)

			errCh := make(chan error, 1)
			go func() {
				errCh <- app.Start()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Printf("Received %s, shutting down", sig)
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return app.Shutdown(ctx)
			}
		},
	}
	return cmd
}

// resolveInput picks the data backend: a SQL table when --query is set,
// otherwise a file path, falling back to DATA_FILE when no arg is given.
func resolveInput(args []string, query string) (interface{}, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if query != "" {
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("--query requires DATABASE_URL to be set")
		}
		db, err := sqldb.Connect(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return sqldb.NewTable(db, query), nil
	}
	if len(args) > 0 {
		return excel.NewDataReader(args[0]), nil
	}
	if cfg.Data.DefaultFile != "" {
		return excel.NewDataReader(cfg.Data.DefaultFile), nil
	}
	return nil, fmt.Errorf("a file argument, --query, or DATA_FILE is required")
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
