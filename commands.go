package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"estate-browser/models"
	"estate-browser/navigation"
	"estate-browser/scheduler"
	"estate-browser/server"
	"estate-browser/services"
	"estate-browser/storage"
)

var (
	searchFrom     string
	searchTerm     string
	exportPostgres bool
	exportCSV      string
	browseTerm     string
)

// homeCmd activates the home feed once and prints it
var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Fetch and print the home feed (offers, rentals, sales)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, queries, err := newListingClient()
		if err != nil {
			return err
		}
		agg, err := services.NewAggregator(client, queries, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report := services.NewHomeReport(services.NewCardBuilder(logger), queries, logger)
		agg.Subscribe(func(s models.AggregateViewState) {
			if s.Status == models.StatusPending {
				report.Print(cmd.OutOrStdout(), s)
			}
		})

		state, _ := agg.Activate(ctx)
		report.Print(cmd.OutOrStdout(), state)
		if state.Error != "" {
			return errors.New(state.Error)
		}
		return nil
	},
}

// searchCmd prints the path a search submit navigates to
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Print the search path for a term submitted from a page",
	Example: `  estate search --from "searchTerm=loft&minPrice=100000" --term downtown
  /search?searchTerm=downtown&minPrice=100000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		box := services.NewSearchSync("")
		box.OnActivateOrNavigate(searchFrom)
		if cmd.Flags().Changed("term") {
			box.OnInputChanged(searchTerm)
		}
		logger.Debug("[search] Term %q", box.Term())
		fmt.Fprintln(cmd.OutOrStdout(), box.OnSubmit(searchFrom))
		return nil
	},
}

// serveCmd runs the HTTP API until interrupted
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the home feed and search endpoints over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, queries, err := newListingClient()
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           server.NewRouter(client, queries, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Listening on %s (listing API %s)", cfg.ListenAddr, cfg.ListingAPIBaseURL)
			errCh <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// exportCmd runs one export of the home feed
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current home feed to CSV (and optionally PostgreSQL)",
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, closeWriters, err := newExporter()
		if err != nil {
			return err
		}
		defer closeWriters()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		snap, err := exporter.Export(ctx)
		if snap != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s: %d listings\n", snap.ID, len(snap.Rows))
		}
		return err
	},
}

// snapshotCmd prints a snapshot stored by a previous export
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [id]",
	Short: "Print a snapshot stored in PostgreSQL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pg, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return err
		}
		defer pg.Close()

		snap, err := pg.FetchSnapshot(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Snapshot %s (activation %d, exported %s)\n",
			snap.ID, snap.Activation, snap.ExportedAt.Format(time.RFC3339))
		cards := services.NewCardBuilder(logger)
		for _, r := range snap.Rows {
			c := cards.Build(r.Listing)
			fmt.Fprintf(out, "  %-5s %d. %-36s %s\n", r.Category, r.Position+1, c.Title, c.Price)
		}
		return nil
	},
}

// scheduleCmd exports on EXPORT_SCHEDULE until interrupted
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Export the home feed on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, closeWriters, err := newExporter()
		if err != nil {
			return err
		}
		defer closeWriters()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := scheduler.New(exporter, cfg.ExportSchedule, logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()

		logger.Info("Stopping scheduler...")
		sched.Stop()
		return nil
	},
}

// browseCmd drives a headless browser to show the search box following
// the page location
var browseCmd = &cobra.Command{
	Use:   "browse [query]",
	Short: "Open the web search page in headless Chrome and sync the search box",
	Long: `Opens <WEB_BASE_URL>/search?<query> in headless Chrome, reads the
search term from the page location and, with --term, submits a new term.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		browser, err := navigation.NewBrowser(cmd.Context(), navigation.BrowserOptions{
			BaseURL:   cfg.WebBaseURL,
			ChromeBin: cfg.ChromeBin,
			Timeout:   cfg.HTTPTimeout,
		}, logger)
		if err != nil {
			return err
		}
		defer browser.Close()

		path := services.SearchRoute
		if len(args) == 1 && args[0] != "" {
			path += "?" + strings.TrimPrefix(args[0], "?")
		}
		if err := browser.Push(path); err != nil {
			return err
		}

		ctrl := services.NewSearchController(services.NewSearchSync(""), browser, logger)
		ctrl.Activate()
		defer ctrl.Deactivate()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Location: ?%s\nSearch box: %q\n", browser.Location(), ctrl.Term())

		if !cmd.Flags().Changed("term") {
			return nil
		}
		ctrl.Input(browseTerm)
		next, err := ctrl.Submit()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Navigated to %s\nSearch box: %q\n", next, ctrl.Term())
		return nil
	},
}

// newExporter wires the aggregator to the configured feed writers.
func newExporter() (*services.Exporter, func(), error) {
	client, queries, err := newListingClient()
	if err != nil {
		return nil, nil, err
	}
	agg, err := services.NewAggregator(client, queries, logger)
	if err != nil {
		return nil, nil, err
	}

	csvPath := cfg.CSVOutputPath
	if exportCSV != "" {
		csvPath = exportCSV
	}
	csvWriter, err := storage.NewCSVWriter(csvPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create CSV writer: %w", err)
	}
	writers := []storage.FeedWriter{csvWriter}

	if exportPostgres {
		pg, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			csvWriter.Close()
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return nil, nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		writers = append(writers, pg)
	}

	closeAll := func() {
		for _, w := range writers {
			if err := w.Close(); err != nil {
				logger.Warn("Close %s: %v", w.Name(), err)
			}
		}
	}
	return services.NewExporter(agg, writers, logger).WithWorkers(cfg.MaxConcurrency), closeAll, nil
}
