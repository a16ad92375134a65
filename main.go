package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estate-browser/config"
	"estate-browser/fetcher"
	"estate-browser/models"
	"estate-browser/utils"
)

var (
	// Global flags
	verbose bool
	apiURL  string

	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "estate",
	Short: "Browse the real-estate home feed and search from the terminal",
	Long: `estate talks to the listing API the web front end uses.

It aggregates the three home-page categories (offers, rentals, sales),
serves them over HTTP, exports snapshots to CSV/PostgreSQL, and keeps a
search term in step with the page's query string.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if apiURL != "" {
			cfg.ListingAPIBaseURL = apiURL
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger = utils.NewLogger(cfg.LogLevel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Listing API base URL (overrides LISTING_API_BASE_URL)")

	searchCmd.Flags().StringVar(&searchFrom, "from", "", "Query string of the current page")
	searchCmd.Flags().StringVar(&searchTerm, "term", "", "Search term to submit")

	exportCmd.Flags().BoolVar(&exportPostgres, "postgres", false, "Also write the snapshot to PostgreSQL")
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "CSV output path (overrides CSV_OUTPUT_PATH)")

	browseCmd.Flags().StringVar(&browseTerm, "term", "", "Type this term into the search box and submit it")

	rootCmd.AddCommand(homeCmd, searchCmd, serveCmd, exportCmd, snapshotCmd, scheduleCmd, browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newListingClient builds the API client and the three home queries from cfg.
func newListingClient() (*fetcher.ListingClient, []models.CategoryQuery, error) {
	client, err := fetcher.NewListingClient(cfg.ListingAPIBaseURL, cfg.HTTPTimeout, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, models.HomeQueries(cfg.CategoryLimit), nil
}
