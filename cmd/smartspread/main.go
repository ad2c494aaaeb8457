package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"smartspread"
	"smartspread/bqexport"
	"smartspread/internal/app"

	"github.com/rs/zerolog/log"
)

// Demonstration harness: opens (or creates) the configured spreadsheet,
// round-trips a sample tab through all three data shapes and shows the
// change-detecting write skipping the second call.
func main() {
	app.SetupEnvironment()

	tabName := flag.String("tab", "Demo", "Tab to write the sample data to")
	sharePublicly := flag.Bool("share", false, "Share a newly created spreadsheet publicly")
	flag.Parse()

	config, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	opts := []smartspread.Option{}
	if config.CredentialsJSON != "" {
		opts = append(opts, smartspread.WithCredentialsJSON([]byte(config.CredentialsJSON)))
	} else {
		opts = append(opts, smartspread.WithCredentialsFile(config.CredentialsFile))
	}
	if config.UserEmail != "" {
		opts = append(opts, smartspread.WithUserEmail(config.UserEmail))
	}

	spread, err := smartspread.New(ctx, config.SheetIdentifier, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create spreadsheet handle")
	}

	if _, err := spread.Resolve(ctx); err != nil {
		if !errors.Is(err, smartspread.ErrNotFound) {
			log.Fatal().Err(err).Msg("Failed to resolve spreadsheet")
		}
		log.Info().Str("identifier", config.SheetIdentifier).Msg("Spreadsheet not found, creating it")
		if _, err := spread.Create(ctx, *sharePublicly); err != nil {
			log.Fatal().Err(err).Msg("Failed to create spreadsheet")
		}
	}

	url, err := spread.URL(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get spreadsheet URL")
	}
	log.Info().Str("url", url).Msg("Spreadsheet ready")

	tab, err := spread.Tab(ctx, *tabName, smartspread.FormatDataFrame, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open tab")
	}

	table := smartspread.NewTable([]string{"Name", "Age", "City"})
	table.AppendRow([]smartspread.Cell{smartspread.StringCell("Alice"), smartspread.IntCell(25), smartspread.StringCell("NYC")})
	table.AppendRow([]smartspread.Cell{smartspread.StringCell("Bob"), smartspread.IntCell(30), smartspread.StringCell("LA")})
	table.AppendRow([]smartspread.Cell{smartspread.StringCell("Charlie"), smartspread.IntCell(35), smartspread.NullCell()})
	if err := tab.SetData(table); err != nil {
		log.Fatal().Err(err).Msg("Failed to set tab data")
	}

	if err := tab.WriteData(ctx, true, true); err != nil {
		log.Fatal().Err(err).Msg("Failed to write tab data")
	}

	// Second write of unchanged data is a no-op.
	if err := tab.WriteData(ctx, true, true); err != nil {
		log.Fatal().Err(err).Msg("Failed on repeated write")
	}

	matches, err := tab.FilterRowsByColumn("Name", "Al")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to filter rows")
	}
	log.Info().Int("matches", matches.NumRows()).Msg("Filtered rows containing 'Al'")

	if err := tab.UpdateRowByColumnPattern("Name", "Bob", map[string]interface{}{"City": "Chicago"}); err != nil {
		log.Fatal().Err(err).Msg("Failed to upsert row")
	}
	if err := tab.WriteData(ctx, true, true); err != nil {
		log.Fatal().Err(err).Msg("Failed to write upserted data")
	}

	// Read back as records to show the JSON-safe null handling.
	recordsTab, err := spread.Tab(ctx, *tabName, smartspread.FormatDict, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to re-open tab")
	}
	encoded, err := json.MarshalIndent(recordsTab.Data(), "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to serialize records")
	}
	fmt.Println(string(encoded))

	if config.HasBigQuery() {
		exporter, err := bqexport.New(ctx, config.BigQueryProject)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery exporter")
		}
		defer exporter.Close()

		if err := exporter.Export(ctx, config.BigQueryDataset, *tabName, tab.Table()); err != nil {
			log.Fatal().Err(err).Msg("Failed to export tab to BigQuery")
		}
	}
}
