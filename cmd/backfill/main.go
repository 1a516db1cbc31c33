// Command backfill downloads historical candles from Polygon into the
// engine's DuckDB store so the "store" market data provider can serve them.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/internal/store"
	"github.com/signalmaster/signal-engine/internal/types"
)

// writeBatchSize bounds how many candles go into a single store transaction.
const writeBatchSize = 1000

// aggWindow maps a timeframe onto Polygon's multiplier/timespan pair.
func aggWindow(tf types.Timeframe) (int, models.Timespan, error) {
	switch tf {
	case types.Timeframe1Min:
		return 1, models.Minute, nil
	case types.Timeframe5Min:
		return 5, models.Minute, nil
	case types.Timeframe15Min:
		return 15, models.Minute, nil
	case types.Timeframe30Min:
		return 30, models.Minute, nil
	case types.Timeframe1Hour:
		return 1, models.Hour, nil
	case types.Timeframe4Hour:
		return 4, models.Hour, nil
	case types.Timeframe1Day:
		return 1, models.Day, nil
	default:
		return 0, "", fmt.Errorf("unsupported timeframe %q", tf)
	}
}

func backfillAction(ctx context.Context, cmd *cli.Command) error {
	symbol := cmd.String("symbol")
	timeframe := types.ParseTimeframe(cmd.String("timeframe"))
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	dbPath := cmd.String("db")

	apiKey := os.Getenv("POLYGON_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("POLYGON_API_KEY environment variable is required")
	}

	multiplier, timespan, err := aggWindow(timeframe)
	if err != nil {
		return err
	}

	l, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync()

	st, err := store.NewStore(dbPath, l)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Initialize(); err != nil {
		return err
	}

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
	bar := progressbar.NewOptions(totalDays,
		progressbar.OptionSetDescription(fmt.Sprintf("Backfilling %s %s", symbol, timeframe)),
		progressbar.OptionShowCount(),
	)

	client := polygon.New(apiKey)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	iter := client.ListAggs(ctx, params)

	batch := make([]types.Candle, 0, writeBatchSize)
	written := 0

	for iter.Next() {
		agg := iter.Item()
		batch = append(batch, types.Candle{
			Symbol:    symbol,
			Timeframe: timeframe,
			Time:      time.Time(agg.Timestamp),
			Open:      agg.Open,
			High:      agg.High,
			Low:       agg.Low,
			Close:     agg.Close,
			Volume:    agg.Volume,
		})

		if len(batch) == writeBatchSize {
			if err := st.WriteCandles(ctx, batch); err != nil {
				return fmt.Errorf("failed to write candles: %w", err)
			}

			written += len(batch)

			daysElapsed := int(time.Time(agg.Timestamp).Sub(startDate).Hours() / 24)
			bar.Set(daysElapsed)

			batch = batch[:0]
		}
	}

	if iter.Err() != nil {
		return fmt.Errorf("error iterating polygon aggregates: %w", iter.Err())
	}

	if len(batch) > 0 {
		if err := st.WriteCandles(ctx, batch); err != nil {
			return fmt.Errorf("failed to write candles: %w", err)
		}

		written += len(batch)
	}

	bar.Finish()
	log.Printf("Backfilled %d candles for %s %s.", written, symbol, timeframe)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backfill",
		Usage: "Download historical candles into the signal engine store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Instrument symbol to backfill",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"t"},
				Usage:   "Bar granularity (e.g. 1min, 5min, 1h, 1d)",
				Value:   string(types.Timeframe1Hour),
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:  "end",
				Usage: "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value: time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB database file",
				Value:   "signals.db",
			},
		},
		Action: backfillAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
