// Command monitor is the QuakeWatch alert monitor CLI.
//
// Usage:
//
//	quakewatch-monitor run --owner user-42
//	quakewatch-monitor run --owner user-42 --device-lat 14.6 --device-lon 120.98
//	quakewatch-monitor notify --magnitude 5.1 --place "Manila, Philippines" --lat 14.6 --lon 120.98
//	quakewatch-monitor drill inject --magnitude 4.5 --place "Quezon City, Philippines"
//	quakewatch-monitor drill purge
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quakewatch/quakewatch/internal/config"
	"github.com/quakewatch/quakewatch/internal/db"
	"github.com/quakewatch/quakewatch/internal/drill"
	"github.com/quakewatch/quakewatch/internal/feed"
	"github.com/quakewatch/quakewatch/internal/geo"
	"github.com/quakewatch/quakewatch/internal/ledger"
	"github.com/quakewatch/quakewatch/internal/listener"
	"github.com/quakewatch/quakewatch/internal/monitor"
	"github.com/quakewatch/quakewatch/internal/seismic"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "quakewatch-monitor",
		Short: "QuakeWatch alert monitor CLI",
	}

	root.AddCommand(runCmd())
	root.AddCommand(notifyCmd())
	root.AddCommand(drillCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var (
		owner            string
		includeSynthetic bool
		deviceLat        float64
		deviceLon        float64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the event feed and open alerts for matching earthquakes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			led, err := ledger.Open(cfg.LedgerPath, time.Now())
			if err != nil {
				if led == nil {
					return fmt.Errorf("open ledger: %w", err)
				}
				// Corrupt ledger starts fresh; worst case is one repeated
				// alert, never a missed one.
				logger.Warn("Ledger unreadable, starting fresh",
					"path", cfg.LedgerPath, "error", err)
			}
			logger.Info("Ledger opened", "path", cfg.LedgerPath, "entries", led.Len())

			pool, err := db.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			// Seed the threshold snapshot from the stored record, if any.
			if t, err := threshold.Get(ctx, pool.Pool, owner); err == nil {
				led.SetThreshold(t)
			} else if !errors.Is(err, threshold.ErrNotFound) {
				logger.Warn("Threshold load failed, using engine defaults", "error", err)
			}

			var device *geo.Coordinate
			if cmd.Flags().Changed("device-lat") && cmd.Flags().Changed("device-lon") {
				device = &geo.Coordinate{Latitude: deviceLat, Longitude: deviceLon}
			}

			client := feed.NewClient(cfg.EngineFeedURL, cfg.FetchTimeout)

			var mon *monitor.Monitor
			mon = monitor.New(monitor.Options{
				Feed:             client,
				Ledger:           led,
				Device:           device,
				Logger:           logger,
				Interval:         cfg.PollInterval,
				FetchTimeout:     cfg.FetchTimeout,
				FeedMinMagnitude: cfg.FeedMinMagnitude,
				IncludeSynthetic: includeSynthetic,
				OnAlert: func(a monitor.ActiveAlert) {
					// Fan out and acknowledge off-cycle so the poll loop is
					// never blocked on SMS delivery.
					go func() {
						defer mon.CloseAlert()
						result, err := client.TriggerNotification(ctx, feed.TriggerRequest{Event: a.Event})
						if err != nil {
							logger.Error("Fan-out trigger failed", "error", err)
							return
						}
						logger.Info("Fan-out triggered",
							"notified", result.Notified, "failed", result.Failed)
					}()
				},
			})

			// Re-evaluate recent events whenever the stored threshold changes.
			go listener.Start(ctx, cfg.DatabaseURL, pool.Pool, mon, owner, logger)

			mon.Run(ctx)

			if err := led.Flush(); err != nil {
				logger.Warn("Final ledger flush failed", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner id whose threshold drives matching")
	cmd.Flags().BoolVar(&includeSynthetic, "include-synthetic", true, "Evaluate drill events too")
	cmd.Flags().Float64Var(&deviceLat, "device-lat", 0, "Device latitude fallback when no anchor is configured")
	cmd.Flags().Float64Var(&deviceLon, "device-lon", 0, "Device longitude fallback when no anchor is configured")
	return cmd
}

// --------------------------------------------------------------------------
// notify command
// --------------------------------------------------------------------------

func notifyCmd() *cobra.Command {
	var (
		magnitude float64
		place     string
		lat       float64
		lon       float64
		depth     float64
	)
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Trigger a one-shot SMS fan-out for an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if magnitude <= 0 {
				return fmt.Errorf("--magnitude is required")
			}
			if place == "" && lat == 0 && lon == 0 {
				return fmt.Errorf("--place or --lat/--lon is required")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client := feed.NewClient(cfg.EngineFeedURL, cfg.FetchTimeout)
			result, err := client.TriggerNotification(ctx, feed.TriggerRequest{
				Event: seismic.Event{
					Time:      time.Now().UnixMilli(),
					Latitude:  lat,
					Longitude: lon,
					DepthKm:   depth,
					Magnitude: magnitude,
					Place:     place,
				},
			})
			if err != nil {
				return fmt.Errorf("trigger fan-out: %w", err)
			}

			logger.Info("Fan-out finished",
				"notified", result.Notified,
				"failed", result.Failed,
				"recipients", len(result.Recipients))
			for _, r := range result.Recipients {
				logger.Info("Recipient",
					"username", r.Username,
					"distance_km", fmt.Sprintf("%.2f", r.DistanceKm),
					"label", r.Label)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&magnitude, "magnitude", 0, "Event magnitude")
	cmd.Flags().StringVar(&place, "place", "", "Event place description")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Epicenter latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Epicenter longitude")
	cmd.Flags().Float64Var(&depth, "depth", 10, "Depth in km")
	return cmd
}

// --------------------------------------------------------------------------
// drill command
// --------------------------------------------------------------------------

func drillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Inject and purge synthetic drill events",
	}
	cmd.AddCommand(drillInjectCmd())
	cmd.AddCommand(drillPurgeCmd())
	return cmd
}

func drillInjectCmd() *cobra.Command {
	var (
		magnitude float64
		place     string
		lat       float64
		lon       float64
		depth     float64
	)
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Store a synthetic drill event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if magnitude <= 0 {
				return fmt.Errorf("--magnitude is required")
			}
			if place == "" {
				return fmt.Errorf("--place is required")
			}
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				ev := seismic.Event{
					Time:      time.Now().UnixMilli(),
					Latitude:  lat,
					Longitude: lon,
					DepthKm:   depth,
					Magnitude: magnitude,
					Place:     place,
					Synthetic: true,
				}
				id, err := drill.Create(ctx, pool.Pool, ev, "cli")
				if err != nil {
					return fmt.Errorf("create drill: %w", err)
				}
				logger.Info("Drill event stored",
					"id", id, "magnitude", magnitude, "place", place)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&magnitude, "magnitude", 0, "Drill magnitude")
	cmd.Flags().StringVar(&place, "place", "", "Drill place description")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Drill latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Drill longitude")
	cmd.Flags().Float64Var(&depth, "depth", 10, "Depth in km")
	return cmd
}

func drillPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete all stored drill events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				purged, err := drill.PurgeAll(ctx, pool.Pool)
				if err != nil {
					return fmt.Errorf("purge drills: %w", err)
				}
				logger.Info("Drill events purged", "count", purged)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithDB handles config loading, DB connection, and context cancellation.
func runWithDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
