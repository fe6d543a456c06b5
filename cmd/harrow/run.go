package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/harrow/internal/cli"
	"github.com/aretw0/harrow/internal/logging"
	"github.com/aretw0/harrow/internal/presentation/report"
	"github.com/aretw0/harrow/pkg/adapters/memory"
	"github.com/aretw0/harrow/pkg/adapters/redis"
	"github.com/aretw0/harrow/pkg/observability"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/aretw0/harrow/pkg/runner"
)

// runCmd executes a scenario file.
var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a scenario against a cache cluster",
	Long:  `Loads a scenario file and runs its chain for the configured virtual users. Without --addr an in-process store is used, which is handy for dry runs.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levelName, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(levelName)
		if err != nil {
			return err
		}
		logger := logging.New(level)

		users, _ := cmd.Flags().GetInt("users")
		iterations, _ := cmd.Flags().GetInt("iterations")
		pace, _ := cmd.Flags().GetDuration("pace")
		addr, _ := cmd.Flags().GetString("addr")
		password, _ := cmd.Flags().GetString("password")
		db, _ := cmd.Flags().GetInt("db")
		metricsAddr, _ := cmd.Flags().GetString("metrics")

		scenario, err := cli.Load(args[0])
		if err != nil {
			return err
		}
		c, err := cli.Build(scenario)
		if err != nil {
			return err
		}

		collector := report.NewCollector()
		reporters := []ports.Reporter{collector, observability.NewLogReporter(logger)}

		if metricsAddr != "" {
			// A private registry keeps repeated command invocations in
			// one process from tripping duplicate registration.
			reg := prometheus.NewRegistry()
			prom, err := observability.NewPrometheusReporter(observability.WithRegisterer(reg))
			if err != nil {
				return fmt.Errorf("metrics setup failed: %w", err)
			}
			reporters = append(reporters, prom)

			srv := newMetricsServer(metricsAddr, reg)
			go func() {
				logger.Info("metrics listening", "addr", metricsAddr)
				if err := srv.ListenAndServe(); err != nil {
					logger.Warn("metrics server stopped", "err", err)
				}
			}()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}()
		}

		c = c.WithReporter(observability.Multi(reporters...)).WithLogger(logger)

		factory := clientFactory(addr, password, db)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report.Banner(os.Stdout)
		logger.Info("scenario starting", "scenario", scenario.Name, "users", users, "iterations", iterations)

		r := runner.New(c, factory,
			runner.WithUsers(users),
			runner.WithIterations(iterations),
			runner.WithPace(pace),
			runner.WithLogger(logger),
		)
		stats, runErr := r.Run(ctx)

		if stats != nil {
			if err := report.Write(os.Stdout, scenario.Name, stats, collector.Summaries()); err != nil {
				logger.Warn("report rendering failed", "err", err)
			}
		}
		if runErr != nil {
			return runErr
		}
		if stats.Failures > 0 {
			return fmt.Errorf("%d of %d runs failed", stats.Failures, stats.Runs)
		}
		return nil
	},
}

// clientFactory picks the backing store. An empty addr selects the
// in-process memory adapter.
func clientFactory(addr, password string, db int) runner.ClientFactory {
	return func(ctx context.Context) (ports.Client, error) {
		if addr == "" {
			return memory.New(), nil
		}
		return redis.New(addr, password, db), nil
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("users", "u", 1, "Number of concurrent virtual users")
	runCmd.Flags().IntP("iterations", "i", 1, "Iterations per user")
	runCmd.Flags().Duration("pace", 0, "Fixed delay between iterations of a user")
	runCmd.Flags().String("addr", "", "Redis address, e.g. localhost:6379 (empty uses the in-process store)")
	runCmd.Flags().String("password", "", "Redis password")
	runCmd.Flags().Int("db", 0, "Redis database index")
	runCmd.Flags().String("metrics", "", "Expose Prometheus metrics on this address, e.g. :2112")
}
