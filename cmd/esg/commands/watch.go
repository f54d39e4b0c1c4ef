package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/scheduler"
	"github.com/wonny/esgproxy/backend/internal/scheduler/jobs"
)

// watchCmd periodically rescores a ticker watchlist
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "관심 종목 주기 재계산",
	Long: `WATCH_TICKERS 종목을 WATCH_SCHEDULE(cron)마다 다시 계산하고 로그로 남깁니다.
결과는 저장하지 않습니다.

Example:
  go run ./cmd/esg watch
  go run ./cmd/esg watch --tickers AAPL.US,MSFT.US --schedule "@hourly"
  go run ./cmd/esg watch --once`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchTickers  []string
	watchSchedule string
	watchScheme   string
	watchOnce     bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVar(&watchTickers, "tickers", nil, "watchlist (default: WATCH_TICKERS)")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron expression (default: WATCH_SCHEDULE)")
	watchCmd.Flags().StringVar(&watchScheme, "scheme", "", "weighting scheme (default: WATCH_SCHEME, then SCORING_DEFAULT_SCHEME)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run the watchlist once and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := a.cfg.Watch.Tickers
	if len(watchTickers) > 0 {
		tickers = watchTickers
	}
	if len(tickers) == 0 {
		return contracts.ValidationError{Field: "WATCH_TICKERS", Message: "at least one ticker required"}
	}
	schedule := a.cfg.Watch.Schedule
	if watchSchedule != "" {
		schedule = watchSchedule
	}
	if err := scheduler.ValidateSchedule(schedule); err != nil {
		return err
	}
	scheme := a.cfg.Watch.Scheme
	if watchScheme != "" {
		scheme = watchScheme
	}

	out := cmd.OutOrStdout()
	job := jobs.NewWatchJob(a.market, tickers, scheme, schedule, a.log).
		OnResult(func(res *contracts.ScoreResult) {
			fmt.Fprintf(out, "%-12s %-16s %6s  %s\n", res.Ticker, res.Scheme,
				fmt.Sprintf("%.2f", res.Score), res.Classification.Risk)
		})

	s := scheduler.New(a.log)
	if err := s.AddJob(job); err != nil {
		return err
	}

	if watchOnce {
		res, err := s.RunJob(ctx, job.Name())
		if err != nil {
			return err
		}
		if res.Report != nil {
			fmt.Fprintf(out, "\nScored %d/%d tickers in %s\n",
				res.Report.Items-res.Report.Failed, res.Report.Items, res.Duration.Round(time.Millisecond))
		}
		if !res.Success {
			return fmt.Errorf("watchlist run failed: %s", res.Error)
		}
		return nil
	}

	fmt.Fprintf(out, "Watching %s on %q. Press Ctrl+C to stop\n", strings.Join(tickers, ", "), schedule)
	s.Start(ctx)
	<-ctx.Done()
	s.Stop()
	return nil
}
