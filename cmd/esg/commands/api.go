package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/esgproxy/backend/internal/api"
	"github.com/wonny/esgproxy/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                         - Health check
  POST /api/score/features             - 피처 벡터 점수
  GET  /api/score/ticker/{ticker}      - 종목 프록시 점수 (?scheme=&series=)
  GET  /api/schemes                    - 가중 스킴 목록
  GET  /api/schemes/{name}             - 가중 스킴 조회
  GET  /metrics                        - Prometheus (METRICS_ENABLED)

Example:
  go run ./cmd/esg api
  go run ./cmd/esg api --port 9090 --provider eodhd`,
	Args: cobra.NoArgs,
	RunE: runAPIServer,
}

var (
	apiPort   string
	warmModel bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&warmModel, "warm", true, "시작 시 회귀 모델 학습")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Wire components
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// 2. Fit the model once before accepting requests
	if warmModel {
		start := time.Now()
		if err := a.models.Warm(); err != nil {
			return fmt.Errorf("train regression model: %w", err)
		}
		a.log.WithField("duration", time.Since(start)).Info("Regression model ready")
	}

	// 3. Create router + server
	router := api.NewRouter(api.Handlers{
		Score:   handlers.NewScoreHandler(a.features, a.market, a.log),
		Schemes: handlers.NewSchemeHandler(a.schemes),
		Metrics: a.metrics,
	}, a.log)
	server := api.New(a.cfg, a.log, router)

	// 4. Serve until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx)
	}()

	select {
	case <-server.Ready():
		fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://%s\n", server.Addr())
		fmt.Fprintln(cmd.OutOrStdout(), "\nPress Ctrl+C to stop")
	case err := <-errCh:
		return err
	}

	if err := <-errCh; err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
