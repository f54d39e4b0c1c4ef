package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	provider   string
	output     string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "esg",
	Short: "ESG proxy scoring",
	Long: `ESG Proxy Scoring CLI

두 가지 파이프라인으로 ESG 프록시 점수를 계산합니다.
- feature: 수동 입력 지표 5개 → 회귀 모델
- market:  1년 시세 (+재무) → 가중 스킴

Usage:
  go run ./cmd/esg [command]

Examples:
  go run ./cmd/esg score features --emission 40 --renewable 60
  go run ./cmd/esg score ticker AAPL.US --scheme growth-v2
  go run ./cmd/esg schemes
  go run ./cmd/esg api
  go run ./cmd/esg watch --once`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default: .env lookup)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "market data provider override (static|eodhd|naver|postgres)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", formatText, "output format (text|json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
