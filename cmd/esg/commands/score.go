package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/pipeline"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "점수 계산",
	Long: `ESG 점수를 한 번 계산하고 출력합니다.

Subcommands:
  features  - 수동 입력 지표 5개로 회귀 점수 계산
  ticker    - 시세 기반 프록시 점수 계산`,
}

var (
	featureVector = contracts.DefaultFeatureVector()

	scoreScheme string
	withSeries  bool
)

var scoreFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "피처 벡터 점수",
	Long: `수동 입력 지표로 점수를 계산합니다. 생략한 지표는 기본값을 사용합니다.

Example:
  go run ./cmd/esg score features
  go run ./cmd/esg score features --emission 20 --renewable 80 -o json`,
	Args: cobra.NoArgs,
	RunE: runScoreFeatures,
}

var scoreTickerCmd = &cobra.Command{
	Use:   "ticker [ticker]",
	Short: "종목 프록시 점수",
	Long: `1년 시세로 프록시 점수를 계산합니다.

Example:
  go run ./cmd/esg score ticker AAPL.US
  go run ./cmd/esg score ticker 005930 --provider naver --scheme fundamentals-v3`,
	Args: cobra.ExactArgs(1),
	RunE: runScoreTicker,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.AddCommand(scoreFeaturesCmd, scoreTickerCmd)

	f := scoreFeaturesCmd.Flags()
	f.Float64Var(&featureVector.Emission, "emission", featureVector.Emission, "carbon emission intensity [0,100]")
	f.Float64Var(&featureVector.Renewable, "renewable", featureVector.Renewable, "renewable energy usage % [0,100]")
	f.Float64Var(&featureVector.Diversity, "diversity", featureVector.Diversity, "board diversity % [0,100]")
	f.Float64Var(&featureVector.Turnover, "turnover", featureVector.Turnover, "employee turnover % [0,50]")
	f.Float64Var(&featureVector.DebtRatio, "debt-ratio", featureVector.DebtRatio, "debt ratio [0,1]")

	scoreTickerCmd.Flags().StringVar(&scoreScheme, "scheme", "", "weighting scheme (default: SCORING_DEFAULT_SCHEME)")
	scoreTickerCmd.Flags().BoolVar(&withSeries, "series", false, "include rolling volatility and moving average (json output)")
}

func runScoreFeatures(cmd *cobra.Command, args []string) error {
	if err := checkFormat(output); err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.features.Score(featureVector)
	if err != nil {
		return err
	}
	return PrintResult(cmd.OutOrStdout(), output, res)
}

func runScoreTicker(cmd *cobra.Command, args []string) error {
	if err := checkFormat(output); err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.market.Score(cmd.Context(), pipeline.MarketRequest{
		Ticker:        args[0],
		Scheme:        scoreScheme,
		IncludeSeries: withSeries,
	})
	if err != nil {
		return userError(err)
	}
	return PrintResult(cmd.OutOrStdout(), output, res)
}

// userError swaps provider internals for the user-facing message
func userError(err error) error {
	if pe, ok := asProviderError(err); ok {
		return userMessage(pe.UserMessage())
	}
	return err
}
