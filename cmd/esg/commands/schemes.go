package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/esgproxy/backend/internal/scoring"
	"github.com/wonny/esgproxy/backend/pkg/config"
)

// schemesCmd lists weighting schemes
var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "가중 스킴 목록",
	Long: `등록된 가중 스킴(내장 + SCORING_SCHEMES_FILE)과 해시를 출력합니다.

Example:
  go run ./cmd/esg schemes
  go run ./cmd/esg schemes -o json`,
	Args: cobra.NoArgs,
	RunE: runSchemes,
}

func init() {
	rootCmd.AddCommand(schemesCmd)
}

func runSchemes(cmd *cobra.Command, args []string) error {
	if err := checkFormat(output); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	return PrintSchemes(cmd.OutOrStdout(), output, registry.List())
}

func buildRegistry(cfg *config.Config) (*scoring.Registry, error) {
	registry := scoring.NewRegistry()
	if cfg.Scoring.SchemesFile != "" {
		if _, err := registry.LoadInto(cfg.Scoring.SchemesFile); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
