package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/narrative"
	"github.com/wonny/esgproxy/backend/internal/scoring"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(format string) error {
	if format != formatText && format != formatJSON {
		return contracts.ValidationError{Field: "output", Message: "must be text or json"}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

func printSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "   %-20s : %s\n", key, value)
}

// PrintResult renders a score result in the chosen format
func PrintResult(w io.Writer, format string, res *contracts.ScoreResult) error {
	if format == formatJSON {
		return writeJSON(w, res)
	}

	fmt.Fprintln(w)
	printDoubleSeparator(w)
	title := "  ESG Score (feature regression)"
	if res.Pipeline == contracts.PipelineMarket {
		title = fmt.Sprintf("  ESG Proxy Score: %s (%s)", res.Ticker, res.Scheme)
	}
	fmt.Fprintln(w, title)
	printSeparator(w)

	printKeyValue(w, "Score", narrative.Round2(res.Score))
	printKeyValue(w, "Financial risk", string(res.Classification.Risk))
	printKeyValue(w, "Investor confidence", string(res.Classification.Confidence))
	printKeyValue(w, "Regulatory pressure", string(res.Classification.RegulatoryPressure))
	printKeyValue(w, "Cost of capital", res.Classification.CostOfCapital)

	if len(res.SubScores) > 0 {
		printSeparator(w)
		factors := make([]string, 0, len(res.SubScores))
		for f := range res.SubScores {
			factors = append(factors, string(f))
		}
		sort.Strings(factors)
		for _, f := range factors {
			printKeyValue(w, f, narrative.Round2(res.SubScores[contracts.Factor(f)]))
		}
	}

	printSeparator(w)
	fmt.Fprintln(w, res.Narrative)
	printDoubleSeparator(w)
	return nil
}

// PrintSchemes renders the scheme registry
func PrintSchemes(w io.Writer, format string, schemes []scoring.SchemeInfo) error {
	if format == formatJSON {
		return writeJSON(w, schemes)
	}

	for _, s := range schemes {
		weights := make([]string, len(s.Weights))
		for i, wt := range s.Weights {
			weights[i] = fmt.Sprintf("%s=%g", wt.Factor, wt.Weight)
		}
		line := strings.Join(weights, " ")
		if s.Rescale != 0 {
			line += fmt.Sprintf(" ×%g", s.Rescale)
		}
		fmt.Fprintf(w, "%-18s %-40s %s  [%s]\n", s.Name, line, s.Hash[:12], s.Source)
	}
	return nil
}
