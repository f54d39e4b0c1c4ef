package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// weightsTotal is the required sum of scheme weights
const weightsTotal = 100.0

// FundamentalsRescale multiplies the fundamentals-v3 composite after weighting
// The composite saturates at 100 for most tickers, which looks like a defect.
// Kept as-is until stakeholders confirm whether the factor is intended.
const FundamentalsRescale = 10.0

// Weight binds a factor to its weight in percent
type Weight struct {
	Factor contracts.Factor `yaml:"factor" json:"factor"`
	Weight float64          `yaml:"weight" json:"weight"`
}

// Scheme is a named weighting configuration
// ⭐ SSOT: 가중치 순서는 선언 순서 그대로 유지 (해시 재현성)
type Scheme struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Weights     []Weight `yaml:"weights" json:"weights"`
	Rescale     float64  `yaml:"rescale,omitempty" json:"rescale,omitempty"`
}

// Factors returns the factors in declaration order
func (s *Scheme) Factors() []contracts.Factor {
	out := make([]contracts.Factor, len(s.Weights))
	for i, w := range s.Weights {
		out[i] = w.Factor
	}
	return out
}

// Multiplier returns the rescale factor, 1 when unset
func (s *Scheme) Multiplier() float64 {
	if s.Rescale == 0 {
		return 1
	}
	return s.Rescale
}

// RequiresFundamentals reports whether any factor needs provider fundamentals
func (s *Scheme) RequiresFundamentals() bool {
	for _, w := range s.Weights {
		if needsFundamentals[w.Factor] {
			return true
		}
	}
	return false
}

// Validate checks the scheme invariants
func (s *Scheme) Validate() error {
	if s.Name == "" {
		return contracts.ValidationError{Field: "scheme.name", Message: "required"}
	}
	field := fmt.Sprintf("scheme[%s].weights", s.Name)
	if len(s.Weights) == 0 {
		return contracts.ValidationError{Field: field, Message: "at least one factor required"}
	}

	seen := make(map[contracts.Factor]bool, len(s.Weights))
	var sum float64
	for _, w := range s.Weights {
		if !KnownFactor(w.Factor) {
			return contracts.ValidationError{Field: field, Message: fmt.Sprintf("unknown factor %q", w.Factor)}
		}
		if seen[w.Factor] {
			return contracts.ValidationError{Field: field, Message: fmt.Sprintf("duplicate factor %q", w.Factor)}
		}
		seen[w.Factor] = true
		if w.Weight <= 0 || math.IsNaN(w.Weight) {
			return contracts.ValidationError{Field: field, Message: fmt.Sprintf("weight of %s must be > 0", w.Factor)}
		}
		sum += w.Weight
	}
	if math.Abs(sum-weightsTotal) > 1e-6 {
		return contracts.ValidationError{Field: field, Message: fmt.Sprintf("weights must sum to 100, got %g", sum)}
	}

	if s.Rescale < 0 || math.IsNaN(s.Rescale) || math.IsInf(s.Rescale, 0) {
		return contracts.ValidationError{Field: fmt.Sprintf("scheme[%s].rescale", s.Name), Message: "must be > 0"}
	}
	return nil
}

// Hash returns the SHA-256 of the scheme's canonical JSON
func (s *Scheme) Hash() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// =============================================================================
// Built-in schemes
// =============================================================================

// Built-in scheme names
const (
	SchemeTechnical    = "technical-v1"
	SchemeGrowth       = "growth-v2"
	SchemeFundamentals = "fundamentals-v3"
)

// BuiltinSchemes returns fresh copies of the published schemes
func BuiltinSchemes() []Scheme {
	return []Scheme{
		{
			Name:        SchemeTechnical,
			Description: "Volatility, return and risk-adjusted return",
			Weights: []Weight{
				{Factor: contracts.FactorVolatility, Weight: 35},
				{Factor: contracts.FactorReturn, Weight: 30},
				{Factor: contracts.FactorSharpe, Weight: 35},
			},
		},
		{
			Name:        SchemeGrowth,
			Description: "Return and Sharpe with a price stability term",
			Weights: []Weight{
				{Factor: contracts.FactorReturn, Weight: 40},
				{Factor: contracts.FactorSharpe, Weight: 30},
				{Factor: contracts.FactorStability, Weight: 30},
			},
		},
		{
			Name:        SchemeFundamentals,
			Description: "Price growth with leverage, profitability and size from fundamentals",
			Weights: []Weight{
				{Factor: contracts.FactorGrowth, Weight: 30},
				{Factor: contracts.FactorLeverage, Weight: 25},
				{Factor: contracts.FactorProfitability, Weight: 25},
				{Factor: contracts.FactorSize, Weight: 20},
			},
			Rescale: FundamentalsRescale,
		},
	}
}
