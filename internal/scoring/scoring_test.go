package scoring

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

func ptr(v float64) *float64 { return &v }

func mustScheme(t *testing.T, r *Registry, name string) Scheme {
	t.Helper()
	s, _, err := r.Get(name)
	require.NoError(t, err)
	return s
}

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, Clip(-1, 0, 1))
	assert.Equal(t, 1.0, Clip(2, 0, 1))
	assert.Equal(t, 0.5, Clip(0.5, 0, 1))
	assert.Equal(t, 0.0, Clip(math.NaN(), 0, 1))
	assert.Equal(t, 0.0, ClipScore(math.NaN()))
	assert.Equal(t, 100.0, ClipScore(math.Inf(1)))
	assert.Equal(t, 0.0, ClipScore(math.Inf(-1)))
}

func TestNormalizers(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"volatility zero", VolatilityScore(0), 1},
		{"volatility 0.25", VolatilityScore(0.25), 1.0 / 3.0},
		{"return zero", ReturnScore(0), 0.5},
		{"return capped", ReturnScore(0.5), 1},
		{"return floored", ReturnScore(-0.5), 0},
		{"sharpe zero", SharpeScore(0), 0.5},
		{"sharpe capped", SharpeScore(10), 1},
		{"stability", StabilityScore(1.5), -0.5},
		{"growth", GrowthScore(0.3), 0.3},
		{"leverage unclamped", LeverageScore(1.2), -0.2},
		{"profitability negative", ProfitabilityScore(-0.4), -0.4},
		{"size", SizeScore(15), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.got, 1e-12)
		})
	}
}

func TestNormalizers_Monotonic(t *testing.T) {
	inputs := []float64{-3, -1, -0.5, -0.1, 0, 0.05, 0.2, 0.5, 1, 2, 5}
	for i := 1; i < len(inputs); i++ {
		lo, hi := inputs[i-1], inputs[i]
		if lo >= 0 {
			assert.GreaterOrEqual(t, VolatilityScore(lo), VolatilityScore(hi), "volatility %v→%v", lo, hi)
		}
		assert.LessOrEqual(t, ReturnScore(lo), ReturnScore(hi), "return %v→%v", lo, hi)
		assert.LessOrEqual(t, SharpeScore(lo), SharpeScore(hi), "sharpe %v→%v", lo, hi)
		assert.GreaterOrEqual(t, StabilityScore(lo), StabilityScore(hi))
		assert.GreaterOrEqual(t, LeverageScore(lo), LeverageScore(hi))
	}
}

func TestSchemeValidate(t *testing.T) {
	tests := []struct {
		name    string
		scheme  Scheme
		wantErr bool
	}{
		{
			name:   "valid",
			scheme: Scheme{Name: "x", Weights: []Weight{{contracts.FactorVolatility, 60}, {contracts.FactorSharpe, 40}}},
		},
		{
			name:    "missing name",
			scheme:  Scheme{Weights: []Weight{{contracts.FactorVolatility, 100}}},
			wantErr: true,
		},
		{
			name:    "no weights",
			scheme:  Scheme{Name: "x"},
			wantErr: true,
		},
		{
			name:    "sum not 100",
			scheme:  Scheme{Name: "x", Weights: []Weight{{contracts.FactorVolatility, 60}, {contracts.FactorSharpe, 30}}},
			wantErr: true,
		},
		{
			name:    "unknown factor",
			scheme:  Scheme{Name: "x", Weights: []Weight{{contracts.Factor("esg"), 100}}},
			wantErr: true,
		},
		{
			name:    "duplicate factor",
			scheme:  Scheme{Name: "x", Weights: []Weight{{contracts.FactorReturn, 50}, {contracts.FactorReturn, 50}}},
			wantErr: true,
		},
		{
			name:    "negative weight",
			scheme:  Scheme{Name: "x", Weights: []Weight{{contracts.FactorReturn, 120}, {contracts.FactorSharpe, -20}}},
			wantErr: true,
		},
		{
			name:    "negative rescale",
			scheme:  Scheme{Name: "x", Weights: []Weight{{contracts.FactorReturn, 100}}, Rescale: -1},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scheme.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve contracts.ValidationError
			assert.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
		})
	}
}

func TestBuiltinSchemes(t *testing.T) {
	for _, s := range BuiltinSchemes() {
		assert.NoError(t, s.Validate(), s.Name)
	}

	r := NewRegistry()
	tech := mustScheme(t, r, SchemeTechnical)
	assert.Equal(t, []contracts.Factor{contracts.FactorVolatility, contracts.FactorReturn, contracts.FactorSharpe}, tech.Factors())
	assert.Equal(t, 1.0, tech.Multiplier())
	assert.False(t, tech.RequiresFundamentals())

	fund := mustScheme(t, r, SchemeFundamentals)
	assert.Equal(t, FundamentalsRescale, fund.Multiplier())
	assert.True(t, fund.RequiresFundamentals())
}

func TestEvaluate_Flat(t *testing.T) {
	r := NewRegistry()
	flat := &contracts.Statistics{Observations: 252}

	tests := []struct {
		scheme string
		want   float64
	}{
		{SchemeTechnical, 67.5}, // 35 + 15 + 17.5
		{SchemeGrowth, 65},      // 20 + 15 + 30
	}
	for _, tt := range tests {
		t.Run(tt.scheme, func(t *testing.T) {
			c, err := Evaluate(mustScheme(t, r, tt.scheme), flat)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, c.Score, 1e-9)
			assert.Len(t, c.SubScores, 3)
		})
	}
}

func TestEvaluate_Uptrend(t *testing.T) {
	stats := &contracts.Statistics{Volatility: 1e-12, MeanReturn: 2.52, Sharpe: 2.52e6, Growth: 11.1}
	c, err := Evaluate(mustScheme(t, NewRegistry(), SchemeTechnical), stats)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, c.Score, 75.0)
	assert.LessOrEqual(t, c.Score, 100.0)
}

func TestEvaluate_Fundamentals(t *testing.T) {
	s := mustScheme(t, NewRegistry(), SchemeFundamentals)

	_, err := Evaluate(s, &contracts.Statistics{})
	assert.ErrorIs(t, err, contracts.ErrFundamentalsUnavailable)

	strong := &contracts.Statistics{
		Growth:       0.1,
		DebtRatio:    ptr(0.2),
		ProfitMargin: ptr(0.1),
		LogMarketCap: ptr(math.Log1p(1e12)),
	}
	c, err := Evaluate(s, strong)
	require.NoError(t, err)
	assert.Greater(t, c.Raw, 100.0, "×10 rescale saturates")
	assert.Equal(t, 100.0, c.Score)

	weak := &contracts.Statistics{
		Growth:       -0.5,
		DebtRatio:    ptr(0.9),
		ProfitMargin: ptr(-0.2),
		LogMarketCap: ptr(math.Log1p(100)),
	}
	c, err = Evaluate(s, weak)
	require.NoError(t, err)
	assert.Less(t, c.Raw, 0.0)
	assert.Equal(t, 0.0, c.Score)
}

func TestCombine_OrderIndependent(t *testing.T) {
	subs := contracts.SubScores{
		contracts.FactorGrowth:        0.13,
		contracts.FactorLeverage:      0.71,
		contracts.FactorProfitability: 0.09,
		contracts.FactorSize:          0.88,
	}
	base := mustScheme(t, NewRegistry(), SchemeFundamentals)
	want := Combine(base, subs)

	reversed := base
	reversed.Weights = nil
	for i := len(base.Weights) - 1; i >= 0; i-- {
		reversed.Weights = append(reversed.Weights, base.Weights[i])
	}
	assert.InDelta(t, want, Combine(reversed, subs), 1e-9)
}

func TestCombine_Bounded(t *testing.T) {
	s := mustScheme(t, NewRegistry(), SchemeGrowth)
	for _, v := range []float64{-100, -1, 0, 0.5, 1, 100, math.NaN()} {
		subs := contracts.SubScores{
			contracts.FactorReturn:    v,
			contracts.FactorSharpe:    v,
			contracts.FactorStability: v,
		}
		score := ClipScore(Combine(s, subs))
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, SchemeFundamentals, list[0].Name)
	assert.Equal(t, "builtin", list[0].Source)
	assert.Len(t, list[0].Hash, 64)

	_, _, err := r.Get("v9")
	assert.ErrorIs(t, err, contracts.ErrUnknownScheme)

	_, h1, _ := r.Get(SchemeTechnical)
	_, h2, _ := r.Get(SchemeTechnical)
	assert.Equal(t, h1, h2, "hash is deterministic")

	// returned copies never alias registry state
	s, _, _ := r.Get(SchemeTechnical)
	s.Weights[0].Weight = 99
	again, _, _ := r.Get(SchemeTechnical)
	assert.Equal(t, 35.0, again.Weights[0].Weight)

	err = r.Register(Scheme{Name: "bad"}, "test")
	assert.Error(t, err)
}

const schemeYAML = `
schemes:
  - name: balanced-v4
    description: equal risk and return
    weights:
      - {factor: volatility, weight: 50}
      - {factor: return, weight: 50}
  - name: technical-v1
    weights:
      - {factor: sharpe, weight: 100}
`

func TestParse(t *testing.T) {
	schemes, err := Parse([]byte(schemeYAML))
	require.NoError(t, err)
	require.Len(t, schemes, 2)
	assert.Equal(t, "balanced-v4", schemes[0].Name)
	assert.Equal(t, contracts.FactorReturn, schemes[0].Weights[1].Factor)

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "schemes:\n  - name: x\n    weigths: []\n"},
		{"bad sum", "schemes:\n  - name: x\n    weights:\n      - {factor: return, weight: 10}\n"},
		{"duplicate scheme", "schemes:\n  - name: x\n    weights: [{factor: return, weight: 100}]\n  - name: x\n    weights: [{factor: sharpe, weight: 100}]\n"},
		{"not yaml", "schemes: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestRegistry_LoadInto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(schemeYAML), 0o600))

	r := NewRegistry()
	n, err := r.LoadInto(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, r.List(), 4)

	tech := mustScheme(t, r, SchemeTechnical)
	assert.Equal(t, []contracts.Factor{contracts.FactorSharpe}, tech.Factors(), "file overrides built-in")

	_, err = r.LoadInto(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
