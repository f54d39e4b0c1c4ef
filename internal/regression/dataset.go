package regression

import (
	"math"
	"math/rand"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// Reference formula weights
// ⭐ SSOT: 합성 ESG 점수 공식은 여기서만 정의
const (
	formulaIntercept = 100.0
	weightEmission   = -0.4
	weightRenewable  = 0.3
	weightDiversity  = 0.2
	weightTurnover   = -0.3
	weightDebtRatio  = -20.0
)

// Dataset is the synthetic reference data the model is fit against
type Dataset struct {
	X [][contracts.FeatureCount]float64
	Y []float64
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return len(d.Y)
}

// ReferenceScore evaluates the synthetic target formula, clipped to [0,100]
func ReferenceScore(x [contracts.FeatureCount]float64) float64 {
	score := formulaIntercept +
		weightEmission*x[0] +
		weightRenewable*x[1] +
		weightDiversity*x[2] +
		weightTurnover*x[3] +
		weightDebtRatio*x[4]
	return math.Max(0, math.Min(100, score))
}

// NewReferenceDataset draws n samples column by column from rng
// emission [10,100), renewable [5,90), diversity [5,60), turnover [5,40) as integers,
// debt_ratio uniform [0.1,0.9)
func NewReferenceDataset(rng *rand.Rand, n int) *Dataset {
	ds := &Dataset{
		X: make([][contracts.FeatureCount]float64, n),
		Y: make([]float64, n),
	}

	intColumns := []struct {
		col       int
		low, high int
	}{
		{0, 10, 100},
		{1, 5, 90},
		{2, 5, 60},
		{3, 5, 40},
	}
	for _, c := range intColumns {
		for i := 0; i < n; i++ {
			ds.X[i][c.col] = float64(c.low + rng.Intn(c.high-c.low))
		}
	}
	for i := 0; i < n; i++ {
		ds.X[i][4] = 0.1 + rng.Float64()*0.8
	}

	for i := range ds.X {
		ds.Y[i] = ReferenceScore(ds.X[i])
	}
	return ds
}

// Split shuffles indices with rng and returns (train, holdout)
// holdout gets ceil(testFraction*n) samples; train always keeps at least one
func (d *Dataset) Split(rng *rand.Rand, testFraction float64) (*Dataset, *Dataset) {
	n := d.Len()
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}

	perm := rng.Perm(n)
	train := &Dataset{}
	holdout := &Dataset{}
	for k, idx := range perm {
		target := train
		if k < nTest {
			target = holdout
		}
		target.X = append(target.X, d.X[idx])
		target.Y = append(target.Y, d.Y[idx])
	}
	return train, holdout
}
