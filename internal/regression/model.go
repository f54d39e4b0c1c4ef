package regression

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// TrainConfig controls fitting of the reference model
// ⭐ SSOT: 동일 Seed → 동일 파라미터 → 동일 예측
type TrainConfig struct {
	Seed         int64
	Samples      int
	Hidden       []int
	Epochs       int
	BatchSize    int
	LearningRate float64
	TestFraction float64
}

// DefaultTrainConfig returns the reference training setup
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Seed:         42,
		Samples:      100,
		Hidden:       []int{16, 8},
		Epochs:       500,
		BatchSize:    32,
		LearningRate: 0.01,
		TestFraction: 0.2,
	}
}

// Validate checks the training setup
func (c TrainConfig) Validate() error {
	if c.Samples < 2 {
		return contracts.ValidationError{Field: "model.samples", Message: "must be >= 2"}
	}
	if c.Epochs <= 0 {
		return contracts.ValidationError{Field: "model.epochs", Message: "must be > 0"}
	}
	if c.BatchSize <= 0 {
		return contracts.ValidationError{Field: "model.batch_size", Message: "must be > 0"}
	}
	if c.LearningRate <= 0 {
		return contracts.ValidationError{Field: "model.learning_rate", Message: "must be > 0"}
	}
	if c.TestFraction < 0 || c.TestFraction >= 1 {
		return contracts.ValidationError{Field: "model.test_fraction", Message: "must be in [0, 1)"}
	}
	if len(c.Hidden) == 0 {
		return contracts.ValidationError{Field: "model.hidden", Message: "at least one hidden layer required"}
	}
	return nil
}

// TrainingReport summarizes a fit
type TrainingReport struct {
	Seed         int64         `json:"seed"`
	TrainSamples int           `json:"train_samples"`
	TestSamples  int           `json:"test_samples"`
	InitialLoss  float64       `json:"initial_loss"`
	FinalLoss    float64       `json:"final_loss"`
	HoldoutLoss  float64       `json:"holdout_loss"`
	Duration     time.Duration `json:"duration"`
}

// Model is a fitted standardizer + network pair; read-only after Train
type Model struct {
	scaler *Standardizer
	net    *network
	report TrainingReport
}

// Train fits the standardizer and network on the reference dataset
func Train(cfg TrainConfig, log *logger.Logger) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	rng := rand.New(rand.NewSource(cfg.Seed))
	ds := NewReferenceDataset(rng, cfg.Samples)

	// scaler is fit on the full dataset before the split
	scaler, err := FitStandardizer(ds.X)
	if err != nil {
		return nil, err
	}

	train, holdout := ds.Split(rng, cfg.TestFraction)
	trainX, err := standardizeAll(scaler, train.X)
	if err != nil {
		return nil, err
	}
	holdoutX, err := standardizeAll(scaler, holdout.X)
	if err != nil {
		return nil, err
	}

	net := newNetwork(rng, contracts.FeatureCount, cfg.Hidden)
	initial := net.mse(trainX, train.Y)

	order := make([]int, len(trainX))
	for i := range order {
		order[i] = i
	}
	batchX := make([][]float64, 0, cfg.BatchSize)
	batchY := make([]float64, 0, cfg.BatchSize)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for startIdx := 0; startIdx < len(order); startIdx += cfg.BatchSize {
			end := startIdx + cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			batchX = batchX[:0]
			batchY = batchY[:0]
			for _, idx := range order[startIdx:end] {
				batchX = append(batchX, trainX[idx])
				batchY = append(batchY, train.Y[idx])
			}
			net.trainBatch(batchX, batchY, cfg.LearningRate)
		}
	}

	m := &Model{
		scaler: scaler,
		net:    net,
		report: TrainingReport{
			Seed:         cfg.Seed,
			TrainSamples: train.Len(),
			TestSamples:  holdout.Len(),
			InitialLoss:  initial,
			FinalLoss:    net.mse(trainX, train.Y),
			HoldoutLoss:  net.mse(holdoutX, holdout.Y),
			Duration:     time.Since(start),
		},
	}

	if log != nil {
		log.WithFields(map[string]interface{}{
			"seed":        m.report.Seed,
			"epochs":      cfg.Epochs,
			"train":       m.report.TrainSamples,
			"holdout":     m.report.TestSamples,
			"initial_mse": m.report.InitialLoss,
			"final_mse":   m.report.FinalLoss,
			"holdout_mse": m.report.HoldoutLoss,
			"duration_ms": m.report.Duration.Milliseconds(),
		}).Info("Regression model fitted")
	}
	return m, nil
}

// Report returns the training summary
func (m *Model) Report() TrainingReport {
	return m.report
}

// Standardizer returns the fitted standardizer
func (m *Model) Standardizer() *Standardizer {
	return m.scaler
}

// Predict returns the unbounded raw score for f
func (m *Model) Predict(f contracts.FeatureVector) (float64, error) {
	if m == nil || m.net == nil {
		return 0, fmt.Errorf("%w: regression model not fitted", contracts.ErrNotConfigured)
	}
	x, err := m.scaler.Transform(f.Values())
	if err != nil {
		return 0, err
	}
	return m.net.predict(x[:]), nil
}

// Score returns the prediction clipped to [0,100]
func (m *Model) Score(f contracts.FeatureVector) (raw, score float64, err error) {
	raw, err = m.Predict(f)
	if err != nil {
		return 0, 0, err
	}
	if math.IsNaN(raw) {
		return raw, 0, nil
	}
	return raw, math.Max(0, math.Min(100, raw)), nil
}

func standardizeAll(s *Standardizer, rows [][contracts.FeatureCount]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		x, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = x[:]
	}
	return out, nil
}
