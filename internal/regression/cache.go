package regression

import (
	"sync"

	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// TrainFunc fits a model; swapped in tests
type TrainFunc func(cfg TrainConfig, log *logger.Logger) (*Model, error)

// Cache fits the model exactly once per process and hands out the same instance
// ⭐ SSOT: 프로세스당 단 한 번 학습, 이후 읽기 전용
type Cache struct {
	cfg   TrainConfig
	log   *logger.Logger
	train TrainFunc

	once  sync.Once
	model *Model
	err   error
}

// NewCache creates a lazily initialized model cache
func NewCache(cfg TrainConfig, log *logger.Logger) *Cache {
	return &Cache{
		cfg:   cfg,
		log:   log,
		train: Train,
	}
}

// WithTrainFunc replaces the training function; must be called before Get
func (c *Cache) WithTrainFunc(fn TrainFunc) *Cache {
	c.train = fn
	return c
}

// Get returns the fitted model, training it on first use
// A failed fit is cached too; the process must be restarted with a fixed config.
func (c *Cache) Get() (*Model, error) {
	c.once.Do(func() {
		c.model, c.err = c.train(c.cfg, c.log)
	})
	return c.model, c.err
}

// Warm fits the model eagerly, typically at process start
func (c *Cache) Warm() error {
	_, err := c.Get()
	return err
}
