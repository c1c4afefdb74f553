package analysis

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/omarshaarawi/ffstats/internal/models"
)

// Statistic summarises one resample. It must not keep a reference to sample.
type Statistic func(sample []float64) float64

func Mean(sample []float64) float64 {
	if len(sample) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range sample {
		sum += v
	}
	return sum / float64(len(sample))
}

func Median(sample []float64) float64 {
	n := len(sample)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

type bootstrapConfig struct {
	rng     *rand.Rand
	workers int
}

type BootstrapOption func(*bootstrapConfig)

// WithRand fixes the random source, making results reproducible.
func WithRand(rng *rand.Rand) BootstrapOption {
	return func(c *bootstrapConfig) { c.rng = rng }
}

// WithWorkers splits the resamples across n goroutines, each with its own
// generator seeded from the parent source.
func WithWorkers(n int) BootstrapOption {
	return func(c *bootstrapConfig) { c.workers = n }
}

// Bootstrap draws numSamples resamples of data with replacement, applies
// statistic to each and returns the sorted distribution, its mean and the
// 100*(1-alpha)% percentile confidence interval.
func Bootstrap(data []float64, numSamples int, statistic Statistic, alpha float64, opts ...BootstrapOption) (models.BootstrapResult, error) {
	if len(data) == 0 {
		return models.BootstrapResult{}, fmt.Errorf("bootstrap of an empty sample: %w", ErrDegenerateInput)
	}
	if numSamples < 1 {
		return models.BootstrapResult{}, fmt.Errorf("bootstrap sample count %d: %w", numSamples, ErrInvalidArgument)
	}
	if !(alpha > 0 && alpha < 1) {
		return models.BootstrapResult{}, fmt.Errorf("bootstrap alpha %v outside (0, 1): %w", alpha, ErrInvalidArgument)
	}
	if statistic == nil {
		return models.BootstrapResult{}, fmt.Errorf("bootstrap without a statistic: %w", ErrInvalidArgument)
	}

	cfg := bootstrapConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	workers := max(1, min(cfg.workers, numSamples))

	dist := make([]float64, numSamples)
	if workers == 1 {
		resample(data, dist, statistic, cfg.rng)
	} else {
		chunk := (numSamples + workers - 1) / workers
		var wg sync.WaitGroup
		for start := 0; start < numSamples; start += chunk {
			end := min(start+chunk, numSamples)
			rng := rand.New(rand.NewPCG(cfg.rng.Uint64(), cfg.rng.Uint64()))
			wg.Add(1)
			go func(out []float64, rng *rand.Rand) {
				defer wg.Done()
				resample(data, out, statistic, rng)
			}(dist[start:end], rng)
		}
		wg.Wait()
	}

	sort.Float64s(dist)
	return models.BootstrapResult{
		Distribution: dist,
		Mean:         Mean(dist),
		CILow:        dist[percentileIndex(alpha/2, numSamples)],
		CIHigh:       dist[percentileIndex(1-alpha/2, numSamples)],
		Alpha:        alpha,
		NumSamples:   numSamples,
	}, nil
}

func resample(data, out []float64, statistic Statistic, rng *rand.Rand) {
	sample := make([]float64, len(data))
	for i := range out {
		for j := range sample {
			sample[j] = data[rng.IntN(len(data))]
		}
		out[i] = statistic(sample)
	}
}

func percentileIndex(q float64, n int) int {
	return min(int(math.Floor(q*float64(n))), n-1)
}
