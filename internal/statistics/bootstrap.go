package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval is a percentile bootstrap interval around an estimate.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Estimate        float64 `json:"estimate"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// DefaultSeed keeps report output reproducible between invocations.
const DefaultSeed int64 = 1

// BootstrapCI computes a bootstrap confidence interval for the mean of
// values. confidenceLevel should be in (0, 1), e.g. 0.95. Fewer than 2
// values yields a degenerate interval at the mean.
func BootstrapCI(values []float64, confidenceLevel float64) ConfidenceInterval {
	return BootstrapCIWithSeed(values, confidenceLevel, -1)
}

// BootstrapCIWithSeed is like BootstrapCI but accepts a seed for reproducibility.
// A negative seed uses a non-deterministic source.
func BootstrapCIWithSeed(values []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	m := mean(values)
	if len(values) < 2 {
		return degenerate(m, confidenceLevel)
	}

	rng := newRand(seed)
	boot := make([]float64, DefaultBootstrapIterations)
	sample := make([]float64, len(values))
	for i := range boot {
		resample(rng, values, sample)
		boot[i] = mean(sample)
	}
	return percentile(boot, m, confidenceLevel)
}

// BootstrapDiffCIWithSeed computes a bootstrap confidence interval for
// mean(target) - mean(baseline), resampling each side independently.
// Either side holding fewer than 2 values yields a degenerate interval at
// the observed difference.
func BootstrapDiffCIWithSeed(baseline, target []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	diff := mean(target) - mean(baseline)
	if len(baseline) < 2 || len(target) < 2 {
		return degenerate(diff, confidenceLevel)
	}

	rng := newRand(seed)
	boot := make([]float64, DefaultBootstrapIterations)
	sa := make([]float64, len(baseline))
	sb := make([]float64, len(target))
	for i := range boot {
		resample(rng, baseline, sa)
		resample(rng, target, sb)
		boot[i] = mean(sb) - mean(sa)
	}
	return percentile(boot, diff, confidenceLevel)
}

// IsSignificant returns true if the confidence interval does not contain zero,
// indicating statistical significance at the given confidence level.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

func newRand(seed int64) *rand.Rand {
	if seed < 0 {
		seed = rand.Int63()
	}
	return rand.New(rand.NewSource(seed))
}

func resample(rng *rand.Rand, src, dst []float64) {
	for j := range dst {
		dst[j] = src[rng.Intn(len(src))]
	}
}

func degenerate(v, confidenceLevel float64) ConfidenceInterval {
	return ConfidenceInterval{Lower: v, Upper: v, Estimate: v, ConfidenceLevel: confidenceLevel}
}

// percentile sorts boot in place and reads the interval bounds from it.
func percentile(boot []float64, estimate, confidenceLevel float64) ConfidenceInterval {
	sort.Float64s(boot)
	iters := len(boot)
	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}
	return ConfidenceInterval{
		Lower:           boot[loIdx],
		Upper:           boot[hiIdx],
		Estimate:        estimate,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
