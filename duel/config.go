package duel

import "fmt"

// Config holds the tunable constants of the selection and feedback rules.
type Config struct {
	// Expected-cost scoring
	Penalty        float64 `yaml:"penalty" env:"PENALTY"`
	SafeCostMin    float64 `yaml:"safe_cost_min" env:"SAFE_COST_MIN"`
	SafeCostMax    float64 `yaml:"safe_cost_max" env:"SAFE_COST_MAX"`
	SafeBonus      float64 `yaml:"safe_bonus" env:"SAFE_BONUS"`
	ViabilityFloor float64 `yaml:"viability_floor" env:"VIABILITY_FLOOR"`
	TopK           int     `yaml:"top_k" env:"TOP_K"`

	// Probability shaping
	ProbabilityCap  float64 `yaml:"probability_cap" env:"PROBABILITY_CAP"`
	FallbackSafe    float64 `yaml:"fallback_safe" env:"FALLBACK_SAFE"`
	FallbackDefault float64 `yaml:"fallback_default" env:"FALLBACK_DEFAULT"`

	// Usage inflation: cost × (1 + min(UsageCap, uses × UsageStep))
	UsageStep float64 `yaml:"usage_step" env:"USAGE_STEP"`
	UsageCap  float64 `yaml:"usage_cap" env:"USAGE_CAP"`

	// Learned cost adjustment
	LearningRate float64 `yaml:"learning_rate" env:"LEARNING_RATE"`
	DecayFactor  float64 `yaml:"decay_factor" env:"DECAY_FACTOR"`

	// Relationship matrix
	PairReward     float64 `yaml:"pair_reward" env:"PAIR_REWARD"`
	ClusterReward  float64 `yaml:"cluster_reward" env:"CLUSTER_REWARD"`
	AffinityWeight float64 `yaml:"affinity_weight" env:"AFFINITY_WEIGHT"`
	ClusterBonus   float64 `yaml:"cluster_bonus" env:"CLUSTER_BONUS"`
	AffinityPrior  float64 `yaml:"affinity_prior" env:"AFFINITY_PRIOR"`

	// Catalogs at least this long are scored concurrently (0 disables).
	ParallelThreshold int `yaml:"parallel_threshold" env:"PARALLEL_THRESHOLD"`
}

// DefaultConfig returns the constants the engine was tuned with.
func DefaultConfig() Config {
	return Config{
		Penalty:        30,
		SafeCostMin:    17,
		SafeCostMax:    32,
		SafeBonus:      1.2,
		ViabilityFloor: 0.4,
		TopK:           3,

		ProbabilityCap:  0.95,
		FallbackSafe:    0.7,
		FallbackDefault: 0.5,

		UsageStep: 0.1,
		UsageCap:  0.3,

		LearningRate: 0.3,
		DecayFactor:  0.95,

		PairReward:     1,
		ClusterReward:  0.2,
		AffinityWeight: 2,
		ClusterBonus:   2,

		ParallelThreshold: 64,
	}
}

func (c Config) validate() error {
	if c.Penalty < 0 {
		return ErrInvalidConfig("Penalty must be >= 0")
	}
	if c.SafeCostMin > c.SafeCostMax {
		return ErrInvalidConfig(fmt.Sprintf("safe cost range [%g,%g] is empty", c.SafeCostMin, c.SafeCostMax))
	}
	if c.SafeBonus <= 0 {
		return ErrInvalidConfig("SafeBonus must be > 0")
	}
	if c.TopK <= 0 {
		return ErrInvalidConfig("TopK must be > 0")
	}
	if c.ProbabilityCap <= 0 || c.ProbabilityCap > 1 {
		return ErrInvalidConfig("ProbabilityCap must be in (0,1]")
	}
	if c.FallbackSafe < 0 || c.FallbackSafe > 1 || c.FallbackDefault < 0 || c.FallbackDefault > 1 {
		return ErrInvalidConfig("fallback probabilities must be in [0,1]")
	}
	if c.UsageStep < 0 || c.UsageCap < 0 {
		return ErrInvalidConfig("usage inflation must be >= 0")
	}
	if c.DecayFactor < 0 || c.DecayFactor > 1 {
		return ErrInvalidConfig(fmt.Sprintf("DecayFactor %g outside [0,1]", c.DecayFactor))
	}
	if c.ParallelThreshold < 0 {
		return ErrInvalidConfig("ParallelThreshold must be >= 0")
	}
	return nil
}

// Validate reports the first invalid setting, if any.
func (c Config) Validate() error { return c.validate() }

func (c Config) inSafeRange(cost float64) bool {
	return cost >= c.SafeCostMin && cost <= c.SafeCostMax
}
