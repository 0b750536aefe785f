// Package ops loads the engine's compile-time-constant overrides from an
// optional JSON file, falling back to defaults sized for a single
// instrument class on one venue.
package ops

import (
	"encoding/json"
	"os"

	"github.com/yanun0323/errors"
)

// Config is the full set of knobs that size the arena, pool, ring, and
// book, plus the synthetic gateway's load profile. Every field has a
// sane default; a JSON file only needs to override what it changes.
type Config struct {
	RingCapacity    int   `json:"ringCapacity"`
	ArenaBytes      int   `json:"arenaBytes"`
	PoolCapacity    int   `json:"poolCapacity"`
	MaxPriceLevels  int   `json:"maxPriceLevels"`
	IDSlots         int   `json:"idSlots"`
	PriceMultiplier int64 `json:"priceMultiplier"`

	MatcherCoreID int  `json:"matcherCoreId"`
	PinMatcher    bool `json:"pinMatcher"`

	Gateway GatewayConfig `json:"gateway"`

	Profiling ProfilingConfig `json:"profiling"`
}

// GatewayConfig controls the synthetic order generator's load profile.
type GatewayConfig struct {
	OrderCount   int     `json:"orderCount"`
	MidPrice     int64   `json:"midPrice"`
	LimitRatio   float64 `json:"limitRatio"`
	MarketRatio  float64 `json:"marketRatio"`
	CancelRatio  float64 `json:"cancelRatio"`
	Seed         int64   `json:"seed"`
}

// ProfilingConfig controls optional continuous profiling.
type ProfilingConfig struct {
	Enabled         bool   `json:"enabled"`
	ApplicationName string `json:"applicationName"`
	ServerAddress   string `json:"serverAddress"`
}

// Default returns the engine's built-in configuration: a 65,536-slot ring,
// an arena large enough for the default pool and book, and the literal
// 70/20/10 limit/market/cancel gateway mix over 200,000 orders.
func Default() Config {
	return Config{
		RingCapacity:    1 << 16,
		ArenaBytes:      256 << 20,
		PoolCapacity:    1 << 20,
		MaxPriceLevels:  20001,
		IDSlots:         1 << 20,
		PriceMultiplier: 10_000,
		MatcherCoreID:   -1,
		PinMatcher:      false,
		Gateway: GatewayConfig{
			OrderCount:  200_000,
			MidPrice:    1_000_000,
			LimitRatio:  0.7,
			MarketRatio: 0.2,
			CancelRatio: 0.1,
			Seed:        1,
		},
	}
}

// Load reads a JSON config file and overlays it onto Default(). An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file").With("path", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config").With("path", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RingCapacity <= 0 || c.RingCapacity&(c.RingCapacity-1) != 0 {
		return errors.Errorf("ringCapacity must be a positive power of two, got %d", c.RingCapacity)
	}
	if c.PoolCapacity <= 0 {
		return errors.Errorf("poolCapacity must be positive, got %d", c.PoolCapacity)
	}
	if c.MaxPriceLevels <= 0 {
		return errors.Errorf("maxPriceLevels must be positive, got %d", c.MaxPriceLevels)
	}
	if c.IDSlots <= 0 || c.IDSlots&(c.IDSlots-1) != 0 {
		return errors.Errorf("idSlots must be a positive power of two, got %d", c.IDSlots)
	}
	if c.PriceMultiplier <= 0 {
		return errors.Errorf("priceMultiplier must be positive, got %d", c.PriceMultiplier)
	}
	total := c.Gateway.LimitRatio + c.Gateway.MarketRatio + c.Gateway.CancelRatio
	if total <= 0 {
		return errors.Errorf("gateway order-kind ratios must sum to a positive value, got %f", total)
	}
	return nil
}
