// Command matcher runs the single-venue limit order matching engine:
// a pinned matcher goroutine draining a lock-free ring, fed by a
// synthetic gateway simulator, reporting throughput and book state on
// exit.
package main

import (
	"flag"
	"time"

	"github.com/yanun0323/logs"

	"matchcore/internal/affinity"
	"matchcore/internal/arena"
	"matchcore/internal/book"
	"matchcore/internal/engine"
	"matchcore/internal/gateway"
	"matchcore/internal/obs"
	"matchcore/internal/ops"
	"matchcore/internal/pool"
	"matchcore/internal/report"
	"matchcore/internal/ring"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file overriding engine defaults")
	flag.Parse()

	cfg, err := ops.Load(*configPath)
	if err != nil {
		logs.Errorf("config load failed: %+v", err)
		return
	}

	stopProfiling, err := obs.StartProfiling(obs.ProfileConfig{
		Enabled:         cfg.Profiling.Enabled,
		ApplicationName: cfg.Profiling.ApplicationName,
		ServerAddress:   cfg.Profiling.ServerAddress,
		Tags:            map[string]string{"component": "matcher"},
	})
	if err != nil {
		logs.Errorf("profiler start failed: %+v", err)
		return
	}
	defer stopProfiling()

	logs.Infof("allocating arena (%d MB)", cfg.ArenaBytes/(1<<20))
	a := arena.New(cfg.ArenaBytes)

	logs.Infof("creating order pool (%d slots)", cfg.PoolCapacity)
	orderPool := pool.New[book.Order](a, cfg.PoolCapacity)

	logs.Infof("creating inbound ring (capacity %d)", cfg.RingCapacity)
	inbound := ring.New[book.OrderMessage](a, cfg.RingCapacity)

	logs.Infof("creating order book (%d price levels, %d id slots)", cfg.MaxPriceLevels, cfg.IDSlots)
	ob := book.New(a, orderPool, book.Config{
		MaxPriceLevels:  cfg.MaxPriceLevels,
		IDSlots:         cfg.IDSlots,
		PriceMultiplier: cfg.PriceMultiplier,
	})

	logs.Infof("arena used after init: %d / %d bytes", a.Used(), a.Cap())

	metrics := obs.NewMetrics()
	matcher := engine.New(ob, orderPool, inbound, metrics)

	matcherReady := make(chan struct{})
	matcherDone := make(chan struct{})
	go func() {
		if cfg.PinMatcher {
			if err := affinity.PinCurrentThread(cfg.MatcherCoreID); err != nil {
				logs.Errorf("matcher pinning failed, continuing unpinned: %+v", err)
			}
		}
		close(matcherReady)
		matcher.Run()
		close(matcherDone)
	}()
	<-matcherReady
	time.Sleep(50 * time.Millisecond)

	logs.Infof("starting gateway simulator (%d orders)", cfg.Gateway.OrderCount)
	sim := gateway.New(cfg.Gateway, orderPool, inbound, metrics, func() bool { return true })

	start := time.Now()
	sim.Run()

	drainUntilEmpty(inbound, 100*time.Millisecond)
	matcher.Stop()
	<-matcherDone
	elapsed := time.Since(start)

	report.Print(report.Params{
		Metrics:         metrics,
		Arena:           a,
		Book:            ob,
		Elapsed:         elapsed,
		PriceMultiplier: cfg.PriceMultiplier,
	})
}

// drainUntilEmpty gives the matcher a grace period to empty the ring on
// its own before Stop is requested, so the run's tail end doesn't race
// a still-busy consumer. It never blocks past timeout: a ring that is
// still non-empty when it expires is still drained by the matcher's final
// drain pass, which Run makes after Stop flips the "running" flag.
func drainUntilEmpty(r *ring.Ring[book.OrderMessage], timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for r.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}
