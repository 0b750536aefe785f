// Package report prints the engine's final run summary: throughput,
// book state, and the infrastructure counters that double as a
// zero-alloc/lock-free sanity check.
package report

import (
	"fmt"
	"time"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/logs"

	"matchcore/internal/arena"
	"matchcore/internal/book"
	"matchcore/internal/obs"
)

const throughputTargetOpsPerSec = 500_000

// Params bundles everything the report needs to read at shutdown.
type Params struct {
	Metrics         *obs.Metrics
	Arena           *arena.Arena
	Book            *book.OrderBook
	Elapsed         time.Duration
	PriceMultiplier int64
}

// Print writes the final run summary to the log, in the teacher's
// structured-logging style rather than raw stdout.
func Print(p Params) {
	snap := p.Metrics.Snapshot()
	elapsedSeconds := p.Elapsed.Seconds()

	var throughput float64
	if elapsedSeconds > 0 {
		throughput = float64(snap.OrdersProcessed) / elapsedSeconds
	}
	var avgLatency time.Duration
	if throughput > 0 {
		avgLatency = time.Duration(1e9 / throughput)
	}

	logs.Info("================ MATCHING ENGINE FINAL REPORT ================")
	logs.Infof("orders received=%d processed=%d total_fills=%d", snap.OrdersReceived, snap.OrdersProcessed, snap.TotalFills)
	logs.Infof("elapsed=%.2fs throughput=%.0f ops/s avg_latency=%s", elapsedSeconds, throughput, avgLatency)
	logs.Infof("ring_buffer_full=%d pool_exhausted=%d cancels_applied=%d cancels_rejected=%d",
		snap.RingFullCount, snap.PoolExhausted, snap.CancelsApplied, snap.CancelsRejected)
	logs.Infof("arena used=%dB capacity=%dB", p.Arena.Used(), p.Arena.Cap())

	if bid, ok := p.Book.BestBid(); ok {
		logs.Infof("best bid=%s", formatPrice(bid, p.PriceMultiplier))
	} else {
		logs.Info("best bid=<none>")
	}
	if ask, ok := p.Book.BestAsk(); ok {
		logs.Infof("best ask=%s", formatPrice(ask, p.PriceMultiplier))
	} else {
		logs.Info("best ask=<none>")
	}

	if throughput >= throughputTargetOpsPerSec {
		logs.Info("throughput target (500K ops/s): PASSED")
	} else {
		logs.Infof("throughput target (500K ops/s): BELOW TARGET (%.0f ops/s)", throughput)
	}
	if snap.PoolExhausted == 0 {
		logs.Info("zero-alloc hot path: PASSED")
	} else {
		logs.Info("zero-alloc hot path: POOL EXHAUSTION DETECTED")
	}
	logs.Info("================================================================")
}

// formatPrice renders a fixed-point price using the decimal library rather
// than hand-rolled integer division, so display formatting stays correct
// under arbitrary PriceMultiplier configurations.
func formatPrice(fixedPrice, priceMultiplier int64) string {
	if priceMultiplier <= 0 {
		return fmt.Sprintf("%d", fixedPrice)
	}
	d := decimal.NewFromInt(fixedPrice).Div(decimal.NewFromInt(priceMultiplier))
	return d.StringFixed(4)
}
