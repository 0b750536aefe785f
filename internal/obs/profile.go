package obs

import (
	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/errors"
)

// ProfileConfig controls whether and where continuous profiling runs
// around the matcher loop.
type ProfileConfig struct {
	Enabled         bool
	ApplicationName string
	ServerAddress   string
	Tags            map[string]string
}

// StartProfiling starts a pyroscope session when enabled, returning a
// no-op stop function otherwise so callers never need to branch.
func StartProfiling(cfg ProfileConfig) (stop func(), err error) {
	if !cfg.Enabled {
		return func() {}, nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Tags:            cfg.Tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return func() {}, errors.Wrap(err, "start profiler")
	}
	return func() { _ = profiler.Stop() }, nil
}
