package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tenantgate_build_info",
		Help: "Build metadata; value is always 1.",
	}, []string{"version"})

	ready = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tenantgate_ready",
		Help: "Readiness as last observed by the health check (1 ready, 0 not).",
	})

	buildOnce sync.Once
)

// InitBuildInfo registers and sets the build info gauge once.
func InitBuildInfo(version string) {
	buildOnce.Do(func() {
		prometheus.MustRegister(buildInfo, ready)
		buildInfo.WithLabelValues(version).Set(1)
	})
}

// SetReady records the readiness state for scraping.
func SetReady(ok bool) {
	if ok {
		ready.Set(1)
		return
	}
	ready.Set(0)
}
