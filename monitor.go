package homepage

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scubides/homepage/state"
)

// CacheStats sums the content cache counters of every live session.
func (a *App) CacheStats() state.CacheStats {
	var total state.CacheStats
	a.Sessions.Each(func(s *Session) {
		st := s.Store.CacheStats()
		total.Hits += st.Hits
		total.Misses += st.Misses
	})
	return total
}

// startCacheMonitor logs the aggregate cache hit rate every interval while
// there is traffic.
func (a *App) startCacheMonitor(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		var last state.CacheStats
		for {
			select {
			case <-ticker.C:
				st := a.CacheStats()
				if st == last {
					continue
				}
				last = st
				a.Logger.Info("content cache",
					zap.Int("sessions", a.Sessions.Len()),
					zap.Int64("hits", st.Hits),
					zap.Int64("misses", st.Misses),
					zap.Float64("hit_rate", st.HitRate()),
				)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
