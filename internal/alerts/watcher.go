package alerts

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/kenisa/raai/internal/store"
)

// LoadFunc supplies the record set for a scan pass. It is called once per
// tick; a failed load skips the pass and keeps the watcher running.
type LoadFunc func() ([]*store.Member, []*store.Log, error)

// Watch scans immediately and then on every interval tick, handing each
// result to sink, until ctx is canceled. The sink runs on the watcher's
// goroutine.
func Watch(ctx context.Context, interval time.Duration, load LoadFunc, sink func([]*Alert)) {
	scan := func() {
		members, logs, err := load()
		if err != nil {
			log.WithError(err).Warn("alert scan skipped, record load failed")
			return
		}
		sink(Scan(members, logs, time.Now()))
	}

	scan()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scan()
		}
	}
}
