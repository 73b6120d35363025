package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// Pinger is satisfied by pgxpool.Pool and database/sql.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabasePing probes connectivity to the database behind p.
func DatabasePing(p Pinger) Check {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Wrap(err, "ping")
		}
		return nil
	}
}

// GoroutineCount fails once the process holds more than limit goroutines,
// which usually means a handler is leaking them.
func GoroutineCount(limit int) Check {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines (limit %d)", n, limit)
		}
		return nil
	}
}

// GCPause fails when any recorded stop-the-world pause exceeded max.
func GCPause(max time.Duration) Check {
	return func(context.Context) error {
		var st debug.GCStats
		debug.ReadGCStats(&st)
		for _, pause := range st.Pause {
			if pause > max {
				return errors.Errorf("GC pause %s (limit %s)", pause, max)
			}
		}
		return nil
	}
}
