package mid

import (
	"context"
	"expvar"
	"net/http"
	"runtime"

	"github.com/Time0o/buenzlicoin/foundation/web"
)

// metrics holds the running counters updated by the middleware.
// Defined as expvar integers so they're visible on /debug/vars
// without any extra wiring.
var metrics = struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int
}{
	goroutines: expvar.NewInt("goroutines"),
	requests:   expvar.NewInt("requests"),
	errors:     expvar.NewInt("errors"),
	panics:     expvar.NewInt("panics"),
}

// Metrics updates program counters using the expvar package.
func Metrics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)

			metrics.requests.Add(1)

			if metrics.requests.Value()%100 == 0 {
				metrics.goroutines.Set(int64(runtime.NumGoroutine()))
			}

			if err != nil {
				metrics.errors.Add(1)
			}

			return err
		}

		return h
	}

	return m
}
