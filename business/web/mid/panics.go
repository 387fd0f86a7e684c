package mid

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Time0o/buenzlicoin/foundation/web"
)

// Panics recovers from panics in the handler chain and converts them
// into errors so the rest of the middleware stack can respond and log
// normally instead of crashing the process.
func Panics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					metrics.panics.Add(1)
					err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, debug.Stack())
				}
			}()

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
