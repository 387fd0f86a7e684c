package mid

import (
	"context"
	"net/http"

	"github.com/Time0o/buenzlicoin/foundation/web"
	"go.uber.org/zap"
)

// Errors handles errors coming out of the call chain. Every error is
// logged. Shutdown errors are passed on to the web framework's
// shutdown path; trusted application errors are answered with their
// own message and status; anything else is answered with a 500.
func Errors(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if err := handler(ctx, w, r); err != nil {
				v, verr := web.GetValues(ctx)
				traceID := ""
				if verr == nil {
					traceID = v.TraceID
				}

				log.Errorw("ERROR", "traceid", traceID, "message", err)

				if web.IsShutdown(err) {
					return err
				}

				if te := web.GetTrustedError(err); te != nil {
					if respErr := web.RespondError(ctx, w, te.Error(), te.Status); respErr != nil {
						return respErr
					}
					return nil
				}

				if respErr := web.RespondError(ctx, w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError); respErr != nil {
					return respErr
				}
			}

			return nil
		}

		return h
	}

	return m
}
