package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/pkg/logger"
)

// Recovery turns a handler panic into the standard 500 envelope. The panic value stays in the log.
func Recovery(next http.Handler) http.Handler {
	writer := transport.NewBaseHandler(nil)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.From(r.Context()).Error("panic recovered",
				"panic", rec,
				"method", r.Method,
				"url", r.URL.String(),
				"stack", string(debug.Stack()))

			writer.WriteAppError(w, internal.NewInternalError("panic recovered", fmt.Errorf("%v", rec)))
		}()

		next.ServeHTTP(w, r)
	})
}
