package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "xhub/internal/common/errors"
	"xhub/internal/common/logging"
)

// Recovery turns a panic in next into a logged 500. Panics carrying an
// AppError keep their type in the log; an unconfigured verifier shows up
// as a precondition error.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}

			logging.GetGlobalLogger().WithContext(r.Context()).Error("Handler panicked", err,
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("error_type", string(apperrors.GetType(err))),
				logging.String("stack", string(debug.Stack())),
			)

			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
