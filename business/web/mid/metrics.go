package mid

import (
	"context"
	"expvar"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/web"
)

// Counters published on the debug mux under /debug/vars.
var (
	requests = expvar.NewInt("requests")
	failures = expvar.NewInt("errors")
	panics   = expvar.NewInt("panics")
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			requests.Add(1)
			if err != nil {
				failures.Add(1)
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}

func countPanic() {
	panics.Add(1)
}
