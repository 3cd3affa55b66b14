package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/web"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type payload struct {
	Name string `json:"name"`
}

func (p payload) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func Test_App(t *testing.T) {
	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	app := web.NewApp(nil, mw("app"))

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		if err != nil {
			return err
		}

		var p payload
		if err := web.Decode(r, &p); err != nil {
			return web.Respond(ctx, w, map[string]string{"error": err.Error()}, http.StatusBadRequest)
		}

		resp := map[string]string{
			"id":      web.Param(r, "id"),
			"name":    p.Name,
			"traceid": v.TraceID,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
	app.Handle(http.MethodPost, "api", "/items/:id", h, mw("route"))

	t.Log("Given the need to route requests through the middleware chain.")
	{
		r := httptest.NewRequest(http.MethodPost, "/api/items/42", strings.NewReader(`{"name":"box"}`))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould get a 200, got %d: %s", failed, w.Code, w.Body.String())
		}
		if body := w.Body.String(); !strings.Contains(body, `"id":"42"`) || !strings.Contains(body, `"name":"box"`) {
			t.Fatalf("\t%s\tShould see the path parameter and the body: %s", failed, body)
		}
		t.Logf("\t%s\tShould see the path parameter and the body.", success)

		if len(order) != 2 || order[0] != "app" || order[1] != "route" {
			t.Fatalf("\t%s\tShould run app middleware before route middleware: %v", failed, order)
		}
		t.Logf("\t%s\tShould run app middleware before route middleware.", success)

		r = httptest.NewRequest(http.MethodPost, "/api/items/42", strings.NewReader(`{}`))
		w = httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould run the model validation, got %d.", failed, w.Code)
		}
		t.Logf("\t%s\tShould run the model validation.", success)
	}
}
