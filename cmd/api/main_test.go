package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMountFailRoutes_ReactionsShareFailsMount(t *testing.T) {
	root := chi.NewRouter()

	okHandler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	failRouter := chi.NewRouter()
	failRouter.Get("/", okHandler)
	failRouter.Get("/mine", okHandler)
	failRouter.Get("/{id}", okHandler)

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				t.Fatalf("registering reaction routes panicked: %v", rec)
			}
		}()
		mountFailRoutes(root, failRouter, func(r chi.Router) {
			r.Put("/{id}/reaction", okHandler)
			r.Get("/{id}/reactions", okHandler)
		})
	}()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/fails/"},
		{http.MethodGet, "/fails/mine"},
		{http.MethodGet, "/fails/123"},
		{http.MethodPut, "/fails/123/reaction"},
		{http.MethodGet, "/fails/123/reactions"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			root.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rr.Code)
			}
		})
	}
}
