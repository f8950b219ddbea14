package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQueryCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_op"))

	ObserveQuery("test_op", time.Now(), nil)
	ObserveQuery("test_op", time.Now(), errors.New("boom"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_op"))
	if after-before != 1 {
		t.Errorf("Expected error counter to increase by 1, but it increased by %v", after-before)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/things/{id}", "418"))

	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/things/{id}", "418"))
	if after-before != 1 {
		t.Errorf("Expected request counter for route pattern to increase by 1, got %v", after-before)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveQuery("exposed_op", time.Now(), nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, but got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "todoagenda_db_query_duration_seconds") {
		t.Error("Expected exposition to contain todoagenda_db_query_duration_seconds")
	}
}
