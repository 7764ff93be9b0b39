package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/dilution-calc/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/product/{name}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "name") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/product/Bleach", "/api/product/Neem", "/api/product/missing", "/nowhere"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	tests := []struct {
		route  string
		status string
		want   float64
	}{
		{"/api/product/{name}", "200", 2},
		{"/api/product/{name}", "404", 1},
		{"unmatched", "404", 1},
	}

	for _, tt := range tests {
		got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, tt.route, tt.status))
		if got != tt.want {
			t.Errorf("requests{route=%q,status=%s} = %v, want %v", tt.route, tt.status, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.HTTPDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}
