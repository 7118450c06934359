package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"invoicewa/internal/metrics"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestObservabilityPassesThrough(t *testing.T) {
	metrics.GetRegistry().Reset()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	handler := Observability(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/schedules", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	counters := metrics.GetRegistry().Snapshot()["counters"].(map[string]*metrics.Metric)
	assert.Contains(t, counters, "http_requests_total_endpoint:/schedules_method:POST")
}

func TestObservabilityCountsErrors(t *testing.T) {
	metrics.GetRegistry().Reset()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	handler := Observability(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	counters := metrics.GetRegistry().Snapshot()["counters"].(map[string]*metrics.Metric)
	assert.Contains(t, counters, "http_errors_total_status:500")
}
