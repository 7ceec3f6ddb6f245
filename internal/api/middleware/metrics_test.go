package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpObservation struct {
	method, route string
	status        int
}

type httpLog struct {
	mu  sync.Mutex
	obs []httpObservation
}

func (l *httpLog) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.obs = append(l.obs, httpObservation{method, route, status})
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	log := &httpLog{}
	r := chi.NewRouter()
	r.Use(Metrics(log))
	r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/implicit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/tasks/123", "/implicit", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, log.obs, 3)
	assert.Equal(t, httpObservation{"GET", "/tasks/{id}", http.StatusTeapot}, log.obs[0])
	assert.Equal(t, httpObservation{"GET", "/implicit", http.StatusOK}, log.obs[1])
	assert.Equal(t, http.StatusNotFound, log.obs[2].status)
	assert.NotEqual(t, "/nowhere", log.obs[2].route)
}
