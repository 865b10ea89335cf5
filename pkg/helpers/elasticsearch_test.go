package helpers

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func esServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewESClientRequiresAddress(t *testing.T) {
	_, err := NewESClient(ESOptions{})
	assert.Error(t, err)
}

func TestNewESClientSendsBasicAuth(t *testing.T) {
	var user, pass string
	srv := esServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		_, _ = w.Write([]byte(`{}`))
	})
	es, err := NewESClient(ESOptions{Addrs: []string{srv.URL}, Username: "elastic", Password: "changeme"})
	require.NoError(t, err)

	res, err := es.Info()
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "elastic", user)
	assert.Equal(t, "changeme", pass)
}

func TestNewESClientGivesUpAfterRequestTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := esServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	})
	es, err := NewESClient(ESOptions{Addrs: []string{srv.URL}, RequestTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = es.Info()
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
