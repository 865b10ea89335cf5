package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

// fakeES answers the handful of endpoints CourseIndex calls.
func fakeES(t *testing.T, docs map[string]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		switch {
		case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "_doc":
			var doc map[string]any
			b, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(b, &doc))
			docs[parts[2]] = doc
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		case r.Method == http.MethodDelete && len(parts) == 3:
			if _, ok := docs[parts[2]]; !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"result":"not_found"}`))
				return
			}
			delete(docs, parts[2])
			_, _ = w.Write([]byte(`{"result":"deleted"}`))
		case len(parts) == 2 && parts[1] == "_search":
			var body struct {
				Query struct {
					MultiMatch struct {
						Query string `json:"query"`
					} `json:"multi_match"`
				} `json:"query"`
			}
			b, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(b, &body))
			hits := []map[string]any{}
			for id, d := range docs {
				if strings.Contains(strings.ToLower(d["title"].(string)), strings.ToLower(body.Query.MultiMatch.Query)) {
					hits = append(hits, map[string]any{"_id": id})
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": hits}})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func TestCourseIndexRoundTrip(t *testing.T) {
	docs := map[string]map[string]any{}
	srv := fakeES(t, docs)
	defer srv.Close()

	es, err := helpers.NewESClient(helpers.ESOptions{Addrs: []string{srv.URL}, RequestTimeout: RequestTimeout})
	require.NoError(t, err)
	idx := NewCourseIndex(es, "courses")
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, &entity.Course{ID: "c1", Title: "Distributed Systems", Description: "raft"}))
	require.NoError(t, idx.Index(ctx, &entity.Course{ID: "c2", Title: "Compilers", Description: "parsing"}))
	assert.Equal(t, "Compilers", docs["c2"]["title"])

	ids, err := idx.Search(ctx, "distributed", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)

	require.NoError(t, idx.Remove(ctx, "c1"))
	require.NoError(t, idx.Remove(ctx, "c1"))
	_, ok := docs["c1"]
	assert.False(t, ok)
}
