package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
)

// RequestTimeout is the deadline of every index call.
const RequestTimeout = 3 * time.Second

// CourseIndex keeps course title and description searchable in Elasticsearch.
type CourseIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewCourseIndex(es *elasticsearch.Client, index string) *CourseIndex {
	return &CourseIndex{ES: es, IndexName: index}
}

type courseDoc struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProfessorID string    `json:"professor_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ci *CourseIndex) Index(ctx context.Context, c *entity.Course) error {
	b, err := json.Marshal(courseDoc{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		ProfessorID: c.ProfessorID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: ci.IndexName, DocumentID: c.ID, Body: bytes.NewReader(b), Refresh: "false"}
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	res, err := req.Do(ctx, ci.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", c.ID, res.Status())
	}
	return nil
}

func (ci *CourseIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: ci.IndexName, DocumentID: id}
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	res, err := req.Do(ctx, ci.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over title and description and returns course ids.
func (ci *CourseIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	b, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	res, err := ci.ES.Search(
		ci.ES.Search.WithContext(ctx),
		ci.ES.Search.WithIndex(ci.IndexName),
		ci.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
