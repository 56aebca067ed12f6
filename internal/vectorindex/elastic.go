package vectorindex

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"docvault-go/internal/config"
	"docvault-go/internal/errs"
	"docvault-go/internal/model"
	"docvault-go/pkg/log"
)

// Elastic stores chunks in an Elasticsearch index with a dense_vector
// field and answers queries with kNN search.
type Elastic struct {
	client    *elasticsearch.Client
	indexName string
	dims      int
}

// chunkMapping is the index mapping; the vector field dimension is filled
// in from the embedding configuration.
const chunkMapping = `{
	"mappings": {
		"properties": {
			"chunk_id": { "type": "keyword" },
			"source": { "type": "keyword" },
			"ordinal": { "type": "integer" },
			"kind": { "type": "keyword" },
			"mtime": { "type": "long" },
			"text_content": { "type": "text" },
			"vector": {
				"type": "dense_vector",
				"dims": %d,
				"index": true,
				"similarity": "cosine"
			},
			"model_version": { "type": "keyword" }
		}
	}
}`

// NewElastic connects to Elasticsearch and creates the chunk index if it
// does not exist yet.
func NewElastic(cfg config.ElasticsearchConfig, dims int) (*Elastic, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Addresses},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, err
	}

	e := &Elastic{client: client, indexName: cfg.IndexName, dims: dims}
	if err := e.createIndexIfNotExists(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Elastic) createIndexIfNotExists() error {
	res, err := e.client.Indices.Exists([]string{e.indexName})
	if err != nil {
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("index '%s' already exists", e.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status %d checking index existence", res.StatusCode)
	}

	mapping := fmt.Sprintf(chunkMapping, e.dims)
	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("elasticsearch returned an error creating index: %s", res.String())
	}
	log.Infof("index '%s' created", e.indexName)
	return nil
}

func (e *Elastic) Upsert(ctx context.Context, chunks []model.IndexedChunk) error {
	for _, c := range chunks {
		docBytes, err := json.Marshal(c)
		if err != nil {
			return err
		}
		req := esapi.IndexRequest{
			Index:      e.indexName,
			DocumentID: c.ChunkID,
			Body:       bytes.NewReader(docBytes),
			Refresh:    "true",
		}
		res, err := req.Do(ctx, e.client)
		if err != nil {
			return &errs.IndexUnavailableError{Op: "upsert", Err: err}
		}
		res.Body.Close()
		if res.IsError() {
			return &errs.IndexUnavailableError{Op: "upsert", Err: fmt.Errorf("status %s", res.Status())}
		}
	}
	return nil
}

func (e *Elastic) DeleteBySource(ctx context.Context, source string) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"source": source},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return err
	}

	res, err := e.client.DeleteByQuery(
		[]string{e.indexName},
		&buf,
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return &errs.IndexUnavailableError{Op: "delete", Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return &errs.IndexUnavailableError{Op: "delete", Err: fmt.Errorf("status %s", res.Status())}
	}
	return nil
}

func (e *Elastic) Query(ctx context.Context, vector []float32, k int, filter Filter) ([]model.RawMatch, error) {
	knn := map[string]interface{}{
		"field":          "vector",
		"query_vector":   vector,
		"k":              k,
		"num_candidates": k * 10,
	}
	if clauses := filterClauses(filter); len(clauses) > 0 {
		knn["filter"] = map[string]interface{}{
			"bool": map[string]interface{}{"filter": clauses},
		}
	}
	esQuery := map[string]interface{}{
		"knn":     knn,
		"size":    k,
		"_source": map[string]interface{}{"excludes": []string{"vector"}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, &errs.IndexUnavailableError{Op: "query", Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, &errs.IndexUnavailableError{
			Op:  "query",
			Err: fmt.Errorf("status %s: %s", res.Status(), string(bodyBytes)),
		}
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.IndexedChunk `json:"_source"`
				Score  float64            `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	matches := make([]model.RawMatch, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		matches = append(matches, model.RawMatch{
			ChunkID:  hit.Source.ChunkID,
			Source:   hit.Source.Source,
			Ordinal:  hit.Source.Ordinal,
			Kind:     hit.Source.Kind,
			ModTime:  time.Unix(hit.Source.ModTime, 0),
			Text:     hit.Source.TextContent,
			Distance: scoreToDistance(hit.Score),
		})
	}
	return matches, nil
}

func filterClauses(filter Filter) []map[string]interface{} {
	var clauses []map[string]interface{}
	if len(filter.Kinds) > 0 {
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{"kind": filter.Kinds},
		})
	}
	if !filter.Oldest.IsZero() {
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{
				"mtime": map[string]interface{}{"gte": filter.Oldest.Unix()},
			},
		})
	}
	return clauses
}

// scoreToDistance inverts the similarity-shaped kNN _score (in (0,1]) back
// into a distance, so that 1/(1+distance) reproduces the score and the
// ordering by ascending distance matches the index ordering.
func scoreToDistance(score float64) float64 {
	if score <= 0 {
		return 1e9
	}
	return 1/score - 1
}
