package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"run-planner/internal/planner/model"
)

// LocationMapping is the index mapping used by the locations-sync command.
const LocationMapping = `{
  "mappings": {
    "properties": {
      "id":       {"type": "keyword"},
      "name":     {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "addr1":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "addr2":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "suburb":   {"type": "keyword"},
      "state":    {"type": "keyword"},
      "postcode": {"type": "keyword"},
      "lat":      {"type": "float"},
      "lng":      {"type": "float"},
      "inactive": {"type": "boolean"},
      "ord":      {"type": "long"}
    }
  }
}`

// searchSize caps one location search; registries are small enough that
// a postcode or name-fragment filter never comes close.
const searchSize = 1000

// Elastic searches the location registry in an Elasticsearch index.
type Elastic struct {
	client *elasticsearch.Client
	index  string
}

func NewElastic(client *elasticsearch.Client, index string) *Elastic {
	return &Elastic{client: client, index: index}
}

type locationDoc struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Addr1    string  `json:"addr1"`
	Addr2    string  `json:"addr2"`
	Suburb   string  `json:"suburb"`
	State    string  `json:"state"`
	Postcode string  `json:"postcode"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Inactive bool    `json:"inactive"`
	Ord      int     `json:"ord"`
}

func toDoc(l model.Location, ord int) locationDoc {
	return locationDoc{
		ID: l.ID, Name: l.Name, Addr1: l.Address.Addr1, Addr2: l.Address.Addr2,
		Suburb: l.Address.City, State: l.Address.State, Postcode: l.Address.Zip,
		Lat: l.Address.Lat, Lng: l.Address.Lng, Inactive: l.Inactive, Ord: ord,
	}
}

func (d locationDoc) location() model.Location {
	return model.Location{
		ID:   d.ID,
		Name: d.Name,
		Address: model.Address{
			Addr1: d.Addr1, Addr2: d.Addr2, City: d.Suburb, State: d.State, Zip: d.Postcode,
			Lat: d.Lat, Lng: d.Lng,
		},
		Inactive: d.Inactive,
	}
}

// locationQuery renders a filter as a bool query. Semantics follow
// model.LocationFilter.Match.
func locationQuery(f model.LocationFilter) map[string]any {
	var filters []map[string]any
	containsAny := func(fields []string, tokens []string) map[string]any {
		var should []map[string]any
		for _, t := range tokens {
			for _, field := range fields {
				should = append(should, map[string]any{
					"wildcard": map[string]any{
						field: map[string]any{"value": "*" + t + "*", "case_insensitive": true},
					},
				})
			}
		}
		return map[string]any{"bool": map[string]any{"should": should, "minimum_should_match": 1}}
	}

	if f.NameEquals != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{
				"name.keyword": map[string]any{"value": strings.TrimSpace(f.NameEquals), "case_insensitive": true},
			},
		})
	}
	if f.ActiveOnly {
		filters = append(filters, map[string]any{"term": map[string]any{"inactive": false}})
	}
	if f.Postcode != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"postcode": f.Postcode}})
	}
	if len(f.AddressContainsAny) > 0 {
		filters = append(filters, containsAny([]string{"addr1.keyword", "addr2.keyword"}, f.AddressContainsAny))
	}
	if len(f.NameContainsAny) > 0 {
		filters = append(filters, containsAny([]string{"name.keyword"}, f.NameContainsAny))
	}

	query := map[string]any{"match_all": map[string]any{}}
	if len(filters) > 0 {
		query = map[string]any{"bool": map[string]any{"filter": filters}}
	}
	return map[string]any{
		"size":  searchSize,
		"query": query,
		"sort":  []any{map[string]any{"ord": "asc"}},
	}
}

func (e *Elastic) SearchLocations(ctx context.Context, f model.LocationFilter) ([]model.Location, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(locationQuery(f)); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search locations: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search locations: %s: %s", res.Status(), body)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source locationDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	out := make([]model.Location, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		out = append(out, h.Source.location())
	}
	return out, nil
}

// EnsureIndex creates the index with LocationMapping if it does not exist.
func (e *Elastic) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(LocationMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("create index: %s: %s", res.Status(), body)
	}
	return nil
}

// IndexLocations bulk-indexes the registry; list position becomes the sort key
// so searches keep registry order.
func (e *Elastic) IndexLocations(ctx context.Context, locs []model.Location) error {
	if len(locs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, l := range locs {
		meta := map[string]any{"index": map[string]any{"_index": e.index, "_id": l.ID}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(toDoc(l, i)); err != nil {
			return fmt.Errorf("encode location %s: %w", l.ID, err)
		}
	}

	req := esapi.BulkRequest{Body: &buf, Refresh: "true"}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("bulk index: %s: %s", res.Status(), body)
	}

	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string `json:"_id"`
			Error *struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if result.Errors {
		for _, item := range result.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk index %s: %s", op.ID, op.Error.Reason)
				}
			}
		}
	}
	return nil
}
