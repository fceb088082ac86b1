package searchidx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/servicepulse/datalayer/domain"
)

// SearchTickets runs a full-text/faceted query over the ticket index.
func (i *Index) SearchTickets(ctx context.Context, query string, filters domain.SearchFilters, opts domain.SearchOptions) (*domain.SearchResult, error) {
	return i.search(ctx, i.ticketIndex(), buildQuery(query, ticketFields, filters, opts))
}

// SearchArticles runs a full-text/faceted query over the knowledge-base index.
func (i *Index) SearchArticles(ctx context.Context, query string, filters domain.SearchFilters, opts domain.SearchOptions) (*domain.SearchResult, error) {
	return i.search(ctx, i.articleIndex(), buildQuery(query, articleFields, filters, opts))
}

// esResponse is the slice of the engine's search envelope this adapter needs.
type esResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (i *Index) search(ctx context.Context, index string, body map[string]any) (*domain.SearchResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "search request not serializable", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(index),
		i.client.Search.WithBody(bytes.NewReader(payload)),
		i.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable,
			fmt.Sprintf("search on %s failed", index), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		// drain so the transport can reuse the connection
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("search on %s returned %s", index, res.Status()))
	}

	var parsed esResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "search response not decodable", err)
	}

	result := &domain.SearchResult{
		Hits:  make([]json.RawMessage, 0, len(parsed.Hits.Hits)),
		Total: parsed.Hits.Total.Value,
	}
	for _, hit := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, hit.Source)
	}
	return result, nil
}
