package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/events/config"
	"example.com/backstage/services/events/internal/models"
)

// EventDoc is the shape of a published event in the search index
type EventDoc struct {
	EventID   string `json:"event_id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	VenueName string `json:"venue_name"`
	VenueCity string `json:"venue_city"`
	ImageURL  string `json:"image_url"`
}

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{client: client, index: cfg.Index}, nil
}

// IndexEvent indexes a published event so the public feed can search it
func (c *ElasticClient) IndexEvent(ctx context.Context, event *models.Event) error {
	doc := EventDoc{
		EventID:   event.EventID,
		Title:     event.Title,
		Date:      event.Date,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		VenueName: event.VenueName,
		VenueCity: event.VenueCity,
		ImageURL:  event.ImageURL,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event document")
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: event.EventID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to index event")
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing event %s: %s", event.EventID, res.String())
	}

	log.Info().Str("event_id", event.EventID).Msg("Event indexed")
	return nil
}

// RemoveEvent removes an event from the search index. A missing document is
// not an error; the event may never have been published.
func (c *ElasticClient) RemoveEvent(ctx context.Context, eventID string) error {
	req := esapi.DeleteRequest{
		Index:      c.index,
		DocumentID: eventID,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to remove event from index")
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("error removing event %s from index: %s", eventID, res.String())
	}

	return nil
}

// SearchEvents searches the published-events index by free-text query
func (c *ElasticClient) SearchEvents(ctx context.Context, query string, size int) ([]EventDoc, error) {
	searchBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "venue_name", "venue_city"},
			},
		},
		"size": size,
	}

	body, err := json.Marshal(searchBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(c.index),
		c.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute search")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching events: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source EventDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode search response")
	}

	docs := make([]EventDoc, len(parsed.Hits.Hits))
	for i, hit := range parsed.Hits.Hits {
		docs[i] = hit.Source
	}

	return docs, nil
}
