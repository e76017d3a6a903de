package database

import (
	"fmt"

	"github.com/olivere/elastic/v7"
)

// NewElasticClient creates a client for Elasticsearch 7.x at url.
func NewElasticClient(url string) (*elastic.Client, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // cluster nodes are usually not reachable from outside docker
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return client, nil
}
