package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/locvowork/sheetexport/pkg/sheetexport"
	"github.com/olivere/elastic/v7"
)

const defaultSearchSize = 1000

// ElasticSource runs a query_string search (match_all when empty) and
// returns the _source of each hit.
type ElasticSource struct {
	client *elastic.Client

	Index       string
	QueryString string
	Size        int
}

func NewElasticSource(client *elastic.Client, index, queryString string, size int) *ElasticSource {
	return &ElasticSource{client: client, Index: index, QueryString: queryString, Size: size}
}

func (s *ElasticSource) Records(ctx context.Context) ([]sheetexport.Record, error) {
	var query elastic.Query = elastic.NewMatchAllQuery()
	if s.QueryString != "" {
		query = elastic.NewQueryStringQuery(s.QueryString)
	}
	size := s.Size
	if size <= 0 {
		size = defaultSearchSize
	}

	res, err := s.client.Search().
		Index(s.Index).
		Query(query).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.Index, err)
	}
	if res.Hits == nil {
		return nil, nil
	}
	return hitsToRecords(res.Hits.Hits)
}

func hitsToRecords(hits []*elastic.SearchHit) ([]sheetexport.Record, error) {
	records := make([]sheetexport.Record, 0, len(hits))
	for _, hit := range hits {
		if len(hit.Source) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(hit.Source))
		dec.UseNumber()
		var rec sheetexport.Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("hit %s: %w", hit.Id, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
