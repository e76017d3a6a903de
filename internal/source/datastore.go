package source

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/sheetexport/pkg/sheetexport"
)

// DatastoreSource loads entities of Kind matching equality Filters.
// Embedded entities become nested records, so they can feed a
// FieldMapping's data_key directly.
type DatastoreSource struct {
	client *datastore.Client

	Kind    string
	Filters map[string]interface{}
	Limit   int
}

func NewDatastoreSource(client *datastore.Client, kind string) *DatastoreSource {
	return &DatastoreSource{client: client, Kind: kind}
}

func (s *DatastoreSource) query() *datastore.Query {
	q := datastore.NewQuery(s.Kind)
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q = q.FilterField(k, "=", s.Filters[k])
	}
	if s.Limit > 0 {
		q = q.Limit(s.Limit)
	}
	return q
}

func (s *DatastoreSource) Records(ctx context.Context) ([]sheetexport.Record, error) {
	var entities []datastore.PropertyList
	keys, err := s.client.GetAll(ctx, s.query(), &entities)
	if err != nil {
		return nil, fmt.Errorf("datastore %s: %w", s.Kind, err)
	}

	records := make([]sheetexport.Record, len(entities))
	for i, props := range entities {
		rec := propertiesToRecord(props)
		if i < len(keys) && keys[i] != nil {
			rec["__key__"] = keyName(keys[i])
		}
		records[i] = rec
	}
	return records, nil
}

func propertiesToRecord(props []datastore.Property) sheetexport.Record {
	rec := make(sheetexport.Record, len(props))
	for _, p := range props {
		rec[p.Name] = propertyValue(p.Value)
	}
	return rec
}

func propertyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *datastore.Entity:
		if t == nil {
			return nil
		}
		return propertiesToRecord(t.Properties)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = propertyValue(item)
		}
		return out
	case *datastore.Key:
		if t == nil {
			return nil
		}
		return keyName(t)
	case datastore.GeoPoint:
		return fmt.Sprintf("%g,%g", t.Lat, t.Lng)
	}
	return v
}

func keyName(k *datastore.Key) string {
	if k.Name != "" {
		return k.Name
	}
	return fmt.Sprintf("%d", k.ID)
}
