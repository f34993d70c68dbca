package docstore

import (
	"encoding/json"
	"strconv"
	"strings"
)

const edmInt64 = "Edm.Int64"

// encodeEntity flattens a document into a table entity payload. Integer
// values get an Edm.Int64 annotation and a string representation so table
// storage keeps their full range.
func encodeEntity(collection, id string, doc Document) ([]byte, error) {
	ent := map[string]any{
		"PartitionKey": collection,
		"RowKey":       id,
	}
	for k, v := range doc {
		if k == "id" {
			continue
		}
		switch n := v.(type) {
		case int64:
			ent[k] = strconv.FormatInt(n, 10)
			ent[k+"@odata.type"] = edmInt64
		case int:
			ent[k] = strconv.Itoa(n)
			ent[k+"@odata.type"] = edmInt64
		default:
			ent[k] = v
		}
	}
	return json.Marshal(ent)
}

// decodeEntity turns a table entity back into a document, restoring
// annotated integers and injecting the row key as "id".
func decodeEntity(data []byte) (Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	doc := Document{}
	for k, v := range raw {
		switch {
		case k == "PartitionKey", k == "Timestamp":
		case k == "RowKey":
			doc["id"] = v
		case strings.Contains(k, "@odata"):
		case strings.HasPrefix(k, "odata."):
		default:
			if t, ok := raw[k+"@odata.type"].(string); ok && t == edmInt64 {
				if s, ok := v.(string); ok {
					if i, err := strconv.ParseInt(s, 10, 64); err == nil {
						doc[k] = i
						continue
					}
				}
			}
			doc[k] = v
		}
	}
	return doc, nil
}
