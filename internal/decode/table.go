package decode

import (
	"encoding/json"
	"fmt"
)

// TableItem is one row of a queryTables result.
type TableItem struct {
	TableName string
}

// QueryTables parses the queryTables JSON response body.
func QueryTables(payload []byte) ([]TableItem, error) {
	var body struct {
		Value []struct {
			TableName string `json:"TableName"`
		} `json:"value"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode: parsing queryTables response: %w", err)
	}

	out := make([]TableItem, 0, len(body.Value))
	for _, v := range body.Value {
		out = append(out, TableItem{TableName: v.TableName})
	}
	return out, nil
}

// Entity is an arbitrary table entity: property names and values are not
// known ahead of time, so it decodes to a plain map.
type Entity map[string]any

// QueryEntities parses the queryEntities JSON response body.
func QueryEntities(payload []byte) ([]Entity, error) {
	var body struct {
		Value []Entity `json:"value"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode: parsing queryEntities response: %w", err)
	}
	return body.Value, nil
}

// GetEntity parses a single-entity JSON response body.
func GetEntity(payload []byte) (Entity, error) {
	var e Entity
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decode: parsing getEntity response: %w", err)
	}
	return e, nil
}

// TablesContinuation reads the queryTables pagination token.
func TablesContinuation(headers map[string]string) string {
	return headers["x-ms-continuation-nexttablename"]
}

// EntitiesContinuation is the queryEntities pagination token pair.
type EntitiesContinuation struct {
	NextPartitionKey string
	NextRowKey       string
}

// EntitiesContinuationFrom reads the queryEntities pagination tokens.
func EntitiesContinuationFrom(headers map[string]string) EntitiesContinuation {
	return EntitiesContinuation{
		NextPartitionKey: headers["x-ms-continuation-nextpartitionkey"],
		NextRowKey:       headers["x-ms-continuation-nextrowkey"],
	}
}
