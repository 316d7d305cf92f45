package decode

import "testing"

func TestQueryTablesParsesValueArray(t *testing.T) {
	payload := []byte(`{"value":[{"TableName":"Alpha"},{"TableName":"Beta"}]}`)
	items, err := QueryTables(payload)
	if err != nil {
		t.Fatalf("QueryTables returned error: %v", err)
	}
	if len(items) != 2 || items[0].TableName != "Alpha" || items[1].TableName != "Beta" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestQueryEntitiesParsesArbitraryProperties(t *testing.T) {
	payload := []byte(`{"value":[{"PartitionKey":"p1","RowKey":"r1","Amount":42}]}`)
	entities, err := QueryEntities(payload)
	if err != nil {
		t.Fatalf("QueryEntities returned error: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}
	if entities[0]["PartitionKey"] != "p1" || entities[0]["RowKey"] != "r1" {
		t.Errorf("unexpected entity: %+v", entities[0])
	}
}

func TestGetEntityParsesSingleObject(t *testing.T) {
	payload := []byte(`{"PartitionKey":"p1","RowKey":"r1"}`)
	e, err := GetEntity(payload)
	if err != nil {
		t.Fatalf("GetEntity returned error: %v", err)
	}
	if e["PartitionKey"] != "p1" {
		t.Errorf("unexpected entity: %+v", e)
	}
}

func TestEntitiesContinuationFromReadsBothTokens(t *testing.T) {
	headers := map[string]string{
		"x-ms-continuation-nextpartitionkey": "pk1",
		"x-ms-continuation-nextrowkey":        "rk1",
	}
	c := EntitiesContinuationFrom(headers)
	if c.NextPartitionKey != "pk1" || c.NextRowKey != "rk1" {
		t.Errorf("unexpected continuation: %+v", c)
	}
}
