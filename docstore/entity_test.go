package docstore

import "testing"

func TestEntityRoundTrip(t *testing.T) {
	doc := Document{
		"title":     "Ship v1",
		"status":    "todo",
		"createdAt": int64(1756600000000),
	}
	payload, err := encodeEntity("tasks", "task-1", doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := decodeEntity(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if String(got["id"]) != "task-1" {
		t.Fatalf("expected id task-1, got %v", got["id"])
	}
	if String(got["title"]) != "Ship v1" || String(got["status"]) != "todo" {
		t.Fatalf("fields lost: %v", got)
	}
	if v, ok := got["createdAt"].(int64); !ok || v != 1756600000000 {
		t.Fatalf("expected int64 createdAt, got %T %v", got["createdAt"], got["createdAt"])
	}
	if _, ok := got["PartitionKey"]; ok {
		t.Fatal("partition key leaked into document")
	}
}

func TestDecodeEntityDropsAnnotations(t *testing.T) {
	payload := []byte(`{
		"odata.etag": "W/\"x\"",
		"PartitionKey": "tasks",
		"RowKey": "task-2",
		"Timestamp": "2026-08-31T00:00:00Z",
		"createdAt": "42",
		"createdAt@odata.type": "Edm.Int64",
		"title": "t"
	}`)
	got, err := decodeEntity(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected id, createdAt and title only, got %v", got)
	}
	if Int64(got["createdAt"]) != 42 {
		t.Fatalf("expected createdAt 42, got %v", got["createdAt"])
	}
}

func TestSortDocumentsTieBreaksOnID(t *testing.T) {
	docs := []Document{
		{"id": "b", "createdAt": int64(5)},
		{"id": "a", "createdAt": int64(5)},
		{"id": "c", "createdAt": int64(9)},
	}
	sortDocuments(docs, "createdAt", Descending)
	if String(docs[0]["id"]) != "c" || String(docs[1]["id"]) != "b" || String(docs[2]["id"]) != "a" {
		t.Fatalf("unexpected order: %v %v %v", docs[0]["id"], docs[1]["id"], docs[2]["id"])
	}
}
