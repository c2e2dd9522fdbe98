package fhir

import (
	"encoding/json"
	"testing"
)

func TestNewSearchBundle(t *testing.T) {
	resources := []map[string]interface{}{
		{"resourceType": "Patient", "id": "a"},
		{"resourceType": "Patient"},
	}
	links := []BundleLink{{Relation: "self", URL: "/fhir/Patient?_offset=0&_count=20"}}

	b := NewSearchBundle(resources, 7, links)

	if b.ResourceType != "Bundle" || b.Type != "searchset" {
		t.Errorf("unexpected bundle header %s/%s", b.ResourceType, b.Type)
	}
	if b.Total == nil || *b.Total != 7 {
		t.Errorf("expected total 7, got %v", b.Total)
	}
	if len(b.Entry) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(b.Entry))
	}
	if b.Entry[0].FullURL != "Patient/a" {
		t.Errorf("expected Patient/a, got %q", b.Entry[0].FullURL)
	}
	if b.Entry[1].FullURL != "" {
		t.Errorf("expected empty fullUrl without id, got %q", b.Entry[1].FullURL)
	}
	if b.Entry[0].Search == nil || b.Entry[0].Search.Mode != "match" {
		t.Error("expected search mode match")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(b.Entry[0].Resource, &decoded); err != nil {
		t.Fatalf("resource is not JSON: %v", err)
	}
	if decoded["id"] != "a" {
		t.Errorf("expected id a, got %v", decoded["id"])
	}
}

func TestNewSearchBundle_Empty(t *testing.T) {
	b := NewSearchBundle(nil, 0, nil)
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	json.Unmarshal(data, &m)
	if _, ok := m["entry"]; ok {
		t.Error("expected entry to be omitted for empty bundle")
	}
	if m["total"] != 0.0 {
		t.Errorf("expected total 0, got %v", m["total"])
	}
}
