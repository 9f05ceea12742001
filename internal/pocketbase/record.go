package pocketbase

import (
	"encoding/json"
	"fmt"
)

// Record is a single backend record. The system fields are lifted into struct
// fields; everything else stays as raw JSON until a caller decodes it.
type Record struct {
	ID             string
	CollectionID   string
	CollectionName string
	Created        string
	Updated        string

	fields map[string]json.RawMessage
}

var systemFields = []string{"id", "collectionId", "collectionName", "created", "updated"}

// NewRecord builds a record in collection with the given fields. It panics if a
// field value cannot be JSON-encoded.
func NewRecord(collection, id string, fields map[string]any) *Record {
	r := &Record{ID: id, CollectionName: collection, fields: make(map[string]json.RawMessage, len(fields))}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("pocketbase: encode field %q: %v", k, err))
		}
		r.fields[k] = raw
	}
	return r
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = Record{fields: m}
	r.ID = r.GetString("id")
	r.CollectionID = r.GetString("collectionId")
	r.CollectionName = r.GetString("collectionName")
	r.Created = r.GetString("created")
	r.Updated = r.GetString("updated")
	for _, k := range systemFields {
		delete(r.fields, k)
	}
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.fields)+len(systemFields))
	for k, v := range r.fields {
		m[k] = v
	}
	m["id"] = r.ID
	m["collectionName"] = r.CollectionName
	if r.CollectionID != "" {
		m["collectionId"] = r.CollectionID
	}
	if r.Created != "" {
		m["created"] = r.Created
	}
	if r.Updated != "" {
		m["updated"] = r.Updated
	}
	return json.Marshal(m)
}

// Decode unmarshals the whole record, system fields included, into v.
func (r *Record) Decode(v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", r.ID, err)
	}
	return nil
}

// GetString returns the field as a string, or "" when it is missing or not a
// JSON string.
func (r *Record) GetString(key string) string {
	raw, ok := r.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// GetStringSlice returns a multi-value field. Single file fields are stored as
// a plain string and come back as a one-element slice.
func (r *Record) GetStringSlice(key string) []string {
	raw, ok := r.fields[key]
	if !ok {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	if s := r.GetString(key); s != "" {
		return []string{s}
	}
	return nil
}

// ListResult is one page of a collection listing.
type ListResult struct {
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
	Items      []*Record `json:"items"`
}

// ListOptions carries optional list query parameters. Sort uses the backend
// syntax: comma-separated field names, "-" prefix for descending.
type ListOptions struct {
	Sort string
}
