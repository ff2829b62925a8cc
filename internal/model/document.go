package model

import "encoding/json"

// Revision is an opaque compare-only token attesting to a document's exact
// historical version. Callers must never parse or order it; equality is the
// only supported operation.
type Revision string

func (r Revision) Equal(other Revision) bool { return r == other }

func (r Revision) IsZero() bool { return r == "" }

func (r Revision) String() string { return string(r) }

// Document is a single identified, revisioned record within a collection.
// A tombstoned document keeps its id but has no fields.
type Document struct {
	ID       string         `json:"_id"`
	Revision Revision       `json:"_rev,omitempty"`
	Fields   map[string]any `json:"-"`
	Deleted  bool           `json:"_deleted,omitempty"`
}

// FieldsOf flattens a typed model into the generic field map a document
// carries. Values go through JSON so what comes back out of the store
// matches what a backup file would contain.
func FieldsOf(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// DecodeFields populates a typed model from a document's field map.
func DecodeFields(fields map[string]any, dst any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
