// Package backup serializes every managed collection to a portable JSON
// snapshot and restores such snapshots. Restore is additive/overwriting:
// matching ids are overwritten (restore wins), unknown ids are created,
// and local documents absent from the backup are never deleted.
package backup

import (
	"time"
)

// SnapshotVersion allows the snapshot schema to evolve.
const SnapshotVersion = 1

// SnapshotDoc is one serialized document: its fields plus the _id/_rev
// bookkeeping keys.
type SnapshotDoc map[string]any

// Snapshot is the backup file format. Collections hold their documents in
// insertion order.
type Snapshot struct {
	Version   int           `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	Inventory []SnapshotDoc `json:"inventory"`
	Invoices  []SnapshotDoc `json:"invoices"`
	Users     []SnapshotDoc `json:"users"`
	Audit     []SnapshotDoc `json:"audit"`
	Settings  []SnapshotDoc `json:"settings"`
}

func (d SnapshotDoc) id() string {
	if v, ok := d["_id"].(string); ok {
		return v
	}
	return ""
}

// fields returns the document content without the bookkeeping keys.
func (d SnapshotDoc) fields() map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		if k == "_id" || k == "_rev" || k == "_deleted" {
			continue
		}
		out[k] = v
	}
	return out
}
