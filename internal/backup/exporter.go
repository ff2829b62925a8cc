package backup

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/fekuna/omnipos-datastore/pkg/logger"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
)

// Exporter assembles a snapshot from the managed collections. Export is a
// pure read and never mutates a collection.
type Exporter struct {
	collections *Collections
	logger      logger.ZapLogger
	now         func() time.Time
}

// Collections names the stores covered by backup and restore.
type Collections struct {
	Inventory *docstore.Collection
	Invoices  *docstore.Collection
	Users     *docstore.Collection
	Audit     *docstore.Collection
	Settings  *docstore.Collection
}

func NewExporter(cols *Collections, log logger.ZapLogger) *Exporter {
	return &Exporter{
		collections: cols,
		logger:      log,
		now:         time.Now,
	}
}

func (e *Exporter) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Version:   SnapshotVersion,
		Timestamp: e.now(),
	}

	var err error
	if snap.Inventory, err = collectDocs(ctx, e.collections.Inventory); err != nil {
		return nil, err
	}
	if snap.Invoices, err = collectDocs(ctx, e.collections.Invoices); err != nil {
		return nil, err
	}
	if snap.Users, err = collectDocs(ctx, e.collections.Users); err != nil {
		return nil, err
	}
	if snap.Audit, err = collectDocs(ctx, e.collections.Audit); err != nil {
		return nil, err
	}
	if snap.Settings, err = collectDocs(ctx, e.collections.Settings); err != nil {
		return nil, err
	}
	return snap, nil
}

// WriteTo streams the snapshot as indented JSON, the format the restore
// side and the UI's download both consume.
func (e *Exporter) WriteTo(ctx context.Context, w io.Writer) error {
	snap, err := e.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func collectDocs(ctx context.Context, col *docstore.Collection) ([]SnapshotDoc, error) {
	docs, err := col.ListAll(ctx, docstore.OrderInsertion)
	if err != nil {
		return nil, err
	}
	out := make([]SnapshotDoc, 0, len(docs))
	for _, doc := range docs {
		if strings.HasPrefix(doc.ID, "_design/") {
			continue
		}
		sd := make(SnapshotDoc, len(doc.Fields)+2)
		for k, v := range doc.Fields {
			sd[k] = v
		}
		sd["_id"] = doc.ID
		sd["_rev"] = doc.Revision.String()
		out = append(out, sd)
	}
	return out, nil
}
