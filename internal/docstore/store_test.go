package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"

	"github.com/fekuna/omnipos-datastore/internal/model"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docstore.db")
	store, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("", 0); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPutCreatesDocument(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "code")

	rev, err := col.Put(ctx, "item_1", map[string]any{"name": "Tea", "stock": 5}, "")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if rev.IsZero() {
		t.Fatal("expected a non-zero revision")
	}

	doc, err := col.Get(ctx, "item_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !doc.Revision.Equal(rev) {
		t.Fatalf("expected revision %s, got %s", rev, doc.Revision)
	}
	if doc.Fields["name"] != "Tea" {
		t.Fatalf("expected name Tea, got %v", doc.Fields["name"])
	}
}

func TestPutWithCurrentRevisionAdvances(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	rev1, err := col.Put(ctx, "item_1", map[string]any{"stock": 5}, "")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	rev2, err := col.Put(ctx, "item_1", map[string]any{"stock": 4}, rev1)
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if rev2.Equal(rev1) {
		t.Fatal("expected a fresh revision on update")
	}
	if generation(rev2) <= generation(rev1) {
		t.Fatalf("revision history must be strictly increasing, got %s then %s", rev1, rev2)
	}
}

func TestPutStaleRevisionConflicts(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	rev1, _ := col.Put(ctx, "item_1", map[string]any{"price": 100.0}, "")
	if _, err := col.Put(ctx, "item_1", map[string]any{"price": 120.0}, rev1); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Still holding rev1: this writer lost the race.
	if _, err := col.Put(ctx, "item_1", map[string]any{"price": 90.0}, rev1); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	doc, err := col.Get(ctx, "item_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Fields["price"] != 120.0 {
		t.Fatalf("conflicting write must not change content, got price %v", doc.Fields["price"])
	}
}

func TestPutExistingWithoutRevisionConflicts(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	if _, err := col.Put(ctx, "item_1", map[string]any{"stock": 1}, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := col.Put(ctx, "item_1", map[string]any{"stock": 2}, ""); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for blind overwrite, got %v", err)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	col := openTempStore(t).Collection("inventory", "")
	if _, err := col.Get(context.Background(), "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveTombstones(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	rev, _ := col.Put(ctx, "item_1", map[string]any{"name": "Tea"}, "")
	if err := col.Remove(ctx, "item_1", rev); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := col.Get(ctx, "item_1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
	docs, err := col.ListAll(ctx, OrderInsertion)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty list, got %d docs", len(docs))
	}
}

func TestRemoveStaleRevisionConflicts(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	rev1, _ := col.Put(ctx, "item_1", map[string]any{"stock": 1}, "")
	if _, err := col.Put(ctx, "item_1", map[string]any{"stock": 2}, rev1); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := col.Remove(ctx, "item_1", rev1); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRecreateAfterRemoveContinuesHistory(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	rev1, _ := col.Put(ctx, "item_1", map[string]any{"v": 1}, "")
	if err := col.Remove(ctx, "item_1", rev1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rev3, err := col.Put(ctx, "item_1", map[string]any{"v": 2}, "")
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if generation(rev3) <= generation(rev1) {
		t.Fatalf("recreated id must continue the revision chain, got %s after %s", rev3, rev1)
	}
}

func TestListAllOrdering(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	for _, id := range []string{"item_a", "item_b", "item_c"} {
		if _, err := col.Put(ctx, id, map[string]any{"name": id}, ""); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	docs, err := col.ListAll(ctx, OrderInsertion)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"item_a", "item_b", "item_c"}
	for i, doc := range docs {
		if doc.ID != want[i] {
			t.Fatalf("insertion order: expected %s at %d, got %s", want[i], i, doc.ID)
		}
	}

	docs, err = col.ListAll(ctx, OrderReverse)
	if err != nil {
		t.Fatalf("list reverse: %v", err)
	}
	for i, doc := range docs {
		if doc.ID != want[len(want)-1-i] {
			t.Fatalf("reverse order: expected %s at %d, got %s", want[len(want)-1-i], i, doc.ID)
		}
	}
}

func TestUpdateKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	revA, _ := col.Put(ctx, "item_a", map[string]any{"v": 1}, "")
	col.Put(ctx, "item_b", map[string]any{"v": 1}, "")
	if _, err := col.Put(ctx, "item_a", map[string]any{"v": 2}, revA); err != nil {
		t.Fatalf("update: %v", err)
	}

	docs, _ := col.ListAll(ctx, OrderInsertion)
	if docs[0].ID != "item_a" || docs[1].ID != "item_b" {
		t.Fatalf("updates must not reorder documents, got %s, %s", docs[0].ID, docs[1].ID)
	}
}

func TestQueryIndexed(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("users", "username")

	col.Put(ctx, "user_1", map[string]any{"username": "alice", "role": "worker"}, "")
	col.Put(ctx, "user_2", map[string]any{"username": "bob", "role": "worker"}, "")

	docs, err := col.QueryIndexed(ctx, "alice")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "user_1" {
		t.Fatalf("expected user_1, got %+v", docs)
	}

	docs, err = col.QueryIndexed(ctx, "nobody")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no matches, got %d", len(docs))
	}
}

func TestQueryIndexedRequiresIndexField(t *testing.T) {
	col := openTempStore(t).Collection("plain", "")
	if _, err := col.QueryIndexed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for collection without indexed field")
	}
}

func TestBulkPutIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	rev1, _ := col.Put(ctx, "item_1", map[string]any{"v": 1}, "")
	col.Put(ctx, "item_1", map[string]any{"v": 2}, rev1) // advance past rev1

	results := col.BulkPut(ctx, []PutRequest{
		{ID: "item_1", Fields: map[string]any{"v": 3}, Revision: rev1}, // stale
		{ID: "item_2", Fields: map[string]any{"v": 1}},
		{ID: "item_3", Fields: map[string]any{"v": 1}},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(results))
	}
	if !errors.Is(results[0].Err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for item_1, got %v", results[0].Err)
	}
	for _, res := range results[1:] {
		if res.Err != nil {
			t.Fatalf("expected success for %s, got %v", res.ID, res.Err)
		}
		if res.Revision.IsZero() {
			t.Fatalf("expected revision for %s", res.ID)
		}
	}
}

func TestCollectionRegistryReturnsSameInstance(t *testing.T) {
	store := openTempStore(t)
	a := store.Collection("inventory", "code")
	b := store.Collection("inventory", "code")
	if a != b {
		t.Fatal("expected the same collection instance for the same name")
	}
}

func TestRevisionIsOpaqueButIncreasing(t *testing.T) {
	ctx := context.Background()
	col := openTempStore(t).Collection("inventory", "")

	var prev model.Revision
	rev, _ := col.Put(ctx, "item_1", map[string]any{"n": 0}, "")
	for i := 1; i <= 5; i++ {
		prev = rev
		var err error
		rev, err = col.Put(ctx, "item_1", map[string]any{"n": i}, prev)
		if err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
		if rev.Equal(prev) {
			t.Fatalf("revision reused at step %d: %s", i, rev)
		}
		if generation(rev) != generation(prev)+1 {
			t.Fatalf("generation must advance by one, got %s after %s", rev, prev)
		}
	}
}
