package repository

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

const (
	CollectionName = "users"
	IndexField     = "username"
)

type DocRepository struct {
	col *docstore.Collection
}

func NewDocRepository(store *docstore.Store) *DocRepository {
	return &DocRepository{col: store.Collection(CollectionName, IndexField)}
}

func (r *DocRepository) Collection() *docstore.Collection { return r.col }

func (r *DocRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	doc, err := r.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeUser(doc)
}

func (r *DocRepository) FindByUsername(ctx context.Context, username string) ([]model.User, error) {
	docs, err := r.col.QueryIndexed(ctx, username)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *DocRepository) FindAll(ctx context.Context) ([]model.User, error) {
	docs, err := r.col.ListAll(ctx, docstore.OrderInsertion)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *DocRepository) Create(ctx context.Context, u *model.User) error {
	fields, err := model.FieldsOf(u)
	if err != nil {
		return err
	}
	rev, err := r.col.Put(ctx, u.ID, fields, "")
	if err != nil {
		return err
	}
	u.Revision = rev
	return nil
}

func (r *DocRepository) Delete(ctx context.Context, u *model.User) error {
	return r.col.Remove(ctx, u.ID, u.Revision)
}

func decodeUser(doc model.Document) (*model.User, error) {
	var u model.User
	if err := model.DecodeFields(doc.Fields, &u); err != nil {
		return nil, err
	}
	u.ID = doc.ID
	u.Revision = doc.Revision
	return &u, nil
}
