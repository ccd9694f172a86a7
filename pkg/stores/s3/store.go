package s3

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/erpforge/orchestrator-go/pkg/errors"
	"github.com/erpforge/orchestrator-go/pkg/stores"
)

/*
Collection provides an S3-backed implementation of stores.Collection. Each
record lives as one JSON object under <collection>/<id>.json. Record ids
are time-ordered UUIDs so lexical key listing matches insertion order.
*/
type Collection struct {
	conn *Conn
	name string
}

/*
NewCollection creates an object-store collection with the given name.
*/
func NewCollection(conn *Conn, name string) *Collection {
	return &Collection{conn: conn, name: name}
}

func (col *Collection) Name() string { return col.name }

func (col *Collection) key(id string) string {
	return col.name + "/" + id + ".json"
}

func (col *Collection) Insert(ctx context.Context, doc stores.Document) (string, *errors.ApiError) {
	id := uuid.Must(uuid.NewV7()).String()

	stored := stores.CloneDocument(doc)
	stored["_id"] = id

	data, err := json.Marshal(stored)
	if err != nil {
		log.Error("failed to marshal document", "collection", col.name, "error", err)
		return "", errors.ErrInternal.WithMessagef("failed to marshal document: %v", err)
	}

	if err := col.conn.Put(ctx, col.key(id), data); err != nil {
		log.Error("failed to store document", "collection", col.name, "id", id, "error", err)
		return "", errors.ErrBackendUnavailable.WithMessagef("failed to store document: %v", err)
	}

	return id, nil
}

func (col *Collection) FindOne(ctx context.Context, id string) (stores.Document, *errors.ApiError) {
	data, found, err := col.conn.Get(ctx, col.key(id))
	if err != nil {
		log.Error("failed to read document", "collection", col.name, "id", id, "error", err)
		return nil, errors.ErrBackendUnavailable.WithMessagef("failed to read document: %v", err)
	}
	if !found {
		return nil, errors.ErrTaskNotFound
	}

	var doc stores.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Error("failed to unmarshal document", "collection", col.name, "id", id, "error", err)
		return nil, errors.ErrInternal.WithMessagef("failed to unmarshal document: %v", err)
	}
	return doc, nil
}

func (col *Collection) FindMany(ctx context.Context, limit int) ([]stores.Document, *errors.ApiError) {
	keys, err := col.conn.List(ctx, col.name+"/")
	if err != nil {
		log.Error("failed to list documents", "collection", col.name, "error", err)
		return nil, errors.ErrBackendUnavailable.WithMessagef("failed to list documents: %v", err)
	}

	out := make([]stores.Document, 0, len(keys))
	for _, key := range keys {
		if limit > 0 && len(out) >= limit {
			break
		}
		data, found, err := col.conn.Get(ctx, key)
		if err != nil {
			log.Error("failed to read document", "collection", col.name, "key", key, "error", err)
			return nil, errors.ErrBackendUnavailable.WithMessagef("failed to read document: %v", err)
		}
		if !found {
			// Deleted between list and read, skip.
			continue
		}
		var doc stores.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Error("failed to unmarshal document", "collection", col.name, "key", key, "error", err)
			return nil, errors.ErrInternal.WithMessagef("failed to unmarshal document: %v", err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (col *Collection) Update(ctx context.Context, id string, update stores.Update) *errors.ApiError {
	doc, apiErr := col.FindOne(ctx, id)
	if apiErr != nil {
		return apiErr
	}

	stores.ApplyUpdate(doc, update)

	data, err := json.Marshal(doc)
	if err != nil {
		log.Error("failed to marshal document", "collection", col.name, "id", id, "error", err)
		return errors.ErrInternal.WithMessagef("failed to marshal document: %v", err)
	}
	if err := col.conn.Put(ctx, col.key(id), data); err != nil {
		log.Error("failed to store document", "collection", col.name, "id", id, "error", err)
		return errors.ErrBackendUnavailable.WithMessagef("failed to store document: %v", err)
	}
	return nil
}

func (col *Collection) Ping(ctx context.Context) *errors.ApiError {
	if err := col.conn.Ping(ctx); err != nil {
		return errors.ErrBackendUnavailable.WithMessagef("object store unreachable: %v", err)
	}
	return nil
}
