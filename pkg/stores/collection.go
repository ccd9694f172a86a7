package stores

import (
	"context"
	"encoding/json"

	"github.com/erpforge/orchestrator-go/pkg/errors"
)

// Document is one JSON-like record in a Collection. Stored documents carry
// their identifier under the "_id" key, assigned by the collection on
// insert and never changed afterwards.
type Document = map[string]any

// Update describes a partial mutation: Set overwrites individual fields,
// Push appends a single value to an array field. When both are present the
// set is applied first, then the push, so a pushed value always survives a
// wholesale replacement of the same field in one request.
type Update struct {
	Set  map[string]any
	Push map[string]any
}

/*
Collection is the boundary to the document store collaborator. Insert
assigns and returns the record id; FindMany returns records in insertion
order. Implementations are responsible for per-record write atomicity.
*/
type Collection interface {
	Insert(ctx context.Context, doc Document) (string, *errors.ApiError)
	FindOne(ctx context.Context, id string) (Document, *errors.ApiError)
	FindMany(ctx context.Context, limit int) ([]Document, *errors.ApiError)
	Update(ctx context.Context, id string, update Update) *errors.ApiError
	Ping(ctx context.Context) *errors.ApiError
	Name() string
}

// ApplyUpdate mutates doc in place: set fields first, then pushes. Pushing
// onto a missing or non-array field starts a fresh array.
func ApplyUpdate(doc Document, update Update) {
	for key, value := range update.Set {
		doc[key] = value
	}
	for key, value := range update.Push {
		list, _ := doc[key].([]any)
		doc[key] = append(list, value)
	}
}

// ToDocument converts any JSON-marshalable value into a Document through a
// codec round trip, so stored records hold only plain JSON types.
func ToDocument(value any) (Document, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ToValue converts a typed value into its plain JSON representation, for
// use as a field value inside an Update.
func ToValue(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromDocument decodes a Document into a typed value.
func FromDocument(doc Document, out any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// CloneDocument returns a deep copy so callers can never alias a stored
// record's nested slices and maps.
func CloneDocument(doc Document) Document {
	clone, err := ToDocument(doc)
	if err != nil {
		return Document{}
	}
	return clone
}
