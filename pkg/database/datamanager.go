// Package database provides the DataManager for typed collection access.
package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataManager provides typed access to a MongoDB collection.
// Every call goes to the database; reads are never served from a cache so that
// moderation decisions always see the latest write.
type DataManager[T any] struct {
	collectionName string
	dbInstance     *Database
}

// NewDataManager creates a new DataManager for a collection
func NewDataManager[T any](collectionName string, db *Database) *DataManager[T] {
	return &DataManager[T]{
		collectionName: collectionName,
		dbInstance:     db,
	}
}

func (dm *DataManager[T]) collection() (*mongo.Collection, error) {
	if !dm.dbInstance.Connected() {
		return nil, ErrNotConnected
	}
	col := dm.dbInstance.GetCollection(dm.collectionName)
	if col == nil {
		return nil, ErrNotConnected
	}
	return col, nil
}

// Get retrieves one document. It returns nil, nil when nothing matches.
func (dm *DataManager[T]) Get(ctx context.Context, query bson.M) (*T, error) {
	col, err := dm.collection()
	if err != nil {
		return nil, err
	}

	var result T
	err = col.FindOne(ctx, query).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("leer de '%s': %w", dm.collectionName, err)
	}
	return &result, nil
}

// Set updates or inserts the document matching query
func (dm *DataManager[T]) Set(ctx context.Context, query bson.M, data interface{}) error {
	col, err := dm.collection()
	if err != nil {
		return err
	}

	opts := options.Update().SetUpsert(true)
	if _, err := col.UpdateOne(ctx, query, bson.M{"$set": data}, opts); err != nil {
		return fmt.Errorf("escribir en '%s': %w", dm.collectionName, err)
	}
	return nil
}

// Delete removes the document matching query. Deleting a missing document is not an error.
func (dm *DataManager[T]) Delete(ctx context.Context, query bson.M) error {
	col, err := dm.collection()
	if err != nil {
		return err
	}

	if _, err := col.DeleteOne(ctx, query); err != nil {
		return fmt.Errorf("eliminar de '%s': %w", dm.collectionName, err)
	}
	return nil
}
