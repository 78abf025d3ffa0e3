package warnings

import (
	"context"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/database"
	"github.com/PancyStudios/CapsFridayBot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MongoStore stores records in the "warnings" collection
type MongoStore struct {
	db *database.Database
	dm *database.DataManager[models.WarningRecord]
}

// NewMongoStore creates a MongoStore on top of an initialized Database
func NewMongoStore(db *database.Database) *MongoStore {
	return &MongoStore{
		db: db,
		dm: database.NewDataManager[models.WarningRecord](CollectionName, db),
	}
}

// EnsureSchema creates the unique index on identity
func (s *MongoStore) EnsureSchema(ctx context.Context) error {
	return s.db.EnsureUniqueIndex(ctx, CollectionName, "identity")
}

func (s *MongoStore) Get(ctx context.Context, identity string) (time.Time, bool, error) {
	key := NormalizeIdentity(identity)

	doc, err := s.dm.Get(ctx, bson.M{"identity": key})
	if err != nil {
		return time.Time{}, false, storageErr("get", key, err)
	}
	if doc == nil {
		return time.Time{}, false, nil
	}
	return doc.IssuedAt(), true, nil
}

func (s *MongoStore) Upsert(ctx context.Context, identity string, at time.Time) error {
	key := NormalizeIdentity(identity)
	record := models.NewWarningRecord(key, at)
	return storageErr("upsert", key, s.dm.Set(ctx, bson.M{"identity": key}, record))
}

func (s *MongoStore) Delete(ctx context.Context, identity string) error {
	key := NormalizeIdentity(identity)
	return storageErr("delete", key, s.dm.Delete(ctx, bson.M{"identity": key}))
}

func (s *MongoStore) Health(ctx context.Context) error {
	_, err := s.db.Ping(ctx)
	return err
}
