// Package database provides the MongoDB connection used by the warning store.
// It keeps the connection alive in the background and exposes typed collections through DataManager.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotConnected is returned when an operation needs a live connection and there is none
var ErrNotConnected = errors.New("not connected to database")

// Database manages the MongoDB connection
type Database struct {
	client          *mongo.Client
	db              *mongo.Database
	isConnected     bool
	mongoURL        string
	dbName          string
	reconnectTicker *time.Ticker
	stopReconnect   chan struct{}
	stopOnce        sync.Once
	mu              sync.RWMutex
	collections     map[string]*mongo.Collection
}

var (
	database *Database
	dbOnce   sync.Once
)

// Init initializes the global database instance
func Init(mongoURL, dbName string) (*Database, error) {
	var err error
	dbOnce.Do(func() {
		database = NewDatabase(mongoURL, dbName)
		err = database.Connect()
	})
	return database, err
}

// Get returns the global database instance
func Get() *Database {
	return database
}

// NewDatabase creates a new Database instance
func NewDatabase(mongoURL, dbName string) *Database {
	return &Database{
		mongoURL:      mongoURL,
		dbName:        dbName,
		stopReconnect: make(chan struct{}),
		collections:   make(map[string]*mongo.Collection),
	}
}

// Connect establishes a connection to MongoDB.
// On failure it keeps retrying in the background every 15 seconds.
func (d *Database) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isConnected {
		return nil
	}

	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(d.mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Critical("Fallo al conectar con la base de datos.", "DB")
		d.scheduleReconnect()
		return err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Critical("Fallo al verificar conexión con la base de datos.", "DB")
		_ = client.Disconnect(context.Background())
		d.scheduleReconnect()
		return err
	}

	d.client = client
	d.db = client.Database(d.dbName)
	d.collections = make(map[string]*mongo.Collection)
	d.isConnected = true

	logger.Success("Conectado exitosamente a la base de datos.", "DB")

	if d.reconnectTicker != nil {
		d.reconnectTicker.Stop()
		d.reconnectTicker = nil
	}

	return nil
}

// scheduleReconnect starts the reconnection loop. Callers must hold d.mu.
func (d *Database) scheduleReconnect() {
	d.isConnected = false
	if d.reconnectTicker != nil {
		return
	}

	logger.Warn("Sin conexión con la base de datos. Reintentando cada 15s.", "DB")

	ticker := time.NewTicker(15 * time.Second)
	d.reconnectTicker = ticker
	go func() {
		for {
			select {
			case <-ticker.C:
				logger.Info("Intentando reconectar a la base de datos...", "DB")
				if err := d.Connect(); err == nil {
					return
				}
			case <-d.stopReconnect:
				return
			}
		}
	}()
}

// Disconnect closes the database connection
func (d *Database) Disconnect() error {
	d.stopOnce.Do(func() { close(d.stopReconnect) })

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.reconnectTicker != nil {
		d.reconnectTicker.Stop()
		d.reconnectTicker = nil
	}

	if d.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.client.Disconnect(ctx); err != nil {
		return err
	}
	d.isConnected = false
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}

// Connected reports whether the last connection attempt succeeded
func (d *Database) Connected() bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.isConnected
}

// Ping measures the database response time
func (d *Database) Ping(ctx context.Context) (time.Duration, error) {
	d.mu.RLock()
	client := d.client
	connected := d.isConnected
	d.mu.RUnlock()

	if !connected || client == nil {
		return 0, ErrNotConnected
	}

	start := time.Now()
	err := client.Ping(ctx, readpref.Primary())
	return time.Since(start), err
}

// GetCollection returns a MongoDB collection, or nil when not connected
func (d *Database) GetCollection(name string) *mongo.Collection {
	d.mu.RLock()
	if col, exists := d.collections[name]; exists {
		d.mu.RUnlock()
		return col
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	col := d.db.Collection(name)
	d.collections[name] = col
	return col
}

// EnsureUniqueIndex creates a unique ascending index on field if it does not exist yet
func (d *Database) EnsureUniqueIndex(ctx context.Context, collectionName, field string) error {
	col := d.GetCollection(collectionName)
	if col == nil {
		return ErrNotConnected
	}

	model := mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(fmt.Sprintf("%s_unique", field)),
	}
	if _, err := col.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("crear índice %s.%s: %w", collectionName, field, err)
	}

	logger.Debug(fmt.Sprintf("Índice único asegurado en %s.%s", collectionName, field), "DB")
	return nil
}
