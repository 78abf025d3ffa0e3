package models

import "time"

// WarningRecord es el último aviso emitido a un usuario.
// Corresponde a un documento de la colección "warnings": identity es la clave única.
type WarningRecord struct {
	Identity  string `bson:"identity" json:"identity"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"` // milisegundos desde epoch
}

// IssuedAt returns the timestamp as a time.Time
func (w WarningRecord) IssuedAt() time.Time {
	return time.UnixMilli(w.Timestamp)
}

// NewWarningRecord builds a record for identity issued at t
func NewWarningRecord(identity string, t time.Time) WarningRecord {
	return WarningRecord{
		Identity:  identity,
		Timestamp: t.UnixMilli(),
	}
}
