package models

import "time"

// Connection is a live wormhole link between two mapped systems. A signature
// whose EveID matches SignatureEveID on either end counts as "connected" for
// the preserve-connected expiration exemption.
type Connection struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	SystemSourceID string `gorm:"type:varchar(20);not null;index"`
	SystemTargetID string `gorm:"type:varchar(20);not null;index"`

	// SignatureEveID is the wormhole signature on the source side; empty when
	// the link was drawn by hand without a scanned signature.
	SignatureEveID string `gorm:"type:varchar(20)"`

	// 0 = stable, 1 = end of life.
	TimeStatus int `gorm:"default:0"`
	// 0 = fresh, 1 = reduced, 2 = critical.
	MassStatus int `gorm:"default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Connection) TableName() string {
	return "connections"
}
