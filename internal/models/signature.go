package models

import (
	"time"

	"gorm.io/datatypes"
)

// Signature is a scanned point of interest in a solar system. EveID is either
// a 3-character prefix (partial bookmark identification) or the full dashed
// XXX-NNN probe-scanner code. Kind and Group hold the recognized values owned
// by the signature package; Group drives the rank-upgrade rule on updates.
type Signature struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	SystemID string `gorm:"type:varchar(20);not null;uniqueIndex:uniq_system_eve_id;index"`
	EveID    string `gorm:"type:varchar(20);not null;uniqueIndex:uniq_system_eve_id"`

	Kind        string `gorm:"type:varchar(40);not null"`
	Group       string `gorm:"column:sig_group;type:varchar(40);not null;index"`
	Name        string `gorm:"type:varchar(255)"`
	Description string `gorm:"type:text"`

	// CustomInfo always carries a "dest" key after a parse/merge pass; for
	// wormholes it additionally carries isEOL, isCrit and full_id.
	CustomInfo datatypes.JSON `gorm:"type:jsonb"`

	// InsertedAt is read by the expiration policy only and is never touched
	// on update.
	InsertedAt time.Time `gorm:"type:timestamptz;index"`
	UpdatedAt  time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Signature) TableName() string {
	return "signatures"
}
