package models

import "time"

// System is a solar system tracked on the map. ID is the game-side solar
// system id, carried as a string because it arrives that way on every wire.
type System struct {
	ID   string `gorm:"type:varchar(20);primaryKey"`
	Name string `gorm:"type:varchar(100);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (System) TableName() string {
	return "systems"
}
