package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Branch is a water-utility office inside an Area. Records, required-field
// configuration, and user assignments are all scoped to a branch.
type Branch struct {
	ID        snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	AreaID    snowflake.ID `gorm:"column:area_id;index" json:"area_id"`
	Name      string       `gorm:"column:name" json:"name"`
	Code      string       `gorm:"column:code;uniqueIndex" json:"code"`
	Address   string       `gorm:"column:address" json:"address"`
	Active    bool         `gorm:"column:active" json:"active"`
	CreatedAt time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (Branch) TableName() string { return "branches" }
