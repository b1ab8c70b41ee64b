package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SourceType classifies where water comes from (Deep Well, Spring, Bulk,
// River and so on). Types are shared by every branch.
type SourceType struct {
	ID        snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	Name      string       `gorm:"column:name" json:"name"`
	Code      string       `gorm:"column:code;uniqueIndex" json:"code"`
	Active    bool         `gorm:"column:active" json:"active"`
	CreatedAt time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (SourceType) TableName() string { return "source_types" }

// SourceName is a concrete installation of a source type at a branch,
// e.g. "Deep Well #3". Daily and monthly records attach to a source name.
type SourceName struct {
	ID           snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	BranchID     snowflake.ID `gorm:"column:branch_id;index" json:"branch_id"`
	SourceTypeID snowflake.ID `gorm:"column:source_type_id;index" json:"source_type_id"`
	Name         string       `gorm:"column:name" json:"name"`
	Active       bool         `gorm:"column:active" json:"active"`
	CreatedAt    time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (SourceName) TableName() string { return "source_names" }
