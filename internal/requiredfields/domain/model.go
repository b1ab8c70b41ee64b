package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Config holds the required-field set for one branch and form type.
// One row per (branch, form type).
type Config struct {
	ID        snowflake.ID   `gorm:"column:id;primaryKey" json:"id"`
	BranchID  snowflake.ID   `gorm:"column:branch_id;uniqueIndex:idx_required_fields_branch_form" json:"branch_id"`
	FormType  string         `gorm:"column:form_type;uniqueIndex:idx_required_fields_branch_form" json:"form_type"`
	Fields    datatypes.JSON `gorm:"column:fields;type:jsonb" json:"fields"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Config) TableName() string { return "required_fields_configs" }
