package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Query identifies one aggregation period with resolved IDs and
// half-open date bounds.
type Query struct {
	BranchID snowflake.ID
	// SourceTypeID scopes sum queries; SourceNameID scopes completion
	// counts. Only one is set per query.
	SourceTypeID snowflake.ID
	SourceNameID snowflake.ID
	From         time.Time
	To           time.Time
	// Statuses lists the record statuses that count toward sums and
	// completion.
	Statuses []int
}

type Repository interface {
	SumFields(ctx context.Context, db *gorm.DB, queries []Query) ([]Sums, error)
	CountDistinctDays(ctx context.Context, db *gorm.DB, q Query) (int, error)
}
