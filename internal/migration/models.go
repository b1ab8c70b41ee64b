package migration

import (
	"gorm.io/gorm"

	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	auditdomain "github.com/hydrocore/waterworks/internal/audit/domain"
	authdomain "github.com/hydrocore/waterworks/internal/auth/domain"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	dailydomain "github.com/hydrocore/waterworks/internal/dailyrecord/domain"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
	rfdomain "github.com/hydrocore/waterworks/internal/requiredfields/domain"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
)

// AutoMigrate creates the schema from the gorm models. Used on dialects
// the versioned SQL migrations do not target.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&areadomain.Area{},
		&branchdomain.Branch{},
		&sourcedomain.SourceType{},
		&sourcedomain.SourceName{},
		&authdomain.User{},
		&authdomain.Session{},
		&dailydomain.DailyRecord{},
		&monthlydomain.MonthlyRecord{},
		&rfdomain.Config{},
		&auditdomain.AuditLog{},
	)
}
