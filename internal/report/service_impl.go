package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	areadomain "github.com/hydrocore/waterworks/internal/area/domain"
	"github.com/hydrocore/waterworks/internal/approval"
	branchdomain "github.com/hydrocore/waterworks/internal/branch/domain"
	"github.com/hydrocore/waterworks/internal/clock"
	monthlydomain "github.com/hydrocore/waterworks/internal/monthlyrecord/domain"
	"github.com/hydrocore/waterworks/internal/period"
	"github.com/hydrocore/waterworks/internal/report/pdf"
	sourcedomain "github.com/hydrocore/waterworks/internal/source/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// MonthlyDatasheet renders the branch's monthly rollups for a
	// period as a PDF.
	MonthlyDatasheet(ctx context.Context, req DatasheetRequest) (io.Reader, error)
}

type DatasheetRequest struct {
	BranchID string `form:"branchId"`
	Month    int    `form:"month"`
	Year     int    `form:"year"`
}

var (
	ErrInvalidBranchID = errors.New("invalid_branch_id")
	ErrBranchNotFound  = errors.New("branch_not_found")
	ErrInvalidPeriod   = errors.New("invalid_period")
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	BranchRepo branchdomain.Repository
	AreaRepo   areadomain.Repository
	NameRepo   sourcedomain.NameRepository
	TypeRepo   sourcedomain.TypeRepository
	Monthly    monthlydomain.Repository
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	branchRepo branchdomain.Repository
	areaRepo   areadomain.Repository
	nameRepo   sourcedomain.NameRepository
	typeRepo   sourcedomain.TypeRepository
	monthly    monthlydomain.Repository
}

func New(p Params) Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("report.service"),
		clock:      p.Clock,
		branchRepo: p.BranchRepo,
		areaRepo:   p.AreaRepo,
		nameRepo:   p.NameRepo,
		typeRepo:   p.TypeRepo,
		monthly:    p.Monthly,
	}
}

func (s *service) MonthlyDatasheet(ctx context.Context, req DatasheetRequest) (io.Reader, error) {
	branchID, err := branchdomain.ParseID(strings.TrimSpace(req.BranchID))
	if err != nil {
		return nil, ErrInvalidBranchID
	}
	if _, _, err := period.Bounds(req.Month, req.Year); err != nil {
		return nil, ErrInvalidPeriod
	}

	branch, err := s.branchRepo.FindByID(ctx, s.db, branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}

	areaName := ""
	if area, err := s.areaRepo.FindByID(ctx, s.db, branch.AreaID); err == nil && area != nil {
		areaName = area.Name
	}

	records, err := s.monthly.List(ctx, s.db, monthlydomain.ListFilter{
		BranchID: branchID,
		Month:    req.Month,
		Year:     req.Year,
	})
	if err != nil {
		return nil, err
	}

	names, err := s.nameRepo.ListByBranch(ctx, s.db, branchID, false)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[int64]string, len(names))
	for _, n := range names {
		nameByID[int64(n.ID)] = n.Name
	}

	types, err := s.typeRepo.List(ctx, s.db, false)
	if err != nil {
		return nil, err
	}
	typeByID := make(map[int64]string, len(types))
	for _, t := range types {
		typeByID[int64(t.ID)] = t.Name
	}

	data := pdf.MonthlyDatasheet{
		BranchName: branch.Name,
		AreaName:   areaName,
		Period:     fmt.Sprintf("%s %d", time.Month(req.Month).String(), req.Year),
		Generated:  s.clock.Now().UTC().Format("2006-01-02 15:04 MST"),
	}

	var totalProduction, totalHours, totalInterruptions, totalInterruptHrs float64
	for _, rec := range records {
		totalProduction += rec.ProductionVolume
		totalHours += rec.OperationHours
		totalInterruptions += rec.ServiceInterruption
		totalInterruptHrs += rec.TotalHoursServiceInterruption

		data.Rows = append(data.Rows, pdf.DatasheetRow{
			SourceName:      nameByID[int64(rec.SourceNameID)],
			SourceType:      typeByID[int64(rec.SourceTypeID)],
			Production:      formatNumber(rec.ProductionVolume),
			OperationHours:  formatNumber(rec.OperationHours),
			Interruptions:   formatNumber(rec.ServiceInterruption),
			InterruptionHrs: formatNumber(rec.TotalHoursServiceInterruption),
			Status:          approval.Label(rec.StatusID),
		})
	}

	data.TotalProduction = formatNumber(totalProduction)
	data.TotalOperationHrs = formatNumber(totalHours)
	data.TotalInterruptions = formatNumber(totalInterruptions)
	data.TotalInterruptHrs = formatNumber(totalInterruptHrs)

	return pdf.RenderMonthlyDatasheet(data)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
