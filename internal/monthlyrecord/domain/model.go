package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MonthlyRecord is a branch's monthly rollup for one source name. The
// four auto-summed totals are always written by the aggregator at
// submission time; the remaining fields are entered manually.
type MonthlyRecord struct {
	ID           snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	BranchID     snowflake.ID `gorm:"column:branch_id;uniqueIndex:idx_monthly_records_period" json:"branch_id"`
	SourceTypeID snowflake.ID `gorm:"column:source_type_id;index" json:"source_type_id"`
	SourceNameID snowflake.ID `gorm:"column:source_name_id;uniqueIndex:idx_monthly_records_period" json:"source_name_id"`
	Month        int          `gorm:"column:month;uniqueIndex:idx_monthly_records_period" json:"month"`
	Year         int          `gorm:"column:year;uniqueIndex:idx_monthly_records_period" json:"year"`

	ProductionVolume              float64 `gorm:"column:production_volume" json:"productionVolume"`
	OperationHours                float64 `gorm:"column:operation_hours" json:"operationHours"`
	ServiceInterruption           float64 `gorm:"column:service_interruption" json:"serviceInterruption"`
	TotalHoursServiceInterruption float64 `gorm:"column:total_hours_service_interruption" json:"totalHoursServiceInterruption"`

	ElectricityCost   *float64 `gorm:"column:electricity_cost" json:"electricityCost,omitempty"`
	BulkWaterCost     *float64 `gorm:"column:bulk_water_cost" json:"bulkWaterCost,omitempty"`
	BulkOuttake       string   `gorm:"column:bulk_outtake" json:"bulkOuttake,omitempty"`
	ChlorineConsumed  *float64 `gorm:"column:chlorine_consumed" json:"chlorineConsumed,omitempty"`
	ChlorineCost      *float64 `gorm:"column:chlorine_cost" json:"chlorineCost,omitempty"`
	AlumConsumed      *float64 `gorm:"column:alum_consumed" json:"alumConsumed,omitempty"`
	AlumCost          *float64 `gorm:"column:alum_cost" json:"alumCost,omitempty"`
	LaborCost         *float64 `gorm:"column:labor_cost" json:"laborCost,omitempty"`
	MaintenanceCost   *float64 `gorm:"column:maintenance_cost" json:"maintenanceCost,omitempty"`
	FuelCost          *float64 `gorm:"column:fuel_cost" json:"fuelCost,omitempty"`
	OtherCost         *float64 `gorm:"column:other_cost" json:"otherCost,omitempty"`
	HoursOfSupply     *float64 `gorm:"column:hours_of_supply" json:"hoursOfSupply,omitempty"`
	ActiveConnections *float64 `gorm:"column:active_connections" json:"activeConnections,omitempty"`
	NewConnections    *float64 `gorm:"column:new_connections" json:"newConnections,omitempty"`
	Disconnections    *float64 `gorm:"column:disconnections" json:"disconnections,omitempty"`
	Remarks           string   `gorm:"column:remarks" json:"remarks,omitempty"`

	StatusID  int          `gorm:"column:status_id;index" json:"statusId"`
	Comment   string       `gorm:"column:comment" json:"comment,omitempty"`
	IsActive  bool         `gorm:"column:is_active;index" json:"isActive"`
	CreatedBy snowflake.ID `gorm:"column:created_by" json:"created_by"`
	CreatedAt time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (MonthlyRecord) TableName() string { return "monthly_records" }

// SetValue assigns a manually entered field by its catalog key.
// Auto-summed keys are not assignable here.
func (r *MonthlyRecord) SetValue(key string, number *float64, text string) bool {
	switch key {
	case "electricityCost":
		r.ElectricityCost = number
	case "bulkWaterCost":
		r.BulkWaterCost = number
	case "bulkOuttake":
		r.BulkOuttake = text
	case "chlorineConsumed":
		r.ChlorineConsumed = number
	case "chlorineCost":
		r.ChlorineCost = number
	case "alumConsumed":
		r.AlumConsumed = number
	case "alumCost":
		r.AlumCost = number
	case "laborCost":
		r.LaborCost = number
	case "maintenanceCost":
		r.MaintenanceCost = number
	case "fuelCost":
		r.FuelCost = number
	case "otherCost":
		r.OtherCost = number
	case "hoursOfSupply":
		r.HoursOfSupply = number
	case "activeConnections":
		r.ActiveConnections = number
	case "newConnections":
		r.NewConnections = number
	case "disconnections":
		r.Disconnections = number
	case "remarks":
		r.Remarks = text
	default:
		return false
	}
	return true
}

// Value reads a manually entered field by its catalog key.
func (r *MonthlyRecord) Value(key string) (*float64, string, bool) {
	switch key {
	case "electricityCost":
		return r.ElectricityCost, "", true
	case "bulkWaterCost":
		return r.BulkWaterCost, "", true
	case "bulkOuttake":
		return nil, r.BulkOuttake, true
	case "chlorineConsumed":
		return r.ChlorineConsumed, "", true
	case "chlorineCost":
		return r.ChlorineCost, "", true
	case "alumConsumed":
		return r.AlumConsumed, "", true
	case "alumCost":
		return r.AlumCost, "", true
	case "laborCost":
		return r.LaborCost, "", true
	case "maintenanceCost":
		return r.MaintenanceCost, "", true
	case "fuelCost":
		return r.FuelCost, "", true
	case "otherCost":
		return r.OtherCost, "", true
	case "hoursOfSupply":
		return r.HoursOfSupply, "", true
	case "activeConnections":
		return r.ActiveConnections, "", true
	case "newConnections":
		return r.NewConnections, "", true
	case "disconnections":
		return r.Disconnections, "", true
	case "remarks":
		return nil, r.Remarks, true
	}
	return nil, "", false
}
