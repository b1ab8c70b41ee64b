package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DailyRecord is one day's collection sheet for a source name. Numeric
// measurements are pointers so that fields left blank on the form stay
// distinguishable from measured zeros.
type DailyRecord struct {
	ID           snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	BranchID     snowflake.ID `gorm:"column:branch_id;index:idx_daily_records_branch_date" json:"branch_id"`
	SourceTypeID snowflake.ID `gorm:"column:source_type_id;index" json:"source_type_id"`
	SourceNameID snowflake.ID `gorm:"column:source_name_id;index" json:"source_name_id"`
	Date         time.Time    `gorm:"column:date;index:idx_daily_records_branch_date" json:"date"`

	ProductionVolume              *float64 `gorm:"column:production_volume" json:"productionVolume,omitempty"`
	OperationHours                *float64 `gorm:"column:operation_hours" json:"operationHours,omitempty"`
	ServiceInterruption           *float64 `gorm:"column:service_interruption" json:"serviceInterruption,omitempty"`
	TotalHoursServiceInterruption *float64 `gorm:"column:total_hours_service_interruption" json:"totalHoursServiceInterruption,omitempty"`
	ElectricityConsumption        *float64 `gorm:"column:electricity_consumption" json:"electricityConsumption,omitempty"`
	VoltageL1                     *float64 `gorm:"column:voltage_l1" json:"voltageL1,omitempty"`
	VoltageL2                     *float64 `gorm:"column:voltage_l2" json:"voltageL2,omitempty"`
	VoltageL3                     *float64 `gorm:"column:voltage_l3" json:"voltageL3,omitempty"`
	CurrentL1                     *float64 `gorm:"column:current_l1" json:"currentL1,omitempty"`
	CurrentL2                     *float64 `gorm:"column:current_l2" json:"currentL2,omitempty"`
	CurrentL3                     *float64 `gorm:"column:current_l3" json:"currentL3,omitempty"`
	PowerFactor                   *float64 `gorm:"column:power_factor" json:"powerFactor,omitempty"`
	Frequency                     *float64 `gorm:"column:frequency" json:"frequency,omitempty"`
	KwhReading                    *float64 `gorm:"column:kwh_reading" json:"kwhReading,omitempty"`
	DemandKw                      *float64 `gorm:"column:demand_kw" json:"demandKw,omitempty"`
	Remarks                       string   `gorm:"column:remarks" json:"remarks,omitempty"`

	StatusID  int          `gorm:"column:status_id;index" json:"statusId"`
	Comment   string       `gorm:"column:comment" json:"comment,omitempty"`
	IsActive  bool         `gorm:"column:is_active;index" json:"isActive"`
	CreatedBy snowflake.ID `gorm:"column:created_by" json:"created_by"`
	CreatedAt time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (DailyRecord) TableName() string { return "daily_records" }

// SetValue assigns a measurement by its catalog key.
func (r *DailyRecord) SetValue(key string, number *float64, text string) bool {
	switch key {
	case "productionVolume":
		r.ProductionVolume = number
	case "operationHours":
		r.OperationHours = number
	case "serviceInterruption":
		r.ServiceInterruption = number
	case "totalHoursServiceInterruption":
		r.TotalHoursServiceInterruption = number
	case "electricityConsumption":
		r.ElectricityConsumption = number
	case "voltageL1":
		r.VoltageL1 = number
	case "voltageL2":
		r.VoltageL2 = number
	case "voltageL3":
		r.VoltageL3 = number
	case "currentL1":
		r.CurrentL1 = number
	case "currentL2":
		r.CurrentL2 = number
	case "currentL3":
		r.CurrentL3 = number
	case "powerFactor":
		r.PowerFactor = number
	case "frequency":
		r.Frequency = number
	case "kwhReading":
		r.KwhReading = number
	case "demandKw":
		r.DemandKw = number
	case "remarks":
		r.Remarks = text
	default:
		return false
	}
	return true
}

// Value reads a measurement by its catalog key. The second return is the
// remarks text when the field is textual.
func (r *DailyRecord) Value(key string) (*float64, string, bool) {
	switch key {
	case "productionVolume":
		return r.ProductionVolume, "", true
	case "operationHours":
		return r.OperationHours, "", true
	case "serviceInterruption":
		return r.ServiceInterruption, "", true
	case "totalHoursServiceInterruption":
		return r.TotalHoursServiceInterruption, "", true
	case "electricityConsumption":
		return r.ElectricityConsumption, "", true
	case "voltageL1":
		return r.VoltageL1, "", true
	case "voltageL2":
		return r.VoltageL2, "", true
	case "voltageL3":
		return r.VoltageL3, "", true
	case "currentL1":
		return r.CurrentL1, "", true
	case "currentL2":
		return r.CurrentL2, "", true
	case "currentL3":
		return r.CurrentL3, "", true
	case "powerFactor":
		return r.PowerFactor, "", true
	case "frequency":
		return r.Frequency, "", true
	case "kwhReading":
		return r.KwhReading, "", true
	case "demandKw":
		return r.DemandKw, "", true
	case "remarks":
		return nil, r.Remarks, true
	}
	return nil, "", false
}
