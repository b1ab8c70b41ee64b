// Package fields defines the measurement field catalog shared by the daily
// and monthly collection sheets. Required-field configuration, record
// validation, and the monthly aggregator all resolve field keys against it.
package fields

const (
	FormDaily   = "daily"
	FormMonthly = "monthly"
)

const (
	KindNumber = "number"
	KindText   = "text"
	KindChoice = "choice"
)

type Definition struct {
	Key   string
	Label string
	Kind  string
	// Auto marks monthly fields populated by the aggregator. They are
	// never user-editable and never appear in required-field sets.
	Auto bool
}

// Daily collection sheet fields.
var dailyDefinitions = []Definition{
	{Key: "productionVolume", Label: "Production Volume (cu.m)", Kind: KindNumber},
	{Key: "operationHours", Label: "Operation Hours", Kind: KindNumber},
	{Key: "serviceInterruption", Label: "Service Interruptions", Kind: KindNumber},
	{Key: "totalHoursServiceInterruption", Label: "Total Hours of Service Interruption", Kind: KindNumber},
	{Key: "electricityConsumption", Label: "Electricity Consumption (kWh)", Kind: KindNumber},
	{Key: "voltageL1", Label: "Voltage L1 (V)", Kind: KindNumber},
	{Key: "voltageL2", Label: "Voltage L2 (V)", Kind: KindNumber},
	{Key: "voltageL3", Label: "Voltage L3 (V)", Kind: KindNumber},
	{Key: "currentL1", Label: "Current L1 (A)", Kind: KindNumber},
	{Key: "currentL2", Label: "Current L2 (A)", Kind: KindNumber},
	{Key: "currentL3", Label: "Current L3 (A)", Kind: KindNumber},
	{Key: "powerFactor", Label: "Power Factor", Kind: KindNumber},
	{Key: "frequency", Label: "Frequency (Hz)", Kind: KindNumber},
	{Key: "kwhReading", Label: "kWh Meter Reading", Kind: KindNumber},
	{Key: "demandKw", Label: "Demand (kW)", Kind: KindNumber},
	{Key: "remarks", Label: "Remarks", Kind: KindText},
}

// Monthly collection sheet fields. The first four mirror the daily sheet
// and are filled by the aggregator.
var monthlyDefinitions = []Definition{
	{Key: "productionVolume", Label: "Production Volume (cu.m)", Kind: KindNumber, Auto: true},
	{Key: "operationHours", Label: "Operation Hours", Kind: KindNumber, Auto: true},
	{Key: "serviceInterruption", Label: "Service Interruptions", Kind: KindNumber, Auto: true},
	{Key: "totalHoursServiceInterruption", Label: "Total Hours of Service Interruption", Kind: KindNumber, Auto: true},
	{Key: "electricityCost", Label: "Electricity Cost", Kind: KindNumber},
	{Key: "bulkWaterCost", Label: "Bulk Water Cost", Kind: KindNumber},
	{Key: "bulkOuttake", Label: "Bulk Outtake Point", Kind: KindChoice},
	{Key: "chlorineConsumed", Label: "Chlorine Consumed (kg)", Kind: KindNumber},
	{Key: "chlorineCost", Label: "Chlorine Cost", Kind: KindNumber},
	{Key: "alumConsumed", Label: "Alum Consumed (kg)", Kind: KindNumber},
	{Key: "alumCost", Label: "Alum Cost", Kind: KindNumber},
	{Key: "laborCost", Label: "Labor Cost", Kind: KindNumber},
	{Key: "maintenanceCost", Label: "Maintenance Cost", Kind: KindNumber},
	{Key: "fuelCost", Label: "Fuel Cost", Kind: KindNumber},
	{Key: "otherCost", Label: "Other Cost", Kind: KindNumber},
	{Key: "hoursOfSupply", Label: "Hours of Supply", Kind: KindNumber},
	{Key: "activeConnections", Label: "Active Connections", Kind: KindNumber},
	{Key: "newConnections", Label: "New Connections", Kind: KindNumber},
	{Key: "disconnections", Label: "Disconnections", Kind: KindNumber},
	{Key: "remarks", Label: "Remarks", Kind: KindText},
}

var (
	dailyByKey   = indexByKey(dailyDefinitions)
	monthlyByKey = indexByKey(monthlyDefinitions)
)

func indexByKey(defs []Definition) map[string]Definition {
	m := make(map[string]Definition, len(defs))
	for _, def := range defs {
		m[def.Key] = def
	}
	return m
}

func DailyDefinitions() []Definition {
	out := make([]Definition, len(dailyDefinitions))
	copy(out, dailyDefinitions)
	return out
}

func MonthlyDefinitions() []Definition {
	out := make([]Definition, len(monthlyDefinitions))
	copy(out, monthlyDefinitions)
	return out
}

// Lookup resolves a field key on a form. ok is false for unknown keys.
func Lookup(form, key string) (Definition, bool) {
	switch form {
	case FormDaily:
		def, ok := dailyByKey[key]
		return def, ok
	case FormMonthly:
		def, ok := monthlyByKey[key]
		return def, ok
	}
	return Definition{}, false
}

// Configurable reports whether the field may appear in a required-field
// set for the form. Auto-summed monthly fields never qualify.
func Configurable(form, key string) bool {
	def, ok := Lookup(form, key)
	if !ok {
		return false
	}
	return !def.Auto
}

func ValidForm(form string) bool {
	return form == FormDaily || form == FormMonthly
}

// AutoSummedKeys lists the monthly fields filled by the aggregator, in
// catalog order.
func AutoSummedKeys() []string {
	keys := make([]string, 0, 4)
	for _, def := range monthlyDefinitions {
		if def.Auto {
			keys = append(keys, def.Key)
		}
	}
	return keys
}
