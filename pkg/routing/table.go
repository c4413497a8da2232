package routing

// FallbackPrefix namespaces OBIS codes that have no configured topic path,
// so unmapped codes stay observable downstream instead of being dropped.
const FallbackPrefix = "unidentified_code/"

// Table maps OBIS codes to topic paths. Read-only after construction; safe
// to share across any number of readers.
type Table map[string]string

// DefaultTable returns the standard DSMR code-to-topic mapping.
func DefaultTable() Table {
	return Table{
		"1-3:0.2.8":    "status/dsmr_version",
		"0-0:1.0.0":    "status/current_time",
		"0-0:96.1.1":   "status/equipment_id",
		"0-0:96.14.0":  "electricity/status/tariff_indicator",
		"0-0:17.0.0":   "electricity/status/threshold",
		"0-0:96.7.21":  "electricity/status/power_failures",
		"0-0:96.7.9":   "electricity/status/long_power_failures",
		"1-0:99.97.0":  "electricity/status/power_failure_event_log",
		"0-0:96.13.0":  "status/text_message",
		"1-0:1.8.1":    "electricity/cumulative/consumed/tariff_1",
		"1-0:1.8.2":    "electricity/cumulative/consumed/tariff_2",
		"1-0:2.8.1":    "electricity/cumulative/delivered/tariff_1",
		"1-0:2.8.2":    "electricity/cumulative/delivered/tariff_2",
		"1-0:1.7.0":    "electricity/actual/power/consumed/total",
		"1-0:21.7.0":   "electricity/actual/power/consumed/phase_1",
		"1-0:41.7.0":   "electricity/actual/power/consumed/phase_2",
		"1-0:61.7.0":   "electricity/actual/power/consumed/phase_3",
		"1-0:2.7.0":    "electricity/actual/power/delivered/total",
		"1-0:22.7.0":   "electricity/actual/power/delivered/phase_1",
		"1-0:42.7.0":   "electricity/actual/power/delivered/phase_2",
		"1-0:62.7.0":   "electricity/actual/power/delivered/phase_3",
		"1-0:31.7.0":   "electricity/actual/current/phase_1",
		"1-0:51.7.0":   "electricity/actual/current/phase_2",
		"1-0:71.7.0":   "electricity/actual/current/phase_3",
		"1-0:32.7.0":   "electricity/actual/voltage/phase_1",
		"1-0:52.7.0":   "electricity/actual/voltage/phase_2",
		"1-0:72.7.0":   "electricity/actual/voltage/phase_3",
		"1-0:32.32.0":  "electricity/status/voltage_sags/phase_1",
		"1-0:52.32.0":  "electricity/status/voltage_sags/phase_2",
		"1-0:72.32.0":  "electricity/status/voltage_sags/phase_3",
		"1-0:32.36.0":  "electricity/status/voltage_swells/phase_1",
		"1-0:52.36.0":  "electricity/status/voltage_swells/phase_2",
		"1-0:72.36.0":  "electricity/status/voltage_swells/phase_3",
		"0-1:24.2.1":   "gas/cumulative/consumed",
		"0-1:96.1.0":   "gas/status/equipment_id",
	}
}

// WithOverrides returns a copy of t with the given entries applied on top.
// The receiver is left untouched.
func (t Table) WithOverrides(overrides map[string]string) Table {
	merged := make(Table, len(t)+len(overrides))
	for code, path := range t {
		merged[code] = path
	}
	for code, path := range overrides {
		merged[code] = path
	}
	return merged
}

// Route resolves an OBIS code to its topic path. Unknown codes map to a
// deterministic fallback path under FallbackPrefix. Pure; never fails.
func (t Table) Route(code string) string {
	if path, ok := t[code]; ok {
		return path
	}
	return FallbackPrefix + code
}
