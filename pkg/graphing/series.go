// Package graphing renders a session's metric columns as line charts.
package graphing

import (
	"sort"
	"strings"
	"unicode"

	"GpuVkUsage/pkg/exporting"
	"GpuVkUsage/pkg/utils"
)

// Series is one metric column over the session, aligned to timestamps.
type Series struct {
	Name       string
	Timestamps []int64
	Values     []float64
}

// BuildSeries extracts every numeric column from the records as its own
// series. Records without a timestamp are skipped; columns are returned
// sorted by name.
func BuildSeries(records []exporting.Record) []Series {
	sort.Slice(records, func(i, j int) bool {
		return utils.ToFloat64(records[i]["timestamp"]) < utils.ToFloat64(records[j]["timestamp"])
	})

	byName := make(map[string]*Series)
	for _, record := range records {
		ts, ok := record["timestamp"]
		if !ok {
			continue
		}
		tsNs := int64(utils.ToFloat64(ts))

		for key, val := range record {
			if key == "timestamp" {
				continue
			}
			if _, isString := val.(string); isString {
				continue
			}
			f, ok := utils.ToFloat64Ok(val)
			if !ok {
				continue
			}

			s, exists := byName[key]
			if !exists {
				s = &Series{Name: key}
				byName[key] = s
			}
			s.Timestamps = append(s.Timestamps, tsNs)
			s.Values = append(s.Values, f)
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]Series, 0, len(names))
	for _, name := range names {
		series = append(series, *byName[name])
	}
	return series
}

// formatName turns a camelCase column name into a chart title, so
// frameGpuBusyMs becomes "Frame Gpu Busy Ms".
func formatName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			sb.WriteByte(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
