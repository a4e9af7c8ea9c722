package exporting

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"GpuVkUsage/pkg/utils"
)

// Summary holds the session statistics for one metric column.
type Summary struct {
	Average float64
	Peak    float64
	P97     float64
	Low1    float64
	Low01   float64
}

// summarize computes the statistics over one column's values. The lows
// are the mean of the lowest 1% and 0.1% of samples, with at least one
// sample contributing to each.
func summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	p97 := int(float64(len(sorted)) * 0.97)
	if p97 >= len(sorted) {
		p97 = len(sorted) - 1
	}

	return Summary{
		Average: sum / float64(len(sorted)),
		Peak:    sorted[len(sorted)-1],
		P97:     sorted[p97],
		Low1:    lowMean(sorted, 0.01),
		Low01:   lowMean(sorted, 0.001),
	}
}

func lowMean(sorted []float64, fraction float64) float64 {
	n := int(float64(len(sorted)) * fraction)
	if n < 1 {
		n = 1
	}
	var sum float64
	for _, v := range sorted[:n] {
		sum += v
	}
	return sum / float64(n)
}

// Summarize computes per-column statistics over all numeric columns.
func Summarize(records []Record) map[string]Summary {
	columns := make(map[string][]float64)
	for _, record := range records {
		for key, val := range record {
			if key == "timestamp" {
				continue
			}
			if f, ok := utils.ToFloat64Ok(val); ok {
				columns[key] = append(columns[key], f)
			}
		}
	}

	summaries := make(map[string]Summary, len(columns))
	for key, values := range columns {
		summaries[key] = summarize(values)
	}
	return summaries
}

// WriteSummary loads a finished session file, summarizes it and writes
// the statistics to <base>_summary.csv. Returns the summary path.
func WriteSummary(dataPath string) (string, error) {
	records, err := LoadRecords(dataPath)
	if err != nil {
		return "", fmt.Errorf("failed to load session data: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("no records in %s", dataPath)
	}

	summaries := Summarize(records)
	keys := make([]string, 0, len(summaries))
	for k := range summaries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("metric,average,peak,p97,low1,low01\n")
	for _, k := range keys {
		s := summaries[k]
		sb.WriteString(fmt.Sprintf("%s,%.4f,%.4f,%.4f,%.4f,%.4f\n",
			k, s.Average, s.Peak, s.P97, s.Low1, s.Low01))
	}

	path := basePath(dataPath) + "_summary.csv"
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}
