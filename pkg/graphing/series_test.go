package graphing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"GpuVkUsage/pkg/exporting"
)

func TestBuildSeries(t *testing.T) {
	records := []exporting.Record{
		{"timestamp": int64(200), "frameGpuBusyMs": 9.0, "hostname": "box"},
		{"timestamp": int64(100), "frameGpuBusyMs": 8.0, "cpuLoadPercent": 40.0},
	}

	series := BuildSeries(records)
	if len(series) != 2 {
		t.Fatalf("len(series) = %d; want 2", len(series))
	}

	if series[0].Name != "cpuLoadPercent" || series[1].Name != "frameGpuBusyMs" {
		t.Errorf("series names = %q, %q", series[0].Name, series[1].Name)
	}

	busy := series[1]
	if len(busy.Values) != 2 || busy.Values[0] != 8.0 || busy.Values[1] != 9.0 {
		t.Errorf("busy.Values = %v; want [8 9] in timestamp order", busy.Values)
	}
	if busy.Timestamps[0] != 100 || busy.Timestamps[1] != 200 {
		t.Errorf("busy.Timestamps = %v; want [100 200]", busy.Timestamps)
	}
}

func TestBuildSeriesSkipsRecordsWithoutTimestamp(t *testing.T) {
	records := []exporting.Record{
		{"frameGpuBusyMs": 8.0},
	}
	if series := BuildSeries(records); len(series) != 0 {
		t.Errorf("len(series) = %d; want 0", len(series))
	}
}

func TestFormatName(t *testing.T) {
	cases := map[string]string{
		"frameGpuBusyMs":  "Frame Gpu Busy Ms",
		"gpu0BusyPercent": "Gpu0 Busy Percent",
		"watts":           "Watts",
	}
	for in, want := range cases {
		if got := formatName(in); got != want {
			t.Errorf("formatName(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestGenerateCharts(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "session.csv")
	records := []exporting.Record{
		{"timestamp": int64(1_000_000_000), "frameUsagePercent": 40.0},
		{"timestamp": int64(2_000_000_000), "frameUsagePercent": 60.0},
	}
	if err := exporting.SaveRecords(dataPath, records); err != nil {
		t.Fatalf("SaveRecords() error = %v", err)
	}

	path, err := GenerateCharts(dataPath, filepath.Join(dir, "graphs"))
	if err != nil {
		t.Fatalf("GenerateCharts() error = %v", err)
	}
	if filepath.Base(path) != "session_charts.html" {
		t.Errorf("chart path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "Frame Usage Percent") {
		t.Error("chart page missing series title")
	}
}

func TestGenerateChartsNoNumericColumns(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "session.jsonl")
	records := []exporting.Record{{"hostname": "box"}}
	if err := exporting.SaveRecords(dataPath, records); err != nil {
		t.Fatal(err)
	}
	if _, err := GenerateCharts(dataPath, dir); err == nil {
		t.Error("GenerateCharts() without numeric columns should fail")
	}
}
