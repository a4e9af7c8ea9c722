package utils

import (
	"encoding/json"
	"flag"
	"testing"
)

func TestToFloat64Ok(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{nil, 0, false},
		{float64(1.5), 1.5, true},
		{int(3), 3, true},
		{int64(-7), -7, true},
		{uint64(42), 42, true},
		{"2.25", 2.25, true},
		{"nope", 0, false},
		{json.Number("9"), 9, true},
		{struct{}{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat64Ok(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToFloat64Ok(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{int64(12), "12"},
		{3.5, "3.5"},
		{true, "true"},
		{uint64(8), "8"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.Interval != 1000 {
		t.Errorf("Interval = %d; want 1000", cfg.Interval)
	}
	if cfg.Format != "csv" {
		t.Errorf("Format = %q; want csv", cfg.Format)
	}
	if cfg.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if cfg.Hostname == "" {
		t.Error("Hostname is empty")
	}
}

func TestGetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := NewConfig()
	GetFlags(fs, cfg)

	err := fs.Parse([]string{"-no-nvidia", "-interval", "250", "-format", "jsonl"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.DisableNvidia {
		t.Error("no-nvidia flag not applied")
	}
	if cfg.Interval != 250 {
		t.Errorf("Interval = %d; want 250", cfg.Interval)
	}
	if cfg.Format != "jsonl" {
		t.Errorf("Format = %q; want jsonl", cfg.Format)
	}
}
