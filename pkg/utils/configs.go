package utils

import (
	"flag"
	"os"

	"github.com/google/uuid"
)

type Config struct {
	DisableBattery bool
	DisableCPU     bool
	DisableMemory  bool
	DisableNetwork bool
	DisableIO      bool
	DisableGPU     bool
	DisableNvidia  bool
	Concurrent     bool
	Format         string
	OutputFile     string
	Interval       int
	Summary        bool
	Graphs         bool
	GraphDir       string
	SessionID      string
	Hostname       string
}

func NewConfig() *Config {
	return &Config{
		Interval:  1000,
		Format:    "csv",
		SessionID: uuid.NewString(),
		Hostname:  GetHostname(),
	}
}

func GetFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.Concurrent, "concurrent", false, "Enable concurrent collection")
	fs.BoolVar(&cfg.DisableBattery, "no-battery", false, "Disable battery metrics")
	fs.BoolVar(&cfg.DisableCPU, "no-cpu", false, "Disable CPU metrics")
	fs.BoolVar(&cfg.DisableMemory, "no-memory", false, "Disable memory metrics")
	fs.BoolVar(&cfg.DisableNetwork, "no-net", false, "Disable network metrics")
	fs.BoolVar(&cfg.DisableIO, "no-io", false, "Disable process IO metrics")
	fs.BoolVar(&cfg.DisableGPU, "no-gpu", false, "Disable GPU node metrics")
	fs.BoolVar(&cfg.DisableNvidia, "no-nvidia", false, "Disable NVML GPU metrics")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format: csv, tsv, jsonl, parquet")
	fs.StringVar(&cfg.OutputFile, "output", "", "Output file path")
	fs.IntVar(&cfg.Interval, "interval", cfg.Interval, "Collection interval (ms)")
	fs.BoolVar(&cfg.Summary, "summary", false, "Write a session summary beside the output file")
	fs.BoolVar(&cfg.Graphs, "graphs", false, "Generate graphs after collection")
	fs.StringVar(&cfg.GraphDir, "graph-dir", "", "Graph output directory")
}

func GetHostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
