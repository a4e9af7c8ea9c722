package main

import (
	"fmt"
	"os"

	"GpuVkUsage/pkg/cmd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "monitor", "m":
		cmd.Monitor(args)
	case "snapshot", "ss":
		cmd.Snapshot(args)
	case "graph", "g":
		cmd.Graph(args)
	case "simulate", "sim":
		cmd.Simulate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`GpuVkUsage - GPU busy-time sampler and system metrics collector

Usage:
  gpuvk <command> [flags]

Commands:
  monitor, m      Collect metrics until Ctrl+C
  snapshot, ss    Capture a single metrics snapshot
  graph, g        Generate charts from session files
  simulate, sim   Drive the Vulkan sampler against a synthetic device

Collection Flags:
  -concurrent          Enable concurrent collection
  -no-battery          Disable battery metrics
  -no-cpu              Disable CPU metrics
  -no-memory           Disable memory metrics
  -no-net              Disable network metrics
  -no-io               Disable process IO metrics
  -no-gpu              Disable GPU node metrics
  -no-nvidia           Disable NVML GPU metrics

Output Flags:
  -format string       Output format: csv, tsv, jsonl, parquet (default: csv)
  -output string       Output file path
  -interval int        Collection interval in ms (default: 1000)
  -summary             Write a session summary on exit
  -graphs              Generate charts on exit
  -graph-dir string    Chart output directory (default: graphs)

Simulate Flags:
  -frames int          Number of frames to simulate (default: 300)
  -frame-time int      Simulated frame time in ms (default: 16)
  -busy float          GPU busy fraction per frame in percent (default: 50)

Examples:
  # Monitor at 500ms into parquet, with summary and charts on exit
  gpuvk monitor -interval 500 -format parquet -output run.parquet -summary -graphs

  # Single snapshot to stdout
  gpuvk snapshot -no-battery

  # Charts for a finished session
  gpuvk graph -graph-dir charts run.parquet

  # Exercise the sampler without a GPU
  gpuvk simulate -frames 600 -busy 75
`)
}
