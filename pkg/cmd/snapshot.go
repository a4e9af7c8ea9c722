package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"GpuVkUsage/pkg/metrics"
)

// Snapshot takes a single sample and prints it (or writes it to a file)
// as indented JSON alongside the static host description.
func Snapshot(args []string) {
	cmdCtx, cleanup := InitCmd("snapshot", args)
	defer cleanup()
	cfg := cmdCtx.Config

	snapshot := struct {
		Static *metrics.Static `json:"static"`
		Sample *metrics.Sample `json:"sample"`
	}{
		Static: cmdCtx.Manager.GetStatic(),
		Sample: cmdCtx.Manager.CollectDynamic(),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal snapshot: %v", err)
	}

	if cfg.OutputFile == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(cfg.OutputFile, data, 0o644); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}
	log.Printf("Snapshot written to %s", cfg.OutputFile)
}
