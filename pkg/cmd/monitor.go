package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GpuVkUsage/pkg/exporting"
	"GpuVkUsage/pkg/graphing"
)

// Monitor collects samples on a fixed interval until interrupted, then
// optionally writes a session summary and charts.
func Monitor(args []string) {
	cmdCtx, cleanup := InitCmd("monitor", args)
	defer cleanup()
	cfg := cmdCtx.Config

	exporter, err := exporting.NewExporter(cfg)
	if err != nil {
		log.Fatalf("Failed to create exporter: %v", err)
	}
	if err := exporter.WriteStatic(cmdCtx.Manager.GetStatic()); err != nil {
		log.Printf("Failed to write static info: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received %v, stopping", sig)
		cancel()
	}()

	log.Printf("Monitoring every %dms, output: %s", cfg.Interval, exporter.Path())

	ticker := time.NewTicker(time.Duration(cfg.Interval) * time.Millisecond)
	defer ticker.Stop()

	count := 0
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if err := exporter.Write(cmdCtx.Manager.CollectDynamic()); err != nil {
				log.Printf("Failed to write sample: %v", err)
			}
			count++
			if count%100 == 0 {
				if err := exporter.Flush(); err != nil {
					log.Printf("Flush failed: %v", err)
				}
				log.Printf("Collected %d samples", count)
			}
		}
	}

	if err := exporter.Close(); err != nil {
		log.Fatalf("Failed to close output file: %v", err)
	}
	log.Printf("Wrote %d samples to %s", count, exporter.Path())

	if cfg.Summary {
		path, err := exporting.WriteSummary(exporter.Path())
		if err != nil {
			log.Printf("Failed to write summary: %v", err)
		} else {
			log.Printf("Summary written to %s", path)
		}
	}
	if cfg.Graphs {
		path, err := graphing.GenerateCharts(exporter.Path(), graphDir(cfg))
		if err != nil {
			log.Printf("Failed to generate charts: %v", err)
		} else {
			log.Printf("Charts written to %s", path)
		}
	}
}
