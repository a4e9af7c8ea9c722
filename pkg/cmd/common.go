// Package cmd implements the CLI subcommands.
package cmd

import (
	"flag"

	"GpuVkUsage/pkg/collecting"
	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/utils"
)

// CmdContext holds the resources a subcommand needs after flag parsing.
type CmdContext struct {
	Manager *collecting.Manager
	Config  *utils.Config
}

// InitCmd parses flags, builds the collector manager and takes the static
// snapshot. The returned cleanup closes the collectors.
func InitCmd(name string, args []string) (*CmdContext, func()) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfg := utils.NewConfig()
	utils.GetFlags(fs, cfg)
	fs.Parse(args)

	manager := collecting.NewManager(cfg)
	manager.CollectStatic(&metrics.Static{
		SessionID: cfg.SessionID,
		Hostname:  cfg.Hostname,
	})

	ctx := &CmdContext{Manager: manager, Config: cfg}
	return ctx, manager.Close
}

// graphDir resolves the chart output directory, defaulting to "graphs".
func graphDir(cfg *utils.Config) string {
	if cfg.GraphDir != "" {
		return cfg.GraphDir
	}
	return "graphs"
}
