package cmd

import (
	"flag"
	"log"

	"GpuVkUsage/pkg/graphing"
)

// Graph renders charts for one or more finished session files.
func Graph(args []string) {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	outDir := fs.String("graph-dir", "graphs", "Chart output directory")
	fs.Parse(args)

	files := fs.Args()
	if len(files) == 0 {
		log.Fatal("No data files specified. Usage: gpuvk graph [flags] <file>...")
	}

	for _, file := range files {
		path, err := graphing.GenerateCharts(file, *outDir)
		if err != nil {
			log.Printf("Failed to chart %s: %v", file, err)
			continue
		}
		log.Printf("Charts for %s written to %s", file, path)
	}
}
