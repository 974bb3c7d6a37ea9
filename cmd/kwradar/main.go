package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kwradar",
		Short: "Score keyword opportunities, cluster topics, and synthesize content ideas",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(analyzeCmd())
	root.AddCommand(ideasCmd())
	root.AddCommand(discoverCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func analyzeCmd() *cobra.Command {
	var (
		file       string
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a keyword CSV/TSV export and store the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(file, jsonOutput, limit)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "keyword export file (.csv or .tsv)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "max keywords to show")
	cmd.MarkFlagRequired("file")
	return cmd
}

func ideasCmd() *cobra.Command {
	var (
		runID      int64
		minScore   float64
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Show content ideas from a stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdeas(runID, minScore, jsonOutput, limit)
		},
	}

	cmd.Flags().Int64Var(&runID, "run", 0, "run ID (default: latest)")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum combined score")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "max ideas to show")
	return cmd
}

func discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Harvest candidate keyword phrases from configured feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover()
		},
	}
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		runID int64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a run's content ideas as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(runID, out)
		},
	}

	cmd.Flags().Int64Var(&runID, "run", 0, "run ID (default: latest)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: stdout)")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
