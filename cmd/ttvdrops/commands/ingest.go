package commands

import (
	"ttvdrops/internal/ingest"

	"github.com/spf13/cobra"
)

var origin string

func init() {
	ingestCmd.Flags().StringVar(&origin, "origin", "live", "Where the payloads come from, live or replay.")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(replayCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingests captured GraphQL responses from json files.",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		parsed, err := ingest.ParseOrigin(origin)
		if err != nil {
			return err
		}
		var summary ingest.Summary
		for _, path := range args {
			result, err := a.ingester.IngestFile(cmd.Context(), path, parsed)
			summary.Add(result)
			if err != nil {
				return err
			}
		}
		printSummary(summary)
		return nil
	}),
}

var replayCmd = &cobra.Command{
	Use:   "replay [dir]",
	Short: "Replays every json file under a directory, the archive directory by default.",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		dir := a.cfg.ArchiveDir()
		if len(args) == 1 {
			dir = args[0]
		}
		summary, err := a.ingester.ReplayDir(cmd.Context(), dir)
		printSummary(summary)
		return err
	}),
}
