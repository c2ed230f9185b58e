package commands

import (
	"context"
	"time"

	"ttvdrops/internal/api"
	"ttvdrops/internal/chrono"
	"ttvdrops/internal/inbox"
	"ttvdrops/internal/telemetry"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the http api and drains the inbox on a schedule.",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a app) error {
		ctx := cmd.Context()

		otel, err := telemetry.SetupOtel(ctx, "ttvdrops", a.cfg.Telemetry)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := otel.Shutdown(shutdownCtx)
			if err != nil {
				a.tel.ReportBroken("otel.shutdown", err)
			}
		}()
		telemetry.InstrumentPerfStats(ctx)

		cron := chrono.NewStandardCron(a.tel.Scope("cron"))
		if a.cfg.Inbox.Dir != "" {
			box := inbox.NewInbox(a.ingester, a.tel.Scope("inbox"), inbox.Dirs{
				Inbox:     a.cfg.Inbox.Dir,
				Processed: a.cfg.Inbox.ProcessedDir,
				Failed:    a.cfg.Inbox.FailedDir,
			})
			err = box.Schedule(ctx, cron, a.cfg.Inbox.Schedule)
			if err != nil {
				return err
			}
		}
		cron.Start()
		defer cron.Stop()

		server := api.NewServer(a.ingester, a.view, a.tel.Scope("api"), a.cfg.Http.AccessToken)
		return api.Serve(ctx, a.cfg.Http.Addr, server.Handler(), a.tel)
	}),
}
