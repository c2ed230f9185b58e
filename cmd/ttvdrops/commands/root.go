package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"ttvdrops/internal/chrono"
	"ttvdrops/internal/config"
	"ttvdrops/internal/db"
	"ttvdrops/internal/ingest"
	"ttvdrops/internal/notify"
	"ttvdrops/internal/serviceutil"
	"ttvdrops/internal/telemetry"
	"ttvdrops/internal/view"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "ttvdrops",
	Short:         "ttvdrops keeps track of Twitch drop and reward campaigns.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.json5, searched upwards from the working directory by default.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
}

func Execute() {
	ctx := serviceutil.SignalContext()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("ttvdrops", err)
	}
}

// app is everything a command needs, wired from the config.
type app struct {
	cfg      config.Config
	db       *sql.DB
	qry      *db.Queries
	tel      telemetry.ScopedAPI
	time     chrono.TimeAPI
	ingester ingest.Ingester
	view     view.View
}

func openApp(ctx context.Context) (app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return app{}, fmt.Errorf("read config: %w", err)
	}
	telemetry.InitSlog(verbose || cfg.Verbose)

	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return app{}, err
	}

	tel := telemetry.NewScopedAPI("ttvdrops", telemetry.SlogAPI{})
	clock := chrono.NewStandardTime()
	qry := db.New(database)

	notifier := notify.NewNotifier(qry, tel.Scope("notify")).
		WithSink(db.WEBHOOK_DISCORD, notify.NewDiscord())
	if cfg.Smtp.Server != "" {
		notifier = notifier.WithSink(db.WEBHOOK_EMAIL, notify.NewEmail(cfg.Smtp))
	}

	ingester := ingest.NewIngester(db.NewMakeTx(database), clock, tel.Scope("ingest")).
		WithNotifier(notifier)
	if cfg.Archive {
		ingester = ingester.WithArchiver(ingest.NewArchiver(cfg.ArchiveDir()))
	}

	return app{
		cfg:      cfg,
		db:       database,
		qry:      qry,
		tel:      tel,
		time:     clock,
		ingester: ingester,
		view:     view.NewView(qry, clock, tel.Scope("view")),
	}, nil
}

func (a app) Close() {
	a.db.Close()
}

// withApp opens the app for the duration of a command.
func withApp(run func(cmd *cobra.Command, args []string, a app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printSummary(summary ingest.Summary) {
	t := newTable()
	t.AppendHeader(table.Row{"Drop campaigns", "Reward campaigns", "Skipped"})
	t.AppendRow(table.Row{summary.DropCampaigns, summary.RewardCampaigns, summary.Skipped})
	t.Render()
}
