// Package inbox picks up payload files the browser collaborator drops into a directory.
package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"ttvdrops/internal/assert"
	"ttvdrops/internal/chrono"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/ingest"
	"ttvdrops/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("internal/inbox")

const (
	report_move     = "inbox.move"
	report_read     = "inbox.read"
	report_ingest   = "inbox.ingest"
	report_bad_json = "inbox.bad-json"
)

type Dirs struct {
	Inbox     string
	Processed string
	Failed    string
}

type Inbox struct {
	ingester ingest.Ingester
	tel      telemetry.API
	dirs     Dirs
	running  *sync.Mutex
}

func NewInbox(ingester ingest.Ingester, tel telemetry.API, dirs Dirs) Inbox {
	assert.NotNil(tel)
	assert.NotEmptyStr(dirs.Inbox)
	assert.NotEmptyStr(dirs.Processed)
	assert.NotEmptyStr(dirs.Failed)
	return Inbox{
		ingester: ingester,
		tel:      tel,
		dirs:     dirs,
		running:  &sync.Mutex{},
	}
}

// Schedule drains the inbox on every tick of spec.
func (i Inbox) Schedule(ctx context.Context, cron chrono.CronAPI, spec string) error {
	return cron.Cron(spec, func() {
		summary, err := i.Drain(ctx)
		if err != nil {
			i.tel.ReportBroken(report_ingest, err)
			return
		}
		if summary != (ingest.Summary{}) {
			i.tel.ReportDebug(
				"inbox drained",
				telemetry.KV{Key: "drop_campaigns", Value: summary.DropCampaigns},
				telemetry.KV{Key: "reward_campaigns", Value: summary.RewardCampaigns},
				telemetry.KV{Key: "skipped", Value: summary.Skipped},
			)
		}
	})
}

func (i Inbox) pending() ([]string, error) {
	entries, err := os.ReadDir(i.dirs.Inbox)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (i Inbox) move(name, dir string) {
	err := os.MkdirAll(dir, 0777)
	if err == nil {
		err = os.Rename(filepath.Join(i.dirs.Inbox, name), filepath.Join(dir, name))
	}
	if err != nil {
		i.tel.ReportBroken(report_move, telemetry.KV{Key: "file", Value: name}, err)
	}
}

// Drain ingests every *.json file currently in the inbox as live data. Ingested files move to
// the processed directory, files that do not parse move to the failed directory. A storage error
// stops the pass and leaves the file in place for the next one. Overlapping calls return
// immediately.
func (i Inbox) Drain(ctx context.Context) (ingest.Summary, error) {
	if !i.running.TryLock() {
		i.tel.ReportDebug("inbox pass already running")
		return ingest.Summary{}, nil
	}
	defer i.running.Unlock()

	ctx, span := tracer.Start(ctx, "Drain")
	defer span.End()

	names, err := i.pending()
	if err != nil {
		i.tel.ReportBroken(report_read, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ingest.Summary{}, err
	}
	span.SetAttributes(attribute.Int("files", len(names)))

	var summary ingest.Summary
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		content, err := os.ReadFile(filepath.Join(i.dirs.Inbox, name))
		if err != nil {
			i.tel.ReportBroken(report_read, telemetry.KV{Key: "file", Value: name}, err)
			continue
		}
		payload, err := gqljson.Parse(content)
		if err != nil {
			i.tel.ReportWarning(report_bad_json, telemetry.KV{Key: "file", Value: name}, err)
			summary.Skipped++
			i.move(name, i.dirs.Failed)
			continue
		}

		result, err := i.ingester.ProcessAll(ctx, payload, ingest.LIVE)
		summary.Add(result)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return summary, err
		}
		i.move(name, i.dirs.Processed)
	}
	return summary, nil
}
