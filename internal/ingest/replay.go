package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// IngestFile parses a file holding one response or a list of them and processes it.
func (i Ingester) IngestFile(ctx context.Context, path string, origin Origin) (Summary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	payload, err := gqljson.Parse(content)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	return i.ProcessAll(ctx, payload, origin)
}

// ReplayDir processes every *.json file under dir as a replay, in lexical order. Files that are
// not valid json are reported and skipped, database errors stop the replay.
func (i Ingester) ReplayDir(ctx context.Context, dir string) (Summary, error) {
	ctx, span := tracer.Start(ctx, "ReplayDir")
	defer span.End()
	span.SetAttributes(attribute.String("dir", dir))

	var summary Summary
	files := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		files++
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		payload, err := gqljson.Parse(content)
		if err != nil {
			i.tel.ReportWarning(
				report_payload_shape,
				telemetry.KV{Key: "file", Value: path},
				err,
			)
			summary.Skipped++
			return nil
		}
		result, err := i.ProcessAll(ctx, payload, REPLAY)
		summary.Add(result)
		return err
	})
	if err != nil {
		recordError(span, err)
		return summary, err
	}

	i.tel.ReportCount("ingest.replay-files", int64(files))
	return summary, nil
}
