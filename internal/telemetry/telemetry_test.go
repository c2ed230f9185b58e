package telemetry

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedRecorder(t *testing.T) {
	recorder := &Recorder{}
	scoped := NewScopedAPI("ttvdrops", recorder).Scope("ingest")

	scoped.ReportWarning("ingest.missing-id", KV{Key: "typename", Value: "Game"})
	scoped.ReportBroken("db.query", errors.New("disk full"))
	scoped.ReportDebug("ignored")

	reports := recorder.Reports()
	require.Len(t, reports, 2)
	require.Equal(t, "ttvdrops:ingest:ingest.missing-id", reports[0].ID)
	require.Equal(t, "warning", reports[0].Level)
	require.Equal(t, "broken", reports[1].Level)
	require.Equal(t, 1, recorder.Count("db.query"))
	require.Equal(t, 0, recorder.Count("ingest.wrong-typename"))
}

func TestAttrs(t *testing.T) {
	got := attrs([]any{KV{Key: "file", Value: "a.json"}, errors.New("bad"), 3})
	require.Equal(t, []slog.Attr{
		slog.Any("file", "a.json"),
		slog.String("err", "bad"),
		slog.Any("params.2", 3),
	}, got)
}
