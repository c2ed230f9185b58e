package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"ttvdrops/internal/db"
	"ttvdrops/internal/ingest"
	"ttvdrops/internal/testutil"

	"github.com/stretchr/testify/require"
)

const payload = `{"data":{"user":{"dropCampaign":{"id":"DC1","name":"Test Campaign","status":"ACTIVE","game":{"id":"G1","displayName":"Acme Quest","__typename":"Game"},"__typename":"DropCampaign"}}}}`

type fakeCron struct {
	mutex     sync.Mutex
	specs     []string
	callbacks []func()
}

func (c *fakeCron) Cron(spec string, callback func()) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.specs = append(c.specs, spec)
	c.callbacks = append(c.callbacks, callback)
	return nil
}

func setupInbox(t *testing.T) (Inbox, Dirs, testutil.ServiceResult) {
	setup := testutil.SetupService(t, testutil.ServiceParams{Name: "inbox"})
	root := t.TempDir()
	dirs := Dirs{
		Inbox:     filepath.Join(root, "inbox"),
		Processed: filepath.Join(root, "inbox", "processed"),
		Failed:    filepath.Join(root, "inbox", "failed"),
	}
	require.NoError(t, os.MkdirAll(dirs.Inbox, 0777))
	ingester := ingest.NewIngester(db.NewMakeTx(setup.DB), setup.Time, setup.Tel)
	return NewInbox(ingester, setup.Tel, dirs), dirs, setup
}

func listDir(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

func TestDrain(t *testing.T) {
	inbox, dirs, setup := setupInbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(dirs.Inbox, "a.json"), []byte(payload), 0666))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.Inbox, "b.json"), []byte(`{"data": `), 0666))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.Inbox, "notes.txt"), []byte(`ignored`), 0666))

	summary, err := inbox.Drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, ingest.Summary{DropCampaigns: 1, Skipped: 1}, summary)

	require.Equal(t, []string{"notes.txt"}, listDir(t, dirs.Inbox))
	require.Equal(t, []string{"a.json"}, listDir(t, dirs.Processed))
	require.Equal(t, []string{"b.json"}, listDir(t, dirs.Failed))
	require.Equal(t, 1, setup.Tel.Count(report_bad_json))

	campaign, err := db.New(setup.DB).GetDropCampaign(context.Background(), "DC1")
	require.NoError(t, err)
	require.Equal(t, "Test Campaign", campaign.Name.String)

	summary, err = inbox.Drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, ingest.Summary{}, summary)
}

func TestDrainMissingDir(t *testing.T) {
	inbox, dirs, _ := setupInbox(t)
	require.NoError(t, os.RemoveAll(dirs.Inbox))

	summary, err := inbox.Drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, ingest.Summary{}, summary)
}

func TestSchedule(t *testing.T) {
	inbox, dirs, _ := setupInbox(t)
	cron := &fakeCron{}
	require.NoError(t, inbox.Schedule(context.Background(), cron, "@every 1m"))
	require.Equal(t, []string{"@every 1m"}, cron.specs)

	require.NoError(t, os.WriteFile(filepath.Join(dirs.Inbox, "a.json"), []byte(payload), 0666))
	cron.callbacks[0]()
	require.Equal(t, []string{"a.json"}, listDir(t, dirs.Processed))
}
