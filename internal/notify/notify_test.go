package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ttvdrops/internal/db"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/ingest"
	"ttvdrops/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const campaignPayload = `{"data":{"user":{"dropCampaign":{
	"id": "DC1",
	"name": "Summer Drops",
	"status": "ACTIVE",
	"startAt": "2024-08-01T18:00:00Z",
	"endAt": "2024-08-12T06:00:00Z",
	"owner": {"id": "O1", "name": "Acme", "__typename": "Organization"},
	"game": {"id": "G1", "displayName": "Acme Quest", "__typename": "Game"},
	"__typename": "DropCampaign"
}}}}`

type recordingSink struct {
	mutex    sync.Mutex
	targets  []string
	messages []Message
}

func (s *recordingSink) Send(_ context.Context, target string, msg Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.targets = append(s.targets, target)
	s.messages = append(s.messages, msg)
	return nil
}

func TestNewMessage(t *testing.T) {
	campaign := db.DropCampaign{
		TwitchID: "DC1",
		Name:     sql.NullString{String: "Summer Drops", Valid: true},
		StartsAt: sql.NullTime{Time: time.Unix(1722535200, 0), Valid: true},
	}

	msg := NewMessage("Acme Quest", campaign)
	expected := Message{
		Username: "Acme Quest drop.",
		Title:    "Acme Quest: Summer Drops",
		Content:  "Acme Quest: Summer Drops\nNo description provided.\nStarts: <t:1722535200:R>\nEnds: Unknown",
		Text:     "Acme Quest: Summer Drops\nNo description provided.\nStarts: Thu, 01 Aug 2024 18:00:00 UTC\nEnds: Unknown",
	}
	if diff := cmp.Diff(expected, msg); diff != "" {
		t.Fatalf("message mismatch (-expected +got):\n%s", diff)
	}

	campaign.Description = sql.NullString{String: "Watch to earn.", Valid: true}
	require.Contains(t, NewMessage("Acme", campaign).Content, "\nWatch to earn.\n")
}

func TestDropCampaignCreated(t *testing.T) {
	setup := testutil.SetupService(t, testutil.ServiceParams{Name: "notify"})
	qry := db.New(setup.DB)
	ctx := context.Background()

	gameHook, err := qry.CreateWebhook(ctx, db.CreateWebhookParams{Kind: db.WEBHOOK_DISCORD, Target: "https://discord.test/game", CreatedAt: setup.Time.Now()})
	require.NoError(t, err)
	ownerHook, err := qry.CreateWebhook(ctx, db.CreateWebhookParams{Kind: db.WEBHOOK_DISCORD, Target: "https://discord.test/owner", CreatedAt: setup.Time.Now()})
	require.NoError(t, err)
	mailHook, err := qry.CreateWebhook(ctx, db.CreateWebhookParams{Kind: db.WEBHOOK_EMAIL, Target: "someone@example.com", CreatedAt: setup.Time.Now()})
	require.NoError(t, err)
	require.NoError(t, qry.CreateGameSubscription(ctx, db.CreateGameSubscriptionParams{WebhookID: gameHook, GameID: "G1"}))
	require.NoError(t, qry.CreateGameSubscription(ctx, db.CreateGameSubscriptionParams{WebhookID: mailHook, GameID: "G1"}))
	require.NoError(t, qry.CreateOwnerSubscription(ctx, db.CreateOwnerSubscriptionParams{WebhookID: ownerHook, OwnerID: "O1"}))

	// the email sink is left out on purpose
	sink := &recordingSink{}
	notifier := NewNotifier(qry, setup.Tel).WithSink(db.WEBHOOK_DISCORD, sink)
	ingester := ingest.NewIngester(db.NewMakeTx(setup.DB), setup.Time, setup.Tel).WithNotifier(notifier)

	for range 2 {
		_, err = ingester.Process(ctx, gqljson.MustParse(campaignPayload), ingest.LIVE)
		require.NoError(t, err)
	}

	require.Equal(t, []string{"https://discord.test/game", "https://discord.test/owner"}, sink.targets)
	require.Equal(t, "Acme Quest drop.", sink.messages[0].Username)
	require.Equal(t, "Acme drop.", sink.messages[1].Username)
	require.Contains(t, sink.messages[0].Content, "Acme Quest: Summer Drops")
	require.Contains(t, sink.messages[0].Content, "Ends: <t:1723442400:R>")
	require.Equal(t, 1, setup.Tel.Count(report_unknown_kind))
}

func TestDropCampaignWithoutSubscribers(t *testing.T) {
	setup := testutil.SetupService(t, testutil.ServiceParams{Name: "notify"})
	sink := &recordingSink{}
	notifier := NewNotifier(db.New(setup.DB), setup.Tel).WithSink(db.WEBHOOK_DISCORD, sink)

	notifier.DropCampaignCreated(context.Background(), db.DropCampaign{TwitchID: "DC1"})
	notifier.DropCampaignCreated(context.Background(), db.DropCampaign{
		TwitchID: "DC2",
		GameID:   sql.NullString{String: "missing", Valid: true},
	})
	require.Empty(t, sink.targets)
	require.Equal(t, 0, setup.Tel.Count(report_db_query))
}

func TestDiscordRetriesRateLimit(t *testing.T) {
	var mutex sync.Mutex
	var bodies []discordPayload
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mutex.Lock()
		defer mutex.Unlock()
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var body discordPayload
		err := json.NewDecoder(r.Body).Decode(&body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	discord := NewDiscord()
	discord.client.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(50 * time.Millisecond)

	err := discord.Send(context.Background(), server.URL, Message{Username: "Acme drop.", Content: "hello"})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	require.Equal(t, []discordPayload{{Content: "hello", Username: "Acme drop."}}, bodies)
}

func TestDiscordGivesUp(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	discord := NewDiscord()
	discord.client.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)

	err := discord.Send(context.Background(), server.URL, Message{Content: "hello"})
	require.Error(t, err)
	// the first attempt and three retries
	require.Equal(t, 4, attempts)

	// client errors are not retried
	attempts = 0
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()
	err = discord.Send(context.Background(), notFound.URL, Message{Content: "hello"})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}
