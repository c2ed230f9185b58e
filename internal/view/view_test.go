package view

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"ttvdrops/internal/db"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/ingest"
	"ttvdrops/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func campaignPayload(id, gameID, gameName, status, endAt, drops string) string {
	return `{"data": {"user": {"dropCampaign": {
		"id": "` + id + `",
		"name": "Campaign ` + id + `",
		"status": "` + status + `",
		"endAt": "` + endAt + `",
		"game": {"id": "` + gameID + `", "displayName": "` + gameName + `", "__typename": "Game"},
		"timeBasedDrops": ` + drops + `,
		"__typename": "DropCampaign"
	}}}}`
}

func dropPayload(id string, minutes int, imageURL string) string {
	return `{
		"id": "` + id + `",
		"name": "Drop ` + id + `",
		"requiredMinutesWatched": ` + strconv.Itoa(minutes) + `,
		"benefitEdges": [{"benefit": {"id": "B` + id + `", "name": "Benefit ` + id + `", "imageAssetURL": "` + imageURL + `", "__typename": "DropBenefit"}}],
		"__typename": "TimeBasedDrop"
	}`
}

func setupView(t *testing.T, payloads ...string) View {
	setup := testutil.SetupService(t, testutil.ServiceParams{Name: "view"})
	ingester := ingest.NewIngester(db.NewMakeTx(setup.DB), setup.Time, setup.Tel)
	for _, payload := range payloads {
		_, err := ingester.Process(context.Background(), gqljson.MustParse(payload), ingest.LIVE)
		require.NoError(t, err)
	}
	return NewView(db.New(setup.DB), setup.Time, setup.Tel)
}

func TestActiveGames(t *testing.T) {
	v := setupView(t,
		campaignPayload("DC1", "G1", "Late Game", "ACTIVE", "2024-08-20T00:00:00Z",
			`[`+dropPayload("T2", 120, "https://example.com/t2.png")+`,`+dropPayload("T1", 60, "")+`]`),
		campaignPayload("DC2", "G2", "Early Game", "ACTIVE", "2024-08-05T00:00:00Z",
			`[`+dropPayload("T3", 30, "https://example.com/t3.png")+`]`),
		campaignPayload("DC3", "G1", "Late Game", "ACTIVE", "2024-08-10T00:00:00Z",
			`[`+dropPayload("T4", 10, "https://example.com/t4.png")+`]`),
		// ended, expired and empty campaigns never show up
		campaignPayload("DC4", "G3", "Old Game", "ACTIVE", "2024-07-01T00:00:00Z",
			`[`+dropPayload("T5", 10, "")+`]`),
		campaignPayload("DC5", "G3", "Old Game", "EXPIRED", "2024-09-01T00:00:00Z",
			`[`+dropPayload("T6", 10, "")+`]`),
		campaignPayload("DC6", "G4", "Empty Game", "ACTIVE", "2024-08-02T00:00:00Z", `[]`),
	)

	games, err := v.ActiveGames(context.Background())
	require.NoError(t, err)

	type summary struct {
		Game      string
		Campaigns []string
	}
	var got []summary
	for _, game := range games {
		s := summary{Game: game.Name}
		for _, campaign := range game.Campaigns {
			s.Campaigns = append(s.Campaigns, campaign.TwitchID)
		}
		got = append(got, s)
	}
	expected := []summary{
		{Game: "Early Game", Campaigns: []string{"DC2"}},
		{Game: "Late Game", Campaigns: []string{"DC3", "DC1"}},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("active games mismatch (-expected +got):\n%s", diff)
	}

	drops := games[1].Campaigns[1].Drops
	require.Len(t, drops, 2)
	require.Equal(t, "T1", drops[0].TwitchID)
	require.Equal(t, DEFAULT_DROP_IMAGE, drops[0].ImageUrl)
	require.Equal(t, "T2", drops[1].TwitchID)
	require.Equal(t, "https://example.com/t2.png", drops[1].ImageUrl)
	require.Equal(t, int64(120), drops[1].RequiredMinutesWatched)
	require.Equal(t, "Benefit T2", drops[1].Benefits[0].Name)
	require.True(t, games[1].Campaigns[1].EndsAt.Equal(time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)))
}

func TestActiveGamesFixture(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "ingest", "testdata", "drop_campaign.json"))
	require.NoError(t, err)
	v := setupView(t, string(content))

	games, err := v.ActiveGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)

	game := games[0]
	require.Equal(t, "Rust", game.Name)
	require.Equal(t, "Facepunch Studios", game.Owner)
	require.Equal(t, "https://www.twitch.tv/directory/game/rust", game.GameUrl)
	require.Len(t, game.Campaigns, 1)

	campaign := game.Campaigns[0]
	require.Equal(t, "Rust Summer Drops", campaign.Name)
	require.NotNil(t, campaign.StartsAt)
	require.Len(t, campaign.Channels, 2)
	require.ElementsMatch(t, []string{"https://www.twitch.tv/eslcs", "https://www.twitch.tv/xqc"},
		[]string{campaign.Channels[0].TwitchUrl, campaign.Channels[1].TwitchUrl})
	require.Equal(t, []string{"Summer Hoodie", "Rusty Crate"}, []string{campaign.Drops[0].Name, campaign.Drops[1].Name})
}

func TestActiveRewardCampaigns(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "ingest", "testdata", "reward_campaigns.json"))
	require.NoError(t, err)

	setup := testutil.SetupService(t, testutil.ServiceParams{Name: "view"})
	ingester := ingest.NewIngester(db.NewMakeTx(setup.DB), setup.Time, setup.Tel)
	_, err = ingester.ProcessAll(context.Background(), gqljson.MustParse(string(content)), ingest.LIVE)
	require.NoError(t, err)
	v := NewView(db.New(setup.DB), setup.Time, setup.Tel)

	campaigns, err := v.ActiveRewardCampaigns(context.Background())
	require.NoError(t, err)
	// the Rust pack ended in july
	require.Len(t, campaigns, 1)
	require.Equal(t, "dc4ff0b4-4de0-11ef-9ec3-621fb0811846", campaigns[0].TwitchID)
	require.Len(t, campaigns[0].Rewards, 1)
	require.Equal(t, "1 Month of Game Pass Ultimate", campaigns[0].Rewards[0].Name)

	setup.Time.Advance(60 * 24 * time.Hour)
	campaigns, err = v.ActiveRewardCampaigns(context.Background())
	require.NoError(t, err)
	require.Empty(t, campaigns)
}
