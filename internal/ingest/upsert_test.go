package ingest

import (
	"context"
	"testing"
	"time"

	"ttvdrops/internal/db"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/testutil"

	"github.com/stretchr/testify/require"
)

func setupUpserter(t *testing.T) (Upserter, testutil.ServiceResult) {
	setup := testutil.SetupService(t, testutil.ServiceParams{Name: "ingest"})
	return NewUpserter(db.New(setup.DB), setup.Time, setup.Tel), setup
}

func TestUpsertIdempotent(t *testing.T) {
	u, setup := setupUpserter(t)
	ctx := context.Background()
	obj := gqljson.MustParse(`{"id": "G1", "displayName": "Acme Quest", "slug": "acme-quest", "__typename": "Game"}`)

	first, err := u.Game(ctx, obj, "")
	require.NoError(t, err)
	require.True(t, first.Created)
	// name, slug and the url derived from the slug
	require.Equal(t, 3, first.Changed)
	require.Equal(t, "https://www.twitch.tv/directory/game/acme-quest", first.Record.GameUrl.String)

	setup.Time.Advance(time.Hour)

	second, err := u.Game(ctx, obj, "")
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, 0, second.Changed)
	require.Equal(t, first.Record.Name, second.Record.Name)
	require.True(t, second.Record.ModifiedAt.Equal(first.Record.ModifiedAt))

	stored, err := db.New(setup.DB).GetGame(ctx, "G1")
	require.NoError(t, err)
	require.True(t, stored.ModifiedAt.Equal(first.Record.ModifiedAt))
	require.True(t, stored.CreatedAt.Equal(stored.ModifiedAt))
}

func TestUpsertNeverErases(t *testing.T) {
	u, setup := setupUpserter(t)
	ctx := context.Background()

	_, err := u.Owner(ctx, gqljson.MustParse(`{"id": "O1", "name": "Foo", "__typename": "Organization"}`))
	require.NoError(t, err)

	for _, payload := range []string{
		`{"id": "O1", "name": null, "__typename": "Organization"}`,
		`{"id": "O1", "__typename": "Organization"}`,
		`{"id": "O1", "name": "", "__typename": "Organization"}`,
		`{"id": "O1", "name": {}, "__typename": "Organization"}`,
		`{"id": "O1", "name": [], "__typename": "Organization"}`,
	} {
		out, err := u.Owner(ctx, gqljson.MustParse(payload))
		require.NoError(t, err)
		require.Equal(t, 0, out.Changed, payload)
		require.Equal(t, "Foo", out.Record.Name.String, payload)
	}

	owner, err := db.New(setup.DB).GetOwner(ctx, "O1")
	require.NoError(t, err)
	require.Equal(t, "Foo", owner.Name.String)
}

func TestUpsertAppliesFalseAndZero(t *testing.T) {
	u, _ := setupUpserter(t)
	ctx := context.Background()

	first, err := u.Benefit(ctx, gqljson.MustParse(`{
		"id": "B1",
		"isIosAvailable": true,
		"entitlementLimit": 3,
		"__typename": "DropBenefit"
	}`), "", "")
	require.NoError(t, err)
	require.True(t, first.Record.IsIosAvailable.Bool)

	second, err := u.Benefit(ctx, gqljson.MustParse(`{
		"id": "B1",
		"isIosAvailable": false,
		"entitlementLimit": 0,
		"__typename": "DropBenefit"
	}`), "", "")
	require.NoError(t, err)
	require.Equal(t, 2, second.Changed)
	require.True(t, second.Record.IsIosAvailable.Valid)
	require.False(t, second.Record.IsIosAvailable.Bool)
	require.True(t, second.Record.EntitlementLimit.Valid)
	require.Equal(t, int64(0), second.Record.EntitlementLimit.Int64)
}

func TestUpsertModifiedAt(t *testing.T) {
	u, setup := setupUpserter(t)
	ctx := context.Background()
	createdAt := setup.Time.Now()

	_, err := u.TimeBasedDrop(ctx, gqljson.MustParse(`{
		"id": "T1",
		"name": "Drop One",
		"endAt": "2024-08-12T05:59:59.999Z",
		"__typename": "TimeBasedDrop"
	}`), "C1")
	require.NoError(t, err)

	setup.Time.Advance(time.Hour)
	// same instant in a different notation is not a change
	out, err := u.TimeBasedDrop(ctx, gqljson.MustParse(`{
		"id": "T1",
		"endAt": "2024-08-12T07:59:59.999+02:00",
		"__typename": "TimeBasedDrop"
	}`), "C1")
	require.NoError(t, err)
	require.Equal(t, 0, out.Changed)
	require.True(t, out.Record.ModifiedAt.Equal(createdAt))

	setup.Time.Advance(time.Hour)
	out, err = u.TimeBasedDrop(ctx, gqljson.MustParse(`{
		"id": "T1",
		"name": "Drop One (renamed)",
		"__typename": "TimeBasedDrop"
	}`), "C1")
	require.NoError(t, err)
	require.Equal(t, 1, out.Changed)
	require.True(t, out.Record.ModifiedAt.Equal(createdAt.Add(2*time.Hour)))
	require.True(t, out.Record.CreatedAt.Equal(createdAt))
	require.True(t, out.Record.EndsAt.Time.Equal(time.Date(2024, 8, 12, 5, 59, 59, 999_000_000, time.UTC)))
}

func TestUpsertParentReference(t *testing.T) {
	u, _ := setupUpserter(t)
	ctx := context.Background()
	obj := gqljson.MustParse(`{"id": "T1", "__typename": "TimeBasedDrop"}`)

	out, err := u.TimeBasedDrop(ctx, obj, "C1")
	require.NoError(t, err)
	require.Equal(t, 1, out.Changed)
	require.Equal(t, "C1", out.Record.DropCampaignID.String)

	out, err = u.TimeBasedDrop(ctx, obj, "")
	require.NoError(t, err)
	require.Equal(t, 0, out.Changed)
	require.Equal(t, "C1", out.Record.DropCampaignID.String)

	out, err = u.TimeBasedDrop(ctx, obj, "C1")
	require.NoError(t, err)
	require.Equal(t, 0, out.Changed)

	out, err = u.TimeBasedDrop(ctx, obj, "C2")
	require.NoError(t, err)
	require.Equal(t, 1, out.Changed)
	require.Equal(t, "C2", out.Record.DropCampaignID.String)
}

func TestUpsertWrongTypename(t *testing.T) {
	u, setup := setupUpserter(t)
	ctx := context.Background()

	_, err := u.Game(ctx, gqljson.MustParse(`{"id": "G1", "displayName": "Acme Quest", "__typename": "Game"}`), "")
	require.NoError(t, err)

	out, err := u.Game(ctx, gqljson.MustParse(`{"id": "G1", "displayName": "Wrong", "__typename": "Organization"}`), "O1")
	require.NoError(t, err)
	require.True(t, out.Skipped)
	require.True(t, out.Found)
	require.Equal(t, 0, out.Changed)
	require.Equal(t, "Acme Quest", out.Record.Name.String)
	require.False(t, out.Record.OwnerID.Valid)
	require.Equal(t, 1, setup.Tel.Count(report_wrong_typename))

	// a mismatched object for an unknown id creates nothing
	out, err = u.Game(ctx, gqljson.MustParse(`{"id": "G2", "displayName": "Other"}`), "")
	require.NoError(t, err)
	require.True(t, out.Skipped)
	require.False(t, out.Found)
	games, err := db.New(setup.DB).ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
}

func TestUpsertMissingID(t *testing.T) {
	u, setup := setupUpserter(t)
	out, err := u.Reward(context.Background(), gqljson.MustParse(`{"name": "No id", "__typename": "Reward"}`), "R1")
	require.NoError(t, err)
	require.True(t, out.Skipped)
	require.False(t, out.Found)
	require.Equal(t, 1, setup.Tel.Count(report_missing_id))
}

func TestDropCampaignStatus(t *testing.T) {
	cases := []struct {
		name     string
		stored   string
		incoming string
		origin   Origin
		expected string
	}{
		{name: "replay ignores unknown status", stored: "ACTIVE", incoming: "COMPLETED", origin: REPLAY, expected: "ACTIVE"},
		{name: "replay expires", stored: "ACTIVE", incoming: "EXPIRED", origin: REPLAY, expected: "EXPIRED"},
		{name: "replay does not revive", stored: "EXPIRED", incoming: "ACTIVE", origin: REPLAY, expected: "EXPIRED"},
		{name: "replay sets initial status", stored: "", incoming: "ACTIVE", origin: REPLAY, expected: "ACTIVE"},
		{name: "live expires", stored: "ACTIVE", incoming: "EXPIRED", origin: LIVE, expected: "EXPIRED"},
		{name: "live applies unknown status", stored: "ACTIVE", incoming: "COMPLETED", origin: LIVE, expected: "COMPLETED"},
		{name: "live revives", stored: "EXPIRED", incoming: "ACTIVE", origin: LIVE, expected: "ACTIVE"},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			u, _ := setupUpserter(t)
			ctx := context.Background()

			if testCase.stored != "" {
				_, err := u.DropCampaign(ctx, gqljson.MustParse(`{"id": "DC1", "status": "`+testCase.stored+`", "__typename": "DropCampaign"}`), "", LIVE)
				require.NoError(t, err)
			}

			out, err := u.DropCampaign(ctx, gqljson.MustParse(`{"id": "DC1", "status": "`+testCase.incoming+`", "__typename": "DropCampaign"}`), "", testCase.origin)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, out.Record.Status.String)
		})
	}
}

func TestRewardCampaignNestedFields(t *testing.T) {
	u, _ := setupUpserter(t)
	out, err := u.RewardCampaign(context.Background(), gqljson.MustParse(`{
		"id": "RC1",
		"isSitewide": false,
		"unlockRequirements": {"subsGoal": 2, "minuteWatchedGoal": 0},
		"image": {"image1xURL": "https://example.com/1x.png"},
		"rewardValueURLParam": "",
		"__typename": "RewardCampaign"
	}`), "G1")
	require.NoError(t, err)
	require.Equal(t, int64(2), out.Record.SubGoal.Int64)
	require.True(t, out.Record.MinuteWatchedGoal.Valid)
	require.Equal(t, int64(0), out.Record.MinuteWatchedGoal.Int64)
	require.Equal(t, "https://example.com/1x.png", out.Record.ImageUrl.String)
	require.False(t, out.Record.RewardValueUrlParam.Valid)
	require.True(t, out.Record.IsSiteWide.Valid)
	require.Equal(t, "G1", out.Record.GameID.String)
}
