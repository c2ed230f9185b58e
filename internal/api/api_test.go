package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ttvdrops/internal/db"
	"ttvdrops/internal/ingest"
	"ttvdrops/internal/testutil"
	"ttvdrops/internal/view"

	"github.com/stretchr/testify/require"
)

const payload = `[
	{"data":{"user":{"dropCampaign":{"id":"DC1","name":"Test Campaign","status":"ACTIVE","endAt":"2024-08-12T00:00:00Z",
		"game":{"id":"G1","displayName":"Acme Quest","__typename":"Game"},
		"timeBasedDrops":[{"id":"T1","name":"Drop One","requiredMinutesWatched":60,"__typename":"TimeBasedDrop"}],
		"__typename":"DropCampaign"}}}},
	{"data":{"unrelated":{}}}
]`

func setupServer(t *testing.T, token string) *httptest.Server {
	setup := testutil.SetupService(t, testutil.ServiceParams{Name: "api"})
	ingester := ingest.NewIngester(db.NewMakeTx(setup.DB), setup.Time, setup.Tel)
	v := view.NewView(db.New(setup.DB), setup.Time, setup.Tel)
	server := httptest.NewServer(NewServer(ingester, v, setup.Tel, token).Handler())
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, url, token, body string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestIngestThenList(t *testing.T) {
	server := setupServer(t, "")

	res := post(t, server.URL+"/api/ingest", "", payload)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var summary ingest.Summary
	require.NoError(t, json.NewDecoder(res.Body).Decode(&summary))
	require.Equal(t, ingest.Summary{DropCampaigns: 1}, summary)

	res, err := http.Get(server.URL + "/api/games")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var games []view.Game
	require.NoError(t, json.NewDecoder(res.Body).Decode(&games))
	require.Len(t, games, 1)
	require.Equal(t, "Acme Quest", games[0].Name)
	require.Equal(t, "Drop One", games[0].Campaigns[0].Drops[0].Name)
}

func TestEmptyGamesIsArray(t *testing.T) {
	server := setupServer(t, "")
	res, err := http.Get(server.URL + "/api/games")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(body))
}

func TestIngestRejects(t *testing.T) {
	server := setupServer(t, "secret")

	res := post(t, server.URL+"/api/ingest", "", payload)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = post(t, server.URL+"/api/ingest", "wrong", payload)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = post(t, server.URL+"/api/ingest?origin=sideways", "secret", payload)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = post(t, server.URL+"/api/ingest", "secret", `{"data": `)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = post(t, server.URL+"/api/ingest?origin=replay", "secret", payload)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, err := http.Get(server.URL + "/api/ingest")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestHealthz(t *testing.T) {
	server := setupServer(t, "secret")
	res, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestServeStops(t *testing.T) {
	setup := testutil.SetupService(t, testutil.ServiceParams{Name: "api"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), setup.Tel)
	}()
	cancel()
	require.NoError(t, <-done)
}
