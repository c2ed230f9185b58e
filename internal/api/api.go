// Package api is the http surface: payload submission for the browser collaborator and the
// read only listings.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ttvdrops/internal/assert"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/ingest"
	"ttvdrops/internal/telemetry"
	"ttvdrops/internal/view"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	report_encode  = "api.encode"
	report_request = "api.request"
)

// payloads captured over a whole browser session can get large
const maxBodySize = 64 << 20

type Server struct {
	ingester    ingest.Ingester
	view        view.View
	tel         telemetry.API
	accessToken string
}

func NewServer(ingester ingest.Ingester, v view.View, tel telemetry.API, accessToken string) Server {
	assert.NotNil(tel)
	return Server{
		ingester:    ingester,
		view:        v,
		tel:         tel,
		accessToken: accessToken,
	}
}

func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ingest", s.authorized(s.handleIngest))
	mux.HandleFunc("GET /api/games", s.handleGames)
	mux.HandleFunc("GET /api/reward-campaigns", s.handleRewardCampaigns)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return otelhttp.NewHandler(mux, "ttvdrops", otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
		return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
	}))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s Server) writeJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		s.tel.ReportBroken(report_encode, err)
	}
}

func (s Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJson(w, status, errorResponse{Error: err.Error()})
}

// authorized rejects requests without the configured bearer token, every request passes when
// no token is configured.
func (s Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	if s.accessToken == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.accessToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			return
		}
		next(w, r)
	}
}

func (s Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	origin, err := ingest.ParseOrigin(r.URL.Query().Get("origin"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	payload, err := gqljson.Parse(body)
	if err != nil {
		s.tel.ReportWarning(report_request, err)
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := s.ingester.ProcessAll(r.Context(), payload, origin)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJson(w, http.StatusOK, summary)
}

func (s Server) handleGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.view.ActiveGames(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if games == nil {
		games = []view.Game{}
	}
	s.writeJson(w, http.StatusOK, games)
}

func (s Server) handleRewardCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.view.ActiveRewardCampaigns(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJson(w, http.StatusOK, campaigns)
}

// Serve listens on addr until ctx is done, then gives in flight requests a few seconds to finish.
func Serve(ctx context.Context, addr string, handler http.Handler, tel telemetry.API) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		tel.ReportDebug("listening for http", telemetry.KV{Key: "addr", Value: addr})
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	if err != nil {
		return err
	}
	err = <-errs
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
