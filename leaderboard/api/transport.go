package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/api"
)

func MakeHandler(svc leaderboard.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Get("/leaderboard", otelhttp.NewHandler(kithttp.NewServer(
		leaderboardEndpoint(svc),
		decodeLeaderboardReq,
		api.EncodeResponse,
		opts...,
	), "get-leaderboard").ServeHTTP)

	mux.Get("/queue", otelhttp.NewHandler(kithttp.NewServer(
		queueEndpoint(svc),
		decodeQueueReq,
		api.EncodeResponse,
		opts...,
	), "get-eval-queue").ServeHTTP)

	mux.Post("/submissions", otelhttp.NewHandler(kithttp.NewServer(
		submitEndpoint(svc),
		decodeSubmitReq,
		api.EncodeResponse,
		opts...,
	), "submit-model").ServeHTTP)

	mux.Post("/votes", otelhttp.NewHandler(kithttp.NewServer(
		voteEndpoint(svc),
		decodeVoteReq,
		api.EncodeResponse,
		opts...,
	), "vote").ServeHTTP)

	mux.Get("/health", supermq.Health("leaderboard", instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeLeaderboardReq(_ context.Context, r *http.Request) (any, error) {
	search, err := apiutil.ReadStringQuery(r, "search", "")
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	q := leaderboard.Query{
		Search:          search,
		Types:           listQuery(r, "types"),
		Precisions:      listQuery(r, "precisions"),
		Sizes:           listQuery(r, "sizes"),
		Columns:         listQuery(r, "columns"),
		HideUnavailable: boolQuery(r, "hide_unavailable"),
		HideMerges:      boolQuery(r, "hide_merges"),
		HideMoE:         boolQuery(r, "hide_moe"),
		HideFlagged:     boolQuery(r, "hide_flagged"),
	}

	return leaderboardReq{query: q}, nil
}

func decodeQueueReq(_ context.Context, _ *http.Request) (any, error) {
	return queueReq{}, nil
}

func decodeSubmitReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func decodeVoteReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req voteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func listQuery(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func boolQuery(r *http.Request, key string) bool {
	v := strings.ToLower(r.URL.Query().Get(key))

	return v == "true" || v == "1"
}
