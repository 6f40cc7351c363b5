package api

import (
	"context"
	"errors"
	"fmt"

	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
)

func leaderboardEndpoint(svc leaderboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(leaderboardReq)
		if !ok {
			return leaderboardRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return leaderboardRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		table, err := svc.Leaderboard(ctx, req.query)
		if err != nil {
			return leaderboardRes{}, err
		}

		return leaderboardRes{
			Table: table,
		}, nil
	}
}

func queueEndpoint(svc leaderboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		if _, ok := request.(queueReq); !ok {
			return queueRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}

		view, err := svc.EvalQueue(ctx)
		if err != nil {
			return queueRes{}, err
		}

		return queueRes{
			QueueView: view,
		}, nil
	}
}

func submitEndpoint(svc leaderboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(submitReq)
		if !ok {
			return submitRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return submitRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		entry, err := svc.Submit(ctx, req.Request)
		if err != nil {
			return submitRes{}, err
		}

		return submitRes{
			Entry:   entry,
			Message: fmt.Sprintf("model %s submitted, please wait up to an hour for it to show in the pending queue", entry.Model),
		}, nil
	}
}

func voteEndpoint(svc leaderboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(voteReq)
		if !ok {
			return voteRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return voteRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		count, err := svc.Vote(ctx, req.Model, req.Username)
		if err != nil {
			return voteRes{}, err
		}

		return voteRes{
			Model: req.Model,
			Votes: count,
		}, nil
	}
}
