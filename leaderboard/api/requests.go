package api

import (
	apiutil "github.com/absmach/supermq/api/http/util"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/submission"
)

type leaderboardReq struct {
	query leaderboard.Query
}

func (l *leaderboardReq) validate() error {
	return nil
}

type queueReq struct{}

func (q *queueReq) validate() error {
	return nil
}

type submitReq struct {
	submission.Request `json:",inline"`
}

func (s *submitReq) validate() error {
	if s.Model == "" {
		return apiutil.ErrMissingName
	}
	if s.Precision == "" {
		return apiutil.ErrMissingName
	}

	return nil
}

type voteReq struct {
	Model    string `json:"model"`
	Username string `json:"username"`
}

func (v *voteReq) validate() error {
	if v.Model == "" {
		return apiutil.ErrMissingName
	}
	if v.Username == "" {
		return apiutil.ErrMissingName
	}

	return nil
}
