package api

import (
	"net/http"

	"github.com/absmach/supermq"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/queue"
)

var (
	_ supermq.Response = (*leaderboardRes)(nil)
	_ supermq.Response = (*queueRes)(nil)
	_ supermq.Response = (*submitRes)(nil)
	_ supermq.Response = (*voteRes)(nil)
)

type leaderboardRes struct {
	leaderboard.Table
}

func (l leaderboardRes) Code() int {
	return http.StatusOK
}

func (l leaderboardRes) Headers() map[string]string {
	return map[string]string{}
}

func (l leaderboardRes) Empty() bool {
	return false
}

type queueRes struct {
	leaderboard.QueueView
}

func (q queueRes) Code() int {
	return http.StatusOK
}

func (q queueRes) Headers() map[string]string {
	return map[string]string{}
}

func (q queueRes) Empty() bool {
	return false
}

type submitRes struct {
	queue.Entry
	Message string `json:"message"`
}

func (s submitRes) Code() int {
	return http.StatusCreated
}

func (s submitRes) Headers() map[string]string {
	return map[string]string{}
}

func (s submitRes) Empty() bool {
	return false
}

type voteRes struct {
	Model string `json:"model"`
	Votes int    `json:"votes"`
}

func (v voteRes) Code() int {
	return http.StatusOK
}

func (v voteRes) Headers() map[string]string {
	return map[string]string{}
}

func (v voteRes) Empty() bool {
	return false
}
