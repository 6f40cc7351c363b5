package sdk

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const (
	leaderboardEndpoint = "/leaderboard"
	queueEndpoint       = "/queue"
	submissionsEndpoint = "/submissions"
	votesEndpoint       = "/votes"
)

// Row mirrors one leaderboard row as served by the API.
type Row struct {
	EvalName          string             `json:"eval_name"`
	FullModel         string             `json:"full_model"`
	Org               string             `json:"org"`
	Model             string             `json:"model"`
	Revision          string             `json:"revision"`
	Results           map[string]float64 `json:"results"`
	NormalizedResults map[string]float64 `json:"normalized_results"`
	Precision         string             `json:"precision"`
	ModelType         uint8              `json:"model_type"`
	WeightType        string             `json:"weight_type"`
	Architecture      string             `json:"architecture"`
	License           string             `json:"license"`
	StillOnHub        bool               `json:"still_on_hub"`
	NumParams         float64            `json:"num_params"`
	Average           float64            `json:"average"`
	Tags              []string           `json:"tags,omitempty"`
	Flagged           bool               `json:"flagged"`
	FlagReason        string             `json:"flag_reason,omitempty"`
	Merged            bool               `json:"merged"`
	MoE               bool               `json:"moe"`
	OfficialProvider  bool               `json:"official_provider"`
}

type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// QueueEntry mirrors one persisted evaluation request.
type QueueEntry struct {
	Model           string  `json:"model"`
	BaseModel       string  `json:"base_model"`
	Revision        string  `json:"revision"`
	Precision       string  `json:"precision"`
	Params          float64 `json:"params"`
	Architectures   string  `json:"architectures"`
	WeightType      string  `json:"weight_type"`
	Status          string  `json:"status"`
	SubmittedTime   string  `json:"submitted_time"`
	ModelType       string  `json:"model_type"`
	UseChatTemplate bool    `json:"use_chat_template"`
	Sender          string  `json:"sender"`
	Votes           int     `json:"votes,omitempty"`
}

type QueueView struct {
	Finished []QueueEntry `json:"finished"`
	Running  []QueueEntry `json:"running"`
	Pending  []QueueEntry `json:"pending"`
}

type LeaderboardQuery struct {
	Search          string
	Types           []string
	Precisions      []string
	Sizes           []string
	Columns         []string
	HideUnavailable bool
	HideMerges      bool
	HideMoE         bool
	HideFlagged     bool
}

type Submission struct {
	Model           string `json:"model"`
	BaseModel       string `json:"base_model,omitempty"`
	Revision        string `json:"revision,omitempty"`
	Precision       string `json:"precision"`
	WeightType      string `json:"weight_type"`
	ModelType       string `json:"model_type"`
	UseChatTemplate bool   `json:"use_chat_template"`
	Sender          string `json:"sender"`
}

type SubmitResult struct {
	QueueEntry
	Message string `json:"message"`
}

type VoteResult struct {
	Model string `json:"model"`
	Votes int    `json:"votes"`
}

func (sdk *lbSDK) Leaderboard(q LeaderboardQuery) (Table, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	setList(params, "types", q.Types)
	setList(params, "precisions", q.Precisions)
	setList(params, "sizes", q.Sizes)
	setList(params, "columns", q.Columns)
	setBool(params, "hide_unavailable", q.HideUnavailable)
	setBool(params, "hide_merges", q.HideMerges)
	setBool(params, "hide_moe", q.HideMoE)
	setBool(params, "hide_flagged", q.HideFlagged)

	reqURL := sdk.serverURL + leaderboardEndpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	body, err := sdk.processRequest(http.MethodGet, reqURL, nil, http.StatusOK)
	if err != nil {
		return Table{}, err
	}

	var t Table
	if err := json.Unmarshal(body, &t); err != nil {
		return Table{}, err
	}

	return t, nil
}

func (sdk *lbSDK) EvalQueue() (QueueView, error) {
	body, err := sdk.processRequest(http.MethodGet, sdk.serverURL+queueEndpoint, nil, http.StatusOK)
	if err != nil {
		return QueueView{}, err
	}

	var q QueueView
	if err := json.Unmarshal(body, &q); err != nil {
		return QueueView{}, err
	}

	return q, nil
}

func (sdk *lbSDK) Submit(sub Submission) (SubmitResult, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return SubmitResult{}, err
	}

	body, err := sdk.processRequest(http.MethodPost, sdk.serverURL+submissionsEndpoint, data, http.StatusCreated)
	if err != nil {
		return SubmitResult{}, err
	}

	var res SubmitResult
	if err := json.Unmarshal(body, &res); err != nil {
		return SubmitResult{}, err
	}

	return res, nil
}

func (sdk *lbSDK) Vote(model, username string) (VoteResult, error) {
	data, err := json.Marshal(map[string]string{
		"model":    model,
		"username": username,
	})
	if err != nil {
		return VoteResult{}, err
	}

	body, err := sdk.processRequest(http.MethodPost, sdk.serverURL+votesEndpoint, data, http.StatusOK)
	if err != nil {
		return VoteResult{}, err
	}

	var res VoteResult
	if err := json.Unmarshal(body, &res); err != nil {
		return VoteResult{}, err
	}

	return res, nil
}

func setList(params url.Values, key string, values []string) {
	if len(values) > 0 {
		params.Set(key, strings.Join(values, ","))
	}
}

func setBool(params url.Values, key string, v bool) {
	if v {
		params.Set(key, "true")
	}
}
