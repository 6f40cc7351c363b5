package sdk

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const CTJSON string = "application/json"

type SDK interface {
	// Leaderboard fetches the leaderboard table with search, filter and
	// column controls applied server-side.
	//
	// example:
	//  table, _ := sdk.Leaderboard(sdk.LeaderboardQuery{Search: "mistral; license: apache"})
	//  fmt.Println(table)
	Leaderboard(q LeaderboardQuery) (Table, error)

	// EvalQueue fetches the evaluation queue split into pending, running and
	// finished buckets.
	//
	// example:
	//  queue, _ := sdk.EvalQueue()
	//  fmt.Println(queue)
	EvalQueue() (QueueView, error)

	// Submit sends a model for evaluation.
	//
	// example:
	//  sub := sdk.Submission{
	//    Model:     "org/model",
	//    Precision: "bfloat16",
	//    ModelType: "fine-tuned",
	//    Sender:    "username",
	//  }
	//  res, _ := sdk.Submit(sub)
	//  fmt.Println(res.Message)
	Submit(sub Submission) (SubmitResult, error)

	// Vote casts one vote for a queued model.
	//
	// example:
	//  res, _ := sdk.Vote("org/model", "username")
	//  fmt.Println(res.Votes)
	Vote(model, username string) (VoteResult, error)
}

type lbSDK struct {
	serverURL string
	client    *http.Client
}

type Config struct {
	ServerURL       string
	TLSVerification bool
}

func NewSDK(cfg Config) SDK {
	return &lbSDK{
		serverURL: cfg.ServerURL,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *lbSDK) processRequest(method, reqURL string, data []byte, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", CTJSON)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		return []byte{}, decodeError(resp.StatusCode, body)
	}

	return body, nil
}

func decodeError(code int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("server returned %d: %s", code, payload.Error)
	}

	return fmt.Errorf("unexpected response code: %d", code)
}
