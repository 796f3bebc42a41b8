package oracle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FeatureRow is one (human card, candidate card, context) row as the
// offline-trained model expects it.
type FeatureRow struct {
	PBatting    int `json:"p_batting"`
	PBowling    int `json:"p_bowling"`
	PRuns       int `json:"p_runs"`
	CBatting    int `json:"c_batting"`
	CBowling    int `json:"c_bowling"`
	CRuns       int `json:"c_runs"`
	Innings     int `json:"innings"`
	RoundNumber int `json:"round_number"`
	Wickets     int `json:"wickets"`
}

type predictRequest struct {
	PlayerCardID int          `json:"player_card_id"`
	CandidateIDs []int        `json:"candidate_ids"`
	Innings      int          `json:"innings"`
	RoundNumber  int          `json:"round_number"`
	Wickets      int          `json:"wickets"`
	Features     []FeatureRow `json:"features"`
}

type predictResponse struct {
	CardID     *int    `json:"card_id"`
	Confidence float64 `json:"confidence"`
}

// Features builds one row per candidate.
func Features(q Query) []FeatureRow {
	rows := make([]FeatureRow, len(q.Candidates))
	for i, c := range q.Candidates {
		rows[i] = FeatureRow{
			PBatting:    q.HumanCard.Batting,
			PBowling:    q.HumanCard.Bowling,
			PRuns:       q.HumanCard.Runs,
			CBatting:    c.Batting,
			CBowling:    c.Bowling,
			CRuns:       c.Runs,
			Innings:     q.Innings,
			RoundNumber: q.Round,
			Wickets:     q.Wickets,
		}
	}
	return rows
}

// HTTP calls a prediction service at baseURL + "/predict".
type HTTP struct {
	endpoint string
	client   *http.Client
}

// NewHTTP returns a client for the service at baseURL. A nil client uses
// http.DefaultClient; timeouts are imposed by the caller's context.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{
		endpoint: strings.TrimRight(baseURL, "/") + "/predict",
		client:   client,
	}
}

// Predict posts the query. 404 and 503 mean no model is loaded and map to
// ErrUnavailable, as does a response without a card id.
func (h *HTTP) Predict(ctx context.Context, q Query) (Prediction, error) {
	body, err := json.Marshal(predictRequest{
		PlayerCardID: q.HumanCard.ID,
		CandidateIDs: q.CandidateIDs(),
		Innings:      q.Innings,
		RoundNumber:  q.Round,
		Wickets:      q.Wickets,
		Features:     Features(q),
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusServiceUnavailable:
		return Prediction{}, fmt.Errorf("predict returned %d: %w", resp.StatusCode, ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		return Prediction{}, fmt.Errorf("predict returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return Prediction{}, fmt.Errorf("read predict response: %w", err)
	}
	var out predictResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Prediction{}, fmt.Errorf("decode predict response: %w", err)
	}
	if out.CardID == nil {
		return Prediction{}, fmt.Errorf("empty prediction: %w", ErrUnavailable)
	}
	return Prediction{CardID: *out.CardID, Confidence: out.Confidence}, nil
}
