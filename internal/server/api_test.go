package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/ledger"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	svc, _ := newTestService(t, nil)
	return NewAPI(svc, log.NewWithOptions(io.Discard, log.Options{}))
}

func do(t *testing.T, a *API, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp.StatusCode, out
}

func startMatch(t *testing.T, a *API) string {
	t.Helper()
	status, body := do(t, a, http.MethodPost, "/matches", `{"batting_first":"player"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "awaiting_selection", body["phase"])
	assert.Equal(t, "player", body["batting_team"])
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestAPIRoundFlow(t *testing.T) {
	a := newTestAPI(t)
	id := startMatch(t, a)

	status, body := do(t, a, http.MethodPost, "/matches/"+id+"/rounds", `{"card_id":1}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "round_resolved", body["phase"])
	assert.EqualValues(t, 2, body["round"])
	last, ok := body["last_round"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, []any{"hit", "wicket"}, last["outcome"])

	status, body = do(t, a, http.MethodGet, "/matches/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "awaiting_selection", body["phase"])
	used := body["used"].(map[string]any)
	assert.Equal(t, []any{float64(1)}, used["player"])
}

func TestAPIErrorMapping(t *testing.T) {
	a := newTestAPI(t)
	id := startMatch(t, a)

	status, _ := do(t, a, http.MethodPost, "/matches/"+id+"/rounds", `{"card_id":999}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, a, http.MethodPost, "/matches/"+id+"/rounds", `{"card_id":2}`)
	require.Equal(t, http.StatusOK, status)
	status, body := do(t, a, http.MethodPost, "/matches/"+id+"/rounds", `{"card_id":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body["error"], "already used")

	status, _ = do(t, a, http.MethodGet, "/matches/nope", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, a, http.MethodPost, "/matches", `{"batting_first":"umpire"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, a, http.MethodDelete, "/matches/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, a, http.MethodDelete, "/matches/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIRejectsMissingFields(t *testing.T) {
	a := newTestAPI(t)
	id := startMatch(t, a)

	status, _ := do(t, a, http.MethodPost, "/matches", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, a, http.MethodPost, "/matches/toss", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, a, http.MethodPost, "/matches/"+id+"/rounds", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := do(t, a, http.MethodGet, "/matches/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["round"])
}

func TestAPIInvalidPhaseIsConflict(t *testing.T) {
	a := newTestAPI(t)
	id := startMatch(t, a)

	for innings := 0; innings < 2; innings++ {
		for card := 1; card <= 7; card++ {
			status, _ := do(t, a, http.MethodPost, "/matches/"+id+"/rounds", `{"card_id":`+string(rune('0'+card))+`}`)
			require.Equal(t, http.StatusOK, status)
		}
	}
	status, _ := do(t, a, http.MethodPost, "/matches/"+id+"/rounds", `{"card_id":8}`)
	assert.Equal(t, http.StatusConflict, status)
}

func TestAPIToss(t *testing.T) {
	a := newTestAPI(t)

	status, body := do(t, a, http.MethodPost, "/matches/toss", `{"call":"tails"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "tails", body["call"])
	assert.Contains(t, []any{"heads", "tails"}, body["landed"])
	assert.Contains(t, []any{"player", "computer"}, body["batting_first"])

	status, _ = do(t, a, http.MethodPost, "/matches/toss", `{"call":"edge"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPICardsStrategyHistory(t *testing.T) {
	a := newTestAPI(t)
	id := startMatch(t, a)
	status, _ := do(t, a, http.MethodPost, "/matches/"+id+"/rounds", `{"card_id":3}`)
	require.Equal(t, http.StatusOK, status)

	resp, err := a.App().Test(httptest.NewRequest(http.MethodGet, "/cards", nil), -1)
	require.NoError(t, err)
	var cards []catalog.Card
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cards))
	resp.Body.Close()
	assert.Len(t, cards, catalog.Default().Len())

	status, body := do(t, a, http.MethodGet, "/strategy", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "balanced", body["balanced"])
	assert.Equal(t, "high_batting", body["high_batting"])

	resp, err = a.App().Test(httptest.NewRequest(http.MethodGet, "/history?limit=5", nil), -1)
	require.NoError(t, err)
	var recs []ledger.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	resp.Body.Close()
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].PlayerCardID)
	assert.Equal(t, id, recs[0].MatchID)
}
