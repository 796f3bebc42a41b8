package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuery() Query {
	return Query{
		HumanCard: catalog.Card{ID: 1, Batting: 80, Bowling: 20, Runs: 4},
		Candidates: []catalog.Card{
			{ID: 8, Batting: 30, Bowling: 72, Runs: 1},
			{ID: 11, Batting: 15, Bowling: 88, Runs: 1},
		},
		Innings: 2,
		Round:   3,
		Wickets: 1,
	}
}

func TestHTTPPredict(t *testing.T) {
	var got predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"card_id": 11, "confidence": 0.82}`)
	}))
	t.Cleanup(srv.Close)

	pred, err := NewHTTP(srv.URL+"/", srv.Client()).Predict(context.Background(), sampleQuery())
	require.NoError(t, err)
	assert.Equal(t, Prediction{CardID: 11, Confidence: 0.82}, pred)

	assert.Equal(t, 1, got.PlayerCardID)
	assert.Equal(t, []int{8, 11}, got.CandidateIDs)
	assert.Equal(t, 2, got.Innings)
	assert.Equal(t, 3, got.RoundNumber)
	require.Len(t, got.Features, 2)
	assert.Equal(t, FeatureRow{PBatting: 80, PBowling: 20, PRuns: 4, CBatting: 15, CBowling: 88, CRuns: 1, Innings: 2, RoundNumber: 3, Wickets: 1}, got.Features[1])
}

func TestHTTPPredictFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		failure SoftFailure
	}{
		{"no model", http.StatusNotFound, "", FailureUnavailable},
		{"warming up", http.StatusServiceUnavailable, "", FailureUnavailable},
		{"server error", http.StatusInternalServerError, "", FailureError},
		{"empty prediction", http.StatusOK, `{"card_id": null}`, FailureUnavailable},
		{"garbage", http.StatusOK, `not json`, FailureError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			t.Cleanup(srv.Close)

			_, err := NewHTTP(srv.URL, srv.Client()).Predict(context.Background(), sampleQuery())
			require.Error(t, err)
			assert.Equal(t, tt.failure, Classify(err))
		})
	}
}

func TestNopIsUnavailable(t *testing.T) {
	_, err := Nop{}.Predict(context.Background(), sampleQuery())
	assert.Equal(t, FailureUnavailable, Classify(err))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, FailureNone, Classify(nil))
	assert.Equal(t, FailureTimeout, Classify(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.Equal(t, FailureError, Classify(errors.New("boom")))
}

func TestLimited(t *testing.T) {
	calls := 0
	inner := Func(func(context.Context, Query) (Prediction, error) {
		calls++
		return Prediction{CardID: 8}, nil
	})
	limited := NewLimited(inner, 0.0001, 2)

	for i := 0; i < 2; i++ {
		_, err := limited.Predict(context.Background(), sampleQuery())
		require.NoError(t, err)
	}
	_, err := limited.Predict(context.Background(), sampleQuery())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, calls)
}
