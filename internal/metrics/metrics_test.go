package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice/internal/scoring"
)

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementInterviewsStarted()
	m.IncrementInterviewsStarted()
	m.IncrementInterviewsCompleted()
	m.ObserveAnswer(5)
	m.ObserveAnswer(2)
	m.IncrementEmptyAnswers()
	m.IncrementHelpRequests()
	m.IncrementAPICall("similarity", true)
	m.IncrementAPICall("assistant", false)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.InterviewsStarted)
	assert.Equal(t, int64(1), snap.InterviewsCompleted)
	assert.Equal(t, int64(2), snap.AnswersScored)
	assert.Equal(t, int64(1), snap.EmptyAnswers)
	assert.Equal(t, int64(1), snap.HelpRequests)
	assert.Equal(t, int64(2), snap.APICallsTotal)
	assert.Equal(t, int64(1), snap.APICallsSuccessful)
	assert.False(t, snap.LastUpdateTime.IsZero())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.promInterviews.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.promAPICalls.WithLabelValues("assistant", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.promAnswers))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.IncrementInterviewsStarted()
	m.SetActiveSessions(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `interview_sessions_total{event="started"} 1`)
	assert.Contains(t, string(body), "interview_active_sessions 3")
}

type fixedSimilarity struct{ err error }

func (f fixedSimilarity) Similarity(context.Context, string, string) (float64, error) {
	return 0.5, f.err
}

type fixedBonus struct{ err error }

func (f fixedBonus) Bonus(context.Context, string, string) (scoring.Bonus, error) {
	return scoring.Bonus{Points: 1, Label: "joy"}, f.err
}

func TestInstrumentCollaborators(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	_, err := m.InstrumentSimilarity(fixedSimilarity{}).Similarity(ctx, "a", "b")
	require.NoError(t, err)
	_, err = m.InstrumentSimilarity(fixedSimilarity{err: errors.New("down")}).Similarity(ctx, "a", "b")
	require.Error(t, err)

	b, err := m.InstrumentBonus(fixedBonus{}).Bonus(ctx, "q", "a")
	require.NoError(t, err)
	assert.Equal(t, "joy", b.Label)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(3), snap.APICallsTotal)
	assert.Equal(t, int64(2), snap.APICallsSuccessful)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.promAPICalls.WithLabelValues("similarity", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.promAPICalls.WithLabelValues("emotion", "ok")))
}
