package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice/internal/metrics"
	"interview-practice/internal/question"
	"interview-practice/internal/scoring"
	"interview-practice/internal/session"
	"interview-practice/internal/storage"
)

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, string, []byte) (string, error) {
	return s.text, s.err
}

type stubAssistant struct{}

func (stubAssistant) Ask(_ context.Context, question, prompt string) (string, error) {
	return "Think about " + question, nil
}

type testEnv struct {
	routes  http.Handler
	handler *Handler
	metrics *metrics.Metrics
	sink    *storage.Sink
}

func newEnv(t *testing.T, mutate func(*Deps)) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	m := metrics.NewMetrics()
	sink := storage.NewSink(t.TempDir())
	deps := Deps{
		NewSession: func() *session.Session {
			return session.New(question.Default(), scoring.NewLexical(scoring.DefaultThresholds()),
				session.WithLogger(log), session.WithAssistant(stubAssistant{}))
		},
		Sink:      sink,
		Metrics:   m,
		Log:       log,
		RateLimit: 1000,
	}
	if mutate != nil {
		mutate(&deps)
	}

	h := NewHandler(deps)
	return &testEnv{routes: h.Routes(), handler: h, metrics: m, sink: sink}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.routes.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, path, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.routes.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) create(t *testing.T) session.Status {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var st session.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	return st
}

func TestFullInterviewOverHTTP(t *testing.T) {
	env := newEnv(t, nil)
	st := env.create(t)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, "Tell me about yourself.", st.Question)

	for _, q := range question.Default().All() {
		rec := env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/answers", answerRequest{Answer: q})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp answerResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, 5, resp.Record.Score)
	}

	rec := env.do(t, http.MethodGet, "/v1/sessions/"+st.ID+"/report?format=text", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="interview_report.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Final Score: 20 / 20")

	rec = env.do(t, http.MethodGet, "/v1/sessions/"+st.ID+"/report?format=pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	ids, err := env.sink.ListResults()
	require.NoError(t, err)
	assert.Equal(t, []string{st.ID}, ids)

	snap := env.metrics.GetSnapshot()
	assert.Equal(t, int64(1), snap.InterviewsStarted)
	assert.Equal(t, int64(1), snap.InterviewsCompleted)
	assert.Equal(t, int64(4), snap.AnswersScored)
}

func TestBlankAnswerRejected(t *testing.T) {
	env := newEnv(t, nil)
	st := env.create(t)

	rec := env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/answers", answerRequest{Answer: "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, int64(1), env.metrics.GetSnapshot().EmptyAnswers)

	rec = env.do(t, http.MethodGet, "/v1/sessions/"+st.ID, nil)
	var got session.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 0, got.Index)
}

func TestReportBeforeCompletion(t *testing.T) {
	env := newEnv(t, nil)
	st := env.create(t)

	rec := env.do(t, http.MethodGet, "/v1/sessions/"+st.ID+"/report", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/sessions/"+st.ID+"/report?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	env := newEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadAnswer(t *testing.T) {
	env := newEnv(t, nil)
	st := env.create(t)

	rec := env.upload(t, "/v1/sessions/"+st.ID+"/answers", "answer.txt", []byte{0xff, 0xfe})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.upload(t, "/v1/sessions/"+st.ID+"/answers", "answer.txt", []byte("Tell me about yourself.\nMore."))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp answerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 5, resp.Record.Score)
	assert.Equal(t, 1, resp.Status.Index)
}

func TestAudioAnswer(t *testing.T) {
	env := newEnv(t, func(d *Deps) { d.Transcriber = stubTranscriber{text: "Tell me about yourself."} })
	st := env.create(t)

	rec := env.upload(t, "/v1/sessions/"+st.ID+"/audio", "answer.wav", []byte("RIFF"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"transcript":"Tell me about yourself."`)
}

func TestAudioTranscriptionFailure(t *testing.T) {
	env := newEnv(t, func(d *Deps) { d.Transcriber = stubTranscriber{err: errors.New("asr down")} })
	st := env.create(t)

	rec := env.upload(t, "/v1/sessions/"+st.ID+"/audio", "answer.wav", []byte("RIFF"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	snap := env.metrics.GetSnapshot()
	assert.Equal(t, int64(1), snap.APICallsTotal)
	assert.Equal(t, int64(0), snap.APICallsSuccessful)
}

func TestAudioWithoutTranscriber(t *testing.T) {
	env := newEnv(t, nil)
	st := env.create(t)

	rec := env.upload(t, "/v1/sessions/"+st.ID+"/audio", "answer.wav", []byte("RIFF"))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestPreviousAndHelp(t *testing.T) {
	env := newEnv(t, nil)
	st := env.create(t)

	rec := env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/answers", answerRequest{Answer: "first"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/previous", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got session.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, session.StateReviewing, got.State)

	for i := 0; i < 4; i++ {
		rec = env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/help", helpRequest{Prompt: "hint"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var resp helpResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Think about Tell me about yourself.", resp.Turn.Reply)
	assert.Len(t, resp.Recent, 3)

	rec = env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/help", helpRequest{Prompt: ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestResetRekeysSession(t *testing.T) {
	env := newEnv(t, nil)
	st := env.create(t)

	rec := env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got session.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.NotEqual(t, st.ID, got.ID)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/v1/sessions/"+st.ID, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/sessions/"+got.ID, nil).Code)
}

func TestRateLimit(t *testing.T) {
	env := newEnv(t, func(d *Deps) { d.RateLimit = 2 })

	env.create(t)
	env.create(t)
	rec := env.do(t, http.MethodPost, "/v1/sessions", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnv(t, nil)
	env.create(t)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "interview_active_sessions 1")
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.IsAllowed("a"))
	assert.True(t, rl.IsAllowed("a"))
	assert.False(t, rl.IsAllowed("a"))
	assert.True(t, rl.IsAllowed("b"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.IsAllowed("a"))
}

func TestRegistryCleanup(t *testing.T) {
	reg := NewRegistry(24 * time.Hour)
	s := session.New(question.Default(), scoring.NewLexical(scoring.DefaultThresholds()))
	id := reg.Add(s)

	assert.Equal(t, 0, reg.Cleanup(time.Now().Add(23*time.Hour)))
	assert.Equal(t, 1, reg.Len())

	assert.Equal(t, 1, reg.Cleanup(time.Now().Add(25*time.Hour)))
	_, ok := reg.Get(id)
	assert.False(t, ok)
}

func TestRegistryMarkArchivedOnce(t *testing.T) {
	reg := NewRegistry(0)
	s := session.New(question.Default(), scoring.NewLexical(scoring.DefaultThresholds()))
	id := reg.Add(s)

	assert.True(t, reg.MarkArchived(id))
	assert.False(t, reg.MarkArchived(id))
	assert.False(t, reg.MarkArchived("missing"))
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }

	rl.IsAllowed("a")
	now = now.Add(30 * time.Second)
	rl.IsAllowed("b")
	require.Equal(t, 2, rl.Len())

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 1, rl.Len())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 0, rl.Len())
}

func TestResultsEndpoints(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/v1/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results": []}`, rec.Body.String())

	st := env.create(t)
	for _, q := range question.Default().All() {
		rec := env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/answers", answerRequest{Answer: q})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/v1/sessions/"+st.ID+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, []string{st.ID}, list["results"])

	rec = env.do(t, http.MethodGet, "/v1/results/"+st.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res storage.InterviewResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, st.ID, res.InterviewID)
	assert.Equal(t, 20, res.TotalScore)
	assert.Len(t, res.Entries, 4)

	rec = env.do(t, http.MethodGet, "/v1/results/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultsWithoutArchive(t *testing.T) {
	env := newEnv(t, func(d *Deps) { d.Sink = nil })

	rec := env.do(t, http.MethodGet, "/v1/results", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	rec = env.do(t, http.MethodGet, "/v1/results/any", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestOversizedJSONBody(t *testing.T) {
	env := newEnv(t, nil)
	st := env.create(t)
	huge := strings.Repeat("a", maxJSONSize+1)

	rec := env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/answers", answerRequest{Answer: huge})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/sessions/"+st.ID+"/help", helpRequest{Prompt: huge})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/sessions/"+st.ID, nil)
	var got session.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 0, got.Index)
}
