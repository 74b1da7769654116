// Package server HTTP интерфейс тренажера интервью.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"interview-practice/internal/metrics"
	"interview-practice/internal/report"
	"interview-practice/internal/scoring"
	"interview-practice/internal/session"
	"interview-practice/internal/storage"
)

const (
	maxUploadSize = 10 << 20
	maxJSONSize   = 1 << 20
)

// Transcriber переводит аудио ответа в текст
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// Deps зависимости обработчиков; Transcriber и Sink необязательны
type Deps struct {
	NewSession   func() *session.Session
	Transcriber  Transcriber
	Sink         *storage.Sink
	Metrics      *metrics.Metrics
	Log          logrus.FieldLogger
	ReportFormat string
	RateLimit    int
	SessionTTL   time.Duration
}

type Handler struct {
	deps        Deps
	registry    *Registry
	rateLimiter *RateLimiter
	log         logrus.FieldLogger
}

func NewHandler(deps Deps) *Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewMetrics()
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.RateLimit <= 0 {
		deps.RateLimit = 10
	}
	return &Handler{
		deps:        deps,
		registry:    NewRegistry(deps.SessionTTL),
		rateLimiter: NewRateLimiter(deps.RateLimit, time.Minute),
		log:         deps.Log,
	}
}

// Routes собирает маршрутизатор
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.Handle("/metrics", h.deps.Metrics.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(h.rateLimiter.Middleware)

	v1.HandleFunc("/sessions", h.Create).Methods("POST")
	v1.HandleFunc("/sessions/{id}", h.Get).Methods("GET")
	v1.HandleFunc("/sessions/{id}/answers", h.Answer).Methods("POST")
	v1.HandleFunc("/sessions/{id}/audio", h.Audio).Methods("POST")
	v1.HandleFunc("/sessions/{id}/previous", h.Previous).Methods("POST")
	v1.HandleFunc("/sessions/{id}/reset", h.Reset).Methods("POST")
	v1.HandleFunc("/sessions/{id}/help", h.Help).Methods("POST")
	v1.HandleFunc("/sessions/{id}/report", h.Report).Methods("GET")
	v1.HandleFunc("/results", h.Results).Methods("GET")
	v1.HandleFunc("/results/{id}", h.Result).Methods("GET")

	return r
}

// StartCleanup ежечасно удаляет неактивные сессии и устаревшие записи лимитера
func (h *Handler) StartCleanup(ctx context.Context) {
	h.registry.StartCleanup(ctx, time.Hour, func(removed int) {
		h.rateLimiter.Cleanup()
		h.deps.Metrics.SetActiveSessions(h.registry.Len())
		if removed > 0 {
			h.log.WithField("removed", removed).Info("inactive sessions removed")
		}
	})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := mux.Vars(r)["id"]
	s, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}

// Create handles POST /v1/sessions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.deps.NewSession()
	id := h.registry.Add(s)

	h.deps.Metrics.IncrementInterviewsStarted()
	h.deps.Metrics.SetActiveSessions(h.registry.Len())
	h.log.WithField("session_id", id).Info("interview started")

	writeJSON(w, http.StatusCreated, s.Status())
}

// Get handles GET /v1/sessions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Status())
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Record scoring.Record `json:"record"`
	Status session.Status `json:"status"`
}

// Answer handles POST /v1/sessions/{id}/answers: JSON {answer} или multipart поле file
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var (
		rec scoring.Record
		err error
	)
	if isMultipart(r) {
		var data []byte
		data, _, err = readUpload(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rec, err = s.SubmitUpload(r.Context(), data)
	} else {
		var req answerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err = s.Submit(r.Context(), req.Answer)
	}

	if err != nil {
		h.submitError(w, err)
		return
	}

	h.deps.Metrics.ObserveAnswer(rec.Score)
	writeJSON(w, http.StatusOK, answerResponse{Record: rec, Status: s.Status()})
}

// Audio handles POST /v1/sessions/{id}/audio
func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if h.deps.Transcriber == nil {
		writeError(w, http.StatusNotImplemented, "transcription service is not configured")
		return
	}
	if s.IsComplete() {
		writeError(w, http.StatusConflict, session.ErrOutOfRange.Error())
		return
	}

	data, filename, err := readUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text, err := h.deps.Transcriber.Transcribe(r.Context(), filename, data)
	h.deps.Metrics.IncrementAPICall("transcriber", err == nil)
	if err != nil {
		h.log.WithError(err).Warn("transcription failed")
		writeError(w, http.StatusBadGateway, "could not transcribe audio, please type your answer")
		return
	}

	rec, err := s.Submit(r.Context(), text)
	if err != nil {
		h.submitError(w, err)
		return
	}

	h.deps.Metrics.ObserveAnswer(rec.Score)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transcript": text,
		"record":     rec,
		"status":     s.Status(),
	})
}

func (h *Handler) submitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyAnswer):
		h.deps.Metrics.IncrementEmptyAnswers()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrInvalidUpload):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrOutOfRange):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.WithError(err).Error("submit failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Previous handles POST /v1/sessions/{id}/previous
func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := s.Previous(); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Status())
}

// Reset handles POST /v1/sessions/{id}/reset; ответ содержит новый идентификатор
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	oldID := mux.Vars(r)["id"]

	s.Reset()
	h.registry.Rekey(oldID, s.ID())
	h.deps.Metrics.IncrementInterviewsStarted()

	writeJSON(w, http.StatusOK, s.Status())
}

type helpRequest struct {
	Prompt string `json:"prompt"`
}

type helpResponse struct {
	Turn   session.HelpTurn   `json:"turn"`
	Recent []session.HelpTurn `json:"recent"`
}

// Help handles POST /v1/sessions/{id}/help
func (h *Handler) Help(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req helpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	turn, err := s.AskHelp(r.Context(), req.Prompt)
	switch {
	case errors.Is(err, session.ErrEmptyPrompt):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, session.ErrOutOfRange):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.deps.Metrics.IncrementHelpRequests()
	h.deps.Metrics.IncrementAPICall("assistant", !turn.Failed)

	writeJSON(w, http.StatusOK, helpResponse{Turn: turn, Recent: s.RecentHelp(turn.Question)})
}

// Report handles GET /v1/sessions/{id}/report?format=text|pdf
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.deps.ReportFormat
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.Finalize()
	if errors.Is(err, session.ErrNotComplete) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.registry.MarkArchived(res.SessionID) {
		h.deps.Metrics.IncrementInterviewsCompleted()
		if h.deps.Sink != nil {
			if err := h.deps.Sink.SaveResult(storage.NewResult(res)); err != nil {
				h.log.WithError(err).Error("failed to archive result")
			}
		}
	}

	art, err := renderer.Render(report.FromResult(res))
	if err != nil {
		h.log.WithError(err).Error("failed to render report")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}

// Results handles GET /v1/results
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	if h.deps.Sink == nil {
		writeError(w, http.StatusNotImplemented, "result archive is not configured")
		return
	}
	ids, err := h.deps.Sink.ListResults()
	if err != nil {
		h.log.WithError(err).Error("failed to list results")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"results": ids})
}

// Result handles GET /v1/results/{id}
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	if h.deps.Sink == nil {
		writeError(w, http.StatusNotImplemented, "result archive is not configured")
		return
	}
	res, err := h.deps.Sink.LoadResult(mux.Vars(r)["id"])
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("failed to load result")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decodeJSON читает тело запроса не больше maxJSONSize; при ошибке ответ уже записан
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONSize)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errors.New("multipart field \"file\" is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", errors.New("failed to read upload")
	}
	return data, header.Filename, nil
}
