// Package session реализует конечный автомат интервью: текущий вопрос, ответы,
// оценки, возврат к предыдущему вопросу и финализация.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"interview-practice/internal/question"
	"interview-practice/internal/scoring"
)

var (
	// ErrEmptyAnswer пустой ответ; состояние не меняется, можно отправить заново
	ErrEmptyAnswer = errors.New("please enter or upload your answer")
	// ErrOutOfRange операция над завершенным интервью
	ErrOutOfRange = errors.New("interview already completed")
	// ErrNotComplete финализация до ответа на все вопросы
	ErrNotComplete = errors.New("interview not complete")
	// ErrInvalidUpload загруженный файл не является текстом UTF-8
	ErrInvalidUpload = errors.New("uploaded answer is not valid UTF-8 text")
	// ErrReviewDisabled возврат к предыдущему вопросу выключен в конфигурации
	ErrReviewDisabled = errors.New("going back to previous questions is disabled")
)

// State состояние сессии
type State string

const (
	StateInProgress State = "in_progress"
	StateReviewing  State = "reviewing"
	StateComplete   State = "complete"
)

// Session одна попытка интервью. Все методы безопасны для конкурентного вызова:
// весь публичный интерфейс сериализован одним мьютексом.
type Session struct {
	mu sync.Mutex

	id          string
	bank        *question.Bank
	strategy    scoring.Strategy
	assistant   Assistant
	allowReview bool
	log         logrus.FieldLogger

	current   int
	answers   map[int]string
	scores    map[int]scoring.Record
	help      map[int][]HelpTurn
	startedAt time.Time
}

// Option настраивает сессию
type Option func(*Session)

// WithAssistant подключает чат-ассистента для подсказок
func WithAssistant(a Assistant) Option {
	return func(s *Session) { s.assistant = a }
}

// WithReview включает или выключает возврат к предыдущим вопросам
func WithReview(enabled bool) Option {
	return func(s *Session) { s.allowReview = enabled }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// New создает сессию над банком вопросов с выбранной стратегией оценки
func New(bank *question.Bank, strategy scoring.Strategy, opts ...Option) *Session {
	s := &Session{
		bank:        bank,
		strategy:    strategy,
		allowReview: true,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

func (s *Session) resetLocked() {
	s.id = uuid.New().String()
	s.current = 0
	s.answers = make(map[int]string)
	s.scores = make(map[int]scoring.Record)
	s.help = make(map[int][]HelpTurn)
	s.startedAt = time.Now()
}

func (s *Session) logger() logrus.FieldLogger {
	return s.log.WithField("session_id", s.id)
}

// ID идентификатор текущей попытки; меняется после Reset
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// CurrentQuestion возвращает текущий вопрос
func (s *Session) CurrentQuestion() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completeLocked() {
		return "", ErrOutOfRange
	}
	return s.bank.Get(s.current)
}

// CurrentIndex индекс текущего вопроса в [0, N]
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Total количество вопросов
func (s *Session) Total() int {
	return s.bank.Count()
}

// Submit оценивает ответ на текущий вопрос, сохраняет его и переходит к следующему.
// При повторной отправке последнего, уже отвеченного вопроса индекс не сдвигается.
func (s *Session) Submit(ctx context.Context, answer string) (scoring.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completeLocked() {
		return scoring.Record{}, ErrOutOfRange
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return scoring.Record{}, ErrEmptyAnswer
	}

	idx := s.current
	q, err := s.bank.Get(idx)
	if err != nil {
		return scoring.Record{}, err
	}

	rec := s.strategy.Score(ctx, q, answer)

	_, revised := s.answers[idx]
	s.answers[idx] = answer
	s.scores[idx] = rec

	if !(revised && idx == s.bank.Count()-1) {
		s.current++
	}

	s.logger().WithFields(logrus.Fields{
		"question":  idx + 1,
		"relevance": rec.Relevance,
		"score":     rec.Score,
		"revised":   revised,
	}).Debug("answer scored")

	return rec, nil
}

// SubmitUpload декодирует загруженный файл как UTF-8 текст и отправляет его как ответ
func (s *Session) SubmitUpload(ctx context.Context, data []byte) (scoring.Record, error) {
	if !utf8.Valid(data) {
		return scoring.Record{}, ErrInvalidUpload
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	return s.Submit(ctx, text)
}

// Previous возвращается на один вопрос назад; ответ на покинутом вопросе сохраняется
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.allowReview {
		return ErrReviewDisabled
	}
	if s.current > 0 {
		s.current--
	}
	return nil
}

// IsComplete true, когда текущий индекс достиг количества вопросов
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked()
}

func (s *Session) completeLocked() bool {
	return s.current >= s.bank.Count()
}

// State текущее состояние автомата
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	if s.completeLocked() {
		return StateComplete
	}
	if _, ok := s.answers[s.current]; ok {
		return StateReviewing
	}
	return StateInProgress
}

// TotalScore сумма всех сохраненных оценок
func (s *Session) TotalScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

func (s *Session) totalLocked() int {
	total := 0
	for _, rec := range s.scores {
		total += rec.Score
	}
	return total
}

// MaxScore N * максимальный балл за вопрос
func (s *Session) MaxScore() int {
	return s.bank.Count() * s.strategy.MaxPerQuestion()
}

// Progress процент отвеченных вопросов
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

// progressLocked процент отвеченных; пустой банк дает 0, а не NaN
func (s *Session) progressLocked() float64 {
	n := s.bank.Count()
	if n == 0 {
		return 0
	}
	return float64(len(s.answers)) / float64(n) * 100.0
}

// Answer возвращает сохраненный ответ и его оценку
func (s *Session) Answer(i int) (string, scoring.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, ok := s.answers[i]
	if !ok {
		return "", scoring.Record{}, false
	}
	return answer, s.scores[i], true
}

// Reset начинает новую попытку: индекс 0, ответы, оценки и история подсказок очищаются
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.id
	s.resetLocked()
	s.logger().WithField("previous_session_id", previous).Info("interview reset")
}

// Status снимок состояния для отображения
type Status struct {
	ID       string  `json:"id"`
	State    State   `json:"state"`
	Index    int     `json:"index"`
	Total    int     `json:"total"`
	Answered int     `json:"answered"`
	Score    int     `json:"score"`
	MaxScore int     `json:"max_score"`
	Progress float64 `json:"progress"`
	Question string  `json:"question,omitempty"`
}

// Status возвращает согласованный снимок под одной блокировкой
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		ID:       s.id,
		State:    s.stateLocked(),
		Index:    s.current,
		Total:    s.bank.Count(),
		Answered: len(s.answers),
		Score:    s.totalLocked(),
		MaxScore: s.bank.Count() * s.strategy.MaxPerQuestion(),
		Progress: s.progressLocked(),
	}
	if q, err := s.bank.Get(s.current); err == nil {
		st.Question = q
	}
	return st
}

// Result зафиксированный итог интервью для построения отчета
type Result struct {
	SessionID      string
	Questions      []string
	Answers        map[int]string
	Scores         map[int]scoring.Record
	TotalScore     int
	MaxScore       int
	MaxPerQuestion int
	Duration       time.Duration
}

// Finalize переводит сессию в Complete и возвращает копию результатов.
// Требует ответа на каждый вопрос.
func (s *Session) Finalize() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.bank.Count()
	if len(s.answers) < n {
		return nil, fmt.Errorf("%w: %d of %d questions answered", ErrNotComplete, len(s.answers), n)
	}
	s.current = n

	answers := make(map[int]string, len(s.answers))
	for i, a := range s.answers {
		answers[i] = a
	}
	scores := make(map[int]scoring.Record, len(s.scores))
	for i, r := range s.scores {
		scores[i] = r
	}

	res := &Result{
		SessionID:      s.id,
		Questions:      s.bank.All(),
		Answers:        answers,
		Scores:         scores,
		TotalScore:     s.totalLocked(),
		MaxScore:       n * s.strategy.MaxPerQuestion(),
		MaxPerQuestion: s.strategy.MaxPerQuestion(),
		Duration:       time.Since(s.startedAt),
	}

	s.logger().WithFields(logrus.Fields{
		"score":     res.TotalScore,
		"max_score": res.MaxScore,
	}).Info("interview completed")

	return res, nil
}
