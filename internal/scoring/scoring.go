// Package scoring оценивает релевантность ответа вопросу и переводит ее в баллы.
package scoring

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Record результат оценки одного ответа
type Record struct {
	Score     int     `json:"score"`
	Relevance float64 `json:"relevance"`
	Bonus     int     `json:"bonus"`
	Signal    string  `json:"signal,omitempty"`
}

// Strategy подключаемая стратегия оценки ответа
type Strategy interface {
	Name() string
	Score(ctx context.Context, question, answer string) Record
	MaxPerQuestion() int
}

// Thresholds правило перевода релевантности в баллы
type Thresholds struct {
	Threshold float64
	High      int
	Low       int
	MaxBonus  int
}

// DefaultThresholds значения из минимальной версии: 5 баллов при релевантности > 0.3, иначе 2
func DefaultThresholds() Thresholds {
	return Thresholds{Threshold: 0.3, High: 5, Low: 2}
}

// Validate проверяет согласованность порогов
func (t Thresholds) Validate() error {
	if t.Threshold < 0 || t.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0,1], got %v", t.Threshold)
	}
	if t.Low < 0 {
		return fmt.Errorf("low score must not be negative, got %d", t.Low)
	}
	if t.High < t.Low {
		return fmt.Errorf("high score (%d) must be >= low score (%d)", t.High, t.Low)
	}
	if t.MaxBonus < 0 {
		return fmt.Errorf("max bonus must not be negative, got %d", t.MaxBonus)
	}
	return nil
}

// Classify строго больше порога - высокий балл, иначе низкий
func (t Thresholds) Classify(relevance float64) int {
	if relevance > t.Threshold {
		return t.High
	}
	return t.Low
}

// MaxPerQuestion максимальный балл за вопрос с учетом бонуса
func (t Thresholds) MaxPerQuestion() int {
	return t.High + t.MaxBonus
}

// Bonus аддитивный бонус от внешнего сигнала (эмоции, просодия)
type Bonus struct {
	Points int
	Label  string
}

// BonusSource внешний источник бонуса. Ошибка означает "не проанализировано".
type BonusSource interface {
	Bonus(ctx context.Context, question, answer string) (Bonus, error)
}

// NotAnalyzed метка сигнала, когда источник бонуса недоступен
const NotAnalyzed = "Not Analyzed"

// Option настраивает стратегию
type Option func(*base)

// WithBonus подключает внешний источник бонуса
func WithBonus(src BonusSource) Option {
	return func(b *base) { b.bonus = src }
}

// WithLogger задает логгер для предупреждений о недоступных сервисах
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *base) {
		if log != nil {
			b.log = log
		}
	}
}

type base struct {
	thresholds Thresholds
	bonus      BonusSource
	log        logrus.FieldLogger
}

func newBase(t Thresholds, opts []Option) base {
	b := base{thresholds: t, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// record собирает итоговую запись: пороговый балл плюс ограниченный бонус
func (b *base) record(ctx context.Context, question, answer string, relevance float64) Record {
	rec := Record{
		Score:     b.thresholds.Classify(relevance),
		Relevance: relevance,
	}

	if b.bonus == nil {
		return rec
	}

	bonus, err := b.bonus.Bonus(ctx, question, answer)
	if err != nil {
		b.log.WithError(err).Warn("bonus signal unavailable")
		rec.Signal = NotAnalyzed
		return rec
	}

	rec.Bonus = min(max(bonus.Points, 0), b.thresholds.MaxBonus)
	rec.Score += rec.Bonus
	rec.Signal = bonus.Label
	return rec
}

func (b *base) MaxPerQuestion() int {
	return b.thresholds.MaxPerQuestion()
}

// New создает стратегию по имени: "lexical" или "vector"
func New(name string, t Thresholds, backend SimilarityBackend, opts ...Option) (Strategy, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	switch name {
	case "", LexicalName:
		return NewLexical(t, opts...), nil
	case VectorName:
		return NewVector(t, backend, opts...), nil
	default:
		return nil, fmt.Errorf("unknown scorer: %s", name)
	}
}
