package metrics

import (
	"context"

	"interview-practice/internal/scoring"
)

type similarity struct {
	next scoring.SimilarityBackend
	m    *Metrics
}

// InstrumentSimilarity считает вызовы сервиса сходства
func (m *Metrics) InstrumentSimilarity(next scoring.SimilarityBackend) scoring.SimilarityBackend {
	return &similarity{next: next, m: m}
}

func (s *similarity) Similarity(ctx context.Context, a, b string) (float64, error) {
	score, err := s.next.Similarity(ctx, a, b)
	s.m.IncrementAPICall("similarity", err == nil)
	return score, err
}

type bonus struct {
	next scoring.BonusSource
	m    *Metrics
}

// InstrumentBonus считает вызовы сервиса эмоций
func (m *Metrics) InstrumentBonus(next scoring.BonusSource) scoring.BonusSource {
	return &bonus{next: next, m: m}
}

func (b *bonus) Bonus(ctx context.Context, question, answer string) (scoring.Bonus, error) {
	res, err := b.next.Bonus(ctx, question, answer)
	b.m.IncrementAPICall("emotion", err == nil)
	return res, err
}
