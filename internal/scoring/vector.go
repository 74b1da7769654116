package scoring

import (
	"context"
	"math"
	"regexp"
	"strings"
)

const VectorName = "vector"

// SimilarityBackend внешний сервис сходства двух текстов, результат в [0,1]
type SimilarityBackend interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Vector оценивает косинусное сходство TF-IDF векторов вопроса и ответа.
// Если задан backend, он используется первым, локальный TF-IDF - запасной вариант.
type Vector struct {
	base
	backend SimilarityBackend
}

func NewVector(t Thresholds, backend SimilarityBackend, opts ...Option) *Vector {
	return &Vector{base: newBase(t, opts), backend: backend}
}

func (v *Vector) Name() string { return VectorName }

func (v *Vector) Score(ctx context.Context, question, answer string) Record {
	return v.record(ctx, question, answer, v.relevance(ctx, question, answer))
}

func (v *Vector) relevance(ctx context.Context, question, answer string) float64 {
	if v.backend != nil {
		sim, err := v.backend.Similarity(ctx, question, answer)
		if err == nil {
			return clamp01(sim)
		}
		v.log.WithError(err).Warn("similarity backend unavailable, using local tf-idf")
	}
	return TFIDFCosine(question, answer)
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(s string) []string {
	return tokenRe.FindAllString(strings.ToLower(s), -1)
}

// TFIDFCosine строит TF-IDF векторы по корпусу из двух документов {question, answer}
// (сглаженный idf = ln((1+n)/(1+df)) + 1, L2 нормализация) и возвращает их косинус.
func TFIDFCosine(question, answer string) float64 {
	docs := [2]map[string]float64{termCounts(tokenize(question)), termCounts(tokenize(answer))}
	if len(docs[0]) == 0 || len(docs[1]) == 0 {
		return 0
	}

	df := make(map[string]int)
	for _, d := range docs {
		for term := range d {
			df[term]++
		}
	}

	const n = float64(len(docs))
	var vecs [2]map[string]float64
	for i, d := range docs {
		vec := make(map[string]float64, len(d))
		var norm float64
		for term, tf := range d {
			idf := math.Log((1+n)/(1+float64(df[term]))) + 1
			w := tf * idf
			vec[term] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for term := range vec {
			vec[term] /= norm
		}
		vecs[i] = vec
	}

	var dot float64
	for term, w := range vecs[0] {
		dot += w * vecs[1][term]
	}
	return clamp01(dot)
}

func termCounts(tokens []string) map[string]float64 {
	counts := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
