package clients

import (
	"context"
	"fmt"
	"math"
)

// --- Similarity (/similarity) ---
type SimilarityReq struct {
	TextA string `json:"text_a"`
	TextB string `json:"text_b"`
}
type SimilarityResp struct {
	Score float64 `json:"score"`
}

// SimilarityClient обращается к внешнему сервису векторного сходства
type SimilarityClient struct {
	http *HTTP
	url  string
}

func NewSimilarityClient(h *HTTP, url string) *SimilarityClient {
	return &SimilarityClient{http: h, url: url}
}

// Similarity возвращает сходство двух текстов в диапазоне [0,1]
func (c *SimilarityClient) Similarity(ctx context.Context, a, b string) (float64, error) {
	var out SimilarityResp
	if err := c.http.postJSON(ctx, endpoint(c.url, "/similarity"), SimilarityReq{TextA: a, TextB: b}, &out); err != nil {
		return 0, fail("similarity", err)
	}
	if math.IsNaN(out.Score) || out.Score < 0 || out.Score > 1 {
		return 0, fail("similarity", fmt.Errorf("score %v outside [0,1]", out.Score))
	}
	return out.Score, nil
}
