package clients

import (
	"context"
	"fmt"
	"math"
	"strings"

	"interview-practice/internal/scoring"
)

// --- Emotion (/detect) ---
type EmoReq struct {
	Text string `json:"text"`
}
type EmoScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
type EmoResp struct {
	Emotions        []EmoScore `json:"emotions"`
	DominantEmotion string     `json:"dominant_emotion"`
}

// Emotion доминирующая эмоция и ее уверенность
type Emotion struct {
	Label string
	Score float64
}

// EmotionClient обращается к сервису распознавания эмоций
type EmotionClient struct {
	http *HTTP
	url  string
}

func NewEmotionClient(h *HTTP, url string) *EmotionClient {
	return &EmotionClient{http: h, url: url}
}

// Analyze определяет доминирующую эмоцию ответа
func (c *EmotionClient) Analyze(ctx context.Context, text string) (*Emotion, error) {
	var out EmoResp
	if err := c.http.postJSON(ctx, endpoint(c.url, "/detect"), EmoReq{Text: text}, &out); err != nil {
		return nil, fail("emotion", err)
	}
	if out.DominantEmotion == "" {
		return nil, fail("emotion", fmt.Errorf("empty dominant emotion"))
	}

	emo := &Emotion{Label: out.DominantEmotion}
	for _, e := range out.Emotions {
		if strings.EqualFold(e.Label, out.DominantEmotion) {
			emo.Score = e.Score
			break
		}
	}
	return emo, nil
}

// EmotionAnalyzer источник эмоции для бонуса
type EmotionAnalyzer interface {
	Analyze(ctx context.Context, text string) (*Emotion, error)
}

var positiveEmotions = map[string]bool{
	"joy":       true,
	"happy":     true,
	"happiness": true,
	"confident": true,
	"calm":      true,
	"neutral":   true,
}

// EmotionBonus превращает эмоцию ответа в ограниченный аддитивный бонус к оценке
type EmotionBonus struct {
	Analyzer EmotionAnalyzer
	Max      int
}

// Bonus реализует scoring.BonusSource
func (b *EmotionBonus) Bonus(ctx context.Context, _ string, answer string) (scoring.Bonus, error) {
	emo, err := b.Analyzer.Analyze(ctx, answer)
	if err != nil {
		return scoring.Bonus{}, err
	}

	label := strings.ToLower(emo.Label)
	points := 0
	if positiveEmotions[label] {
		confidence := math.Max(0, math.Min(1, emo.Score))
		points = int(math.Round(confidence * float64(b.Max)))
	}
	return scoring.Bonus{Points: points, Label: label}, nil
}
