package clients

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

type TransSeg struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
type ASRResp struct {
	Text     string     `json:"text"`
	Segments []TransSeg `json:"segments"`
	Language string     `json:"language"`
}

// ASRClient отправляет аудио ответа на транскрипцию
type ASRClient struct {
	http *HTTP
	url  string
}

func NewASRClient(h *HTTP, url string) *ASRClient {
	return &ASRClient{http: h, url: url}
}

// Transcribe возвращает текст записанного ответа
func (c *ASRClient) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fail("transcription", fmt.Errorf("empty audio"))
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fail("transcription", err)
	}
	if _, err = fw.Write(audio); err != nil {
		return "", fail("transcription", err)
	}
	if err = w.Close(); err != nil {
		return "", fail("transcription", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(c.url, "/transcribe"), &b)
	if err != nil {
		return "", fail("transcription", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out ASRResp
	if err := c.http.do(req, &out); err != nil {
		return "", fail("transcription", err)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		parts := make([]string, 0, len(out.Segments))
		for _, s := range out.Segments {
			if t := strings.TrimSpace(s.Text); t != "" {
				parts = append(parts, t)
			}
		}
		text = strings.Join(parts, " ")
	}
	return text, nil
}
