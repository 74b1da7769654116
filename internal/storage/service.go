// Package storage сохраняет отчеты и архив результатов в каталог outputs.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"interview-practice/internal/report"
	"interview-practice/internal/session"
)

const (
	resultPrefix = "interview_"
	resultExt    = ".json"
)

// Sink пишет файлы в каталог
type Sink struct {
	dir string
}

func NewSink(dir string) *Sink {
	if dir == "" {
		dir = "output"
	}
	return &Sink{dir: dir}
}

func (s *Sink) Dir() string {
	return s.dir
}

// Save записывает артефакт отчета под его фиксированным именем и возвращает путь
func (s *Sink) Save(art *report.Artifact) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, filepath.Base(art.Filename))
	if err := os.WriteFile(path, art.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return path, nil
}

// NewResult собирает архивную запись из финализированной сессии
func NewResult(res *session.Result) *InterviewResult {
	r := report.FromResult(res)
	return &InterviewResult{
		InterviewID: res.SessionID,
		Timestamp:   r.GeneratedAt.Format(time.RFC3339),
		Duration:    res.Duration.Round(time.Second).String(),
		TotalScore:  r.Total,
		MaxScore:    r.Max,
		Entries:     r.Entries,
	}
}

// SaveResult сохраняет результат интервью в JSON файл
func (s *Sink) SaveResult(result *InterviewResult) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	path := s.resultPath(result.InterviewID)

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// LoadResult загружает результат интервью из JSON файла
func (s *Sink) LoadResult(interviewID string) (*InterviewResult, error) {
	path := s.resultPath(interviewID)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var result InterviewResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// ListResults возвращает идентификаторы всех сохраненных интервью
func (s *Sink) ListResults() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", s.dir, err)
	}

	results := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != resultExt || !strings.HasPrefix(name, resultPrefix) {
			continue
		}
		results = append(results, strings.TrimSuffix(strings.TrimPrefix(name, resultPrefix), resultExt))
	}

	return results, nil
}

func (s *Sink) resultPath(interviewID string) string {
	return filepath.Join(s.dir, resultPrefix+filepath.Base(interviewID)+resultExt)
}
