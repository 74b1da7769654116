package question

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIndex возвращается (через IndexError) при обращении к вопросу вне диапазона
var ErrIndex = errors.New("question index out of range")

// IndexError описывает неверный индекс вопроса
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("question index %d out of range [0, %d)", e.Index, e.Count)
}

// Unwrap позволяет сравнивать через errors.Is(err, ErrIndex)
func (e *IndexError) Unwrap() error {
	return ErrIndex
}

// Bank представляет неизменяемый упорядоченный список вопросов интервью
type Bank struct {
	prompts []string
}

// New создает банк вопросов. Пустые вопросы не допускаются.
func New(prompts []string) (*Bank, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("question bank must contain at least one question")
	}

	copied := make([]string, len(prompts))
	for i, p := range prompts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("question %d is empty", i+1)
		}
		copied[i] = p
	}

	return &Bank{prompts: copied}, nil
}

// Default возвращает стандартный набор из четырех вопросов
func Default() *Bank {
	return &Bank{prompts: []string{
		"Tell me about yourself.",
		"Why should we hire you?",
		"What are your strengths?",
		"Where do you see yourself in 5 years?",
	}}
}

// Get возвращает вопрос по индексу
func (b *Bank) Get(i int) (string, error) {
	if i < 0 || i >= len(b.prompts) {
		return "", &IndexError{Index: i, Count: len(b.prompts)}
	}
	return b.prompts[i], nil
}

// Count возвращает количество вопросов
func (b *Bank) Count() int {
	return len(b.prompts)
}

// All возвращает копию всех вопросов в порядке интервью
func (b *Bank) All() []string {
	out := make([]string, len(b.prompts))
	copy(out, b.prompts)
	return out
}
