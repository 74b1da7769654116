package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"interview-practice/internal/clients"
)

// Assistant чат-ассистент, отвечающий на вопросы кандидата о текущем вопросе
type Assistant interface {
	Ask(ctx context.Context, question, prompt string) (string, error)
}

// HelpTurn одна пара "вопрос кандидата - ответ ассистента"
type HelpTurn struct {
	Prompt   string    `json:"prompt"`
	Reply    string    `json:"reply"`
	Failed   bool      `json:"failed,omitempty"`
	AskedAt  time.Time `json:"asked_at"`
	Question int       `json:"question"`
}

// recentHelpLimit сколько последних подсказок показывать
const recentHelpLimit = 3

// ErrEmptyPrompt пустой запрос к ассистенту
var ErrEmptyPrompt = errors.New("help prompt is empty")

// AskHelp спрашивает ассистента о текущем вопросе. Недоступность ассистента не ошибка:
// в историю пишется заглушка "Could not generate follow-up".
func (s *Session) AskHelp(ctx context.Context, prompt string) (HelpTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completeLocked() {
		return HelpTurn{}, ErrOutOfRange
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return HelpTurn{}, ErrEmptyPrompt
	}

	idx := s.current
	q, err := s.bank.Get(idx)
	if err != nil {
		return HelpTurn{}, err
	}

	turn := HelpTurn{Prompt: prompt, AskedAt: time.Now(), Question: idx}

	var reply string
	if s.assistant == nil {
		err = errors.New("assistant not configured")
	} else {
		reply, err = s.assistant.Ask(ctx, q, prompt)
	}

	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			s.logger().WithError(err).WithField("collaborator", "assistant").Warn("help request failed")
		}
		turn.Reply = clients.NoFollowUp
		turn.Failed = true
	} else {
		turn.Reply = strings.TrimSpace(reply)
	}

	s.help[idx] = append(s.help[idx], turn)
	return turn, nil
}

// RecentHelp последние три подсказки по вопросу i, от старой к новой
func (s *Session) RecentHelp(i int) []HelpTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.help[i]
	if len(turns) > recentHelpLimit {
		turns = turns[len(turns)-recentHelpLimit:]
	}
	out := make([]HelpTurn, len(turns))
	copy(out, turns)
	return out
}

// HelpCount полное количество подсказок по вопросу i
func (s *Session) HelpCount(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.help[i])
}
