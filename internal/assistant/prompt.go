package assistant

import (
	"fmt"
	"strings"
)

// buildHelpPrompt создает системный промпт для подсказок по текущему вопросу
func buildHelpPrompt(question string) string {
	var prompt strings.Builder

	prompt.WriteString("You are an experienced interview coach helping a candidate practice for a job interview.\n\n")

	prompt.WriteString(fmt.Sprintf("CURRENT QUESTION: %q\n\n", question))

	prompt.WriteString("RULES:\n")
	prompt.WriteString("- Answer the candidate's request about this question only\n")
	prompt.WriteString("- Suggest structure and talking points, never write the full answer\n")
	prompt.WriteString("- Keep the reply under 120 words\n")
	prompt.WriteString("- End with one short follow-up question the interviewer might ask next\n")

	return prompt.String()
}
