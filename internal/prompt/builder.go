// Package prompt turns a user message and a month of expenses into the
// system prompt sent to the language model.
package prompt

import (
	"strings"

	"expenseminimizer/internal/core"
)

// DefaultPersona is the assistant name used in the framing.
const DefaultPersona = "ExpenseMinimizerGPT"

// Builder renders prompts. The zero value uses DefaultPersona.
type Builder struct {
	Persona string
}

// Build renders the prompt with the default persona.
func Build(userText string, month core.Month, snap core.Snapshot) string {
	return Builder{}.Build(userText, month, snap)
}

// Build is deterministic: the same inputs always yield the same bytes.
// Categories appear in declared order, entries in insertion order, and
// empty categories are left out. An empty snapshot yields no expense section.
func (b Builder) Build(userText string, month core.Month, snap core.Snapshot) string {
	persona := strings.TrimSpace(b.Persona)
	if persona == "" {
		persona = DefaultPersona
	}

	var sb strings.Builder
	sb.WriteString("You are " + persona + ". Based on the user's current monthly expenses, help them optimize their budget.\n")
	sb.WriteString("\n")
	sb.WriteString("If asked, do one or more of the following:\n")
	sb.WriteString("- Suggest expenses to remove or reduce.\n")
	sb.WriteString("- Recommend better alternatives and explain your reasoning.\n")
	sb.WriteString("- Propose smart purchases or investments based on emotional/time cost patterns.\n")
	sb.WriteString("\n")
	sb.WriteString("Be critical and helpful. Only act when prompted.\n")
	sb.WriteString("\n")
	sb.WriteString("USER MESSAGE: " + userText + "\n")
	sb.WriteString("CURRENT MONTH: " + month.Label() + "\n")

	cats := snap.Categories()
	if len(cats) == 0 {
		return sb.String()
	}
	sb.WriteString("EXPENSES:\n")
	for _, c := range cats {
		sb.WriteString("- " + string(c) + ":\n")
		for _, e := range snap.Entries(c) {
			sb.WriteString("  • " + e.Name + ": " + core.FormatNumber(e.Amount) + "\n")
		}
	}
	return sb.String()
}
