package rewrite

import (
	"fmt"
	"strings"
)

// Mode selects the rewrite strategy. Each mode maps to a fixed prompt.
type Mode string

const (
	// ModeClarity rewrites for maximum clarity, meaning preserved.
	ModeClarity Mode = "clarity"
	// ModeConcise cuts unnecessary words.
	ModeConcise Mode = "concise"
	// ModeFormal shifts to a professional register.
	ModeFormal Mode = "formal"
	// ModeCasual shifts to a conversational register.
	ModeCasual Mode = "casual"
	// ModeCoach analyzes the text and teaches instead of rewriting.
	ModeCoach Mode = "coach"
)

// ParseMode normalizes a mode string. Unknown values pass through so
// the dispatcher can fall back to the general-improvement prompt.
func ParseMode(s string) Mode {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "explain" { // historical name for coach mode
		return ModeCoach
	}
	return m
}

// systemPrompt frames every request. Explanations are part of the
// product: the writer is supposed to learn from each rewrite.
const systemPrompt = "You are a writing assistant. You help improve text while " +
	"preserving the writer's voice. Always explain WHY you made changes so the " +
	"writer learns. Be concise."

// buildPrompt returns the user prompt for a mode. Unknown modes get a
// general improvement prompt rather than an error.
func buildPrompt(mode Mode, text string) string {
	switch mode {
	case ModeClarity:
		return fmt.Sprintf("Rewrite this text for maximum clarity. Keep the meaning "+
			"identical.\n\nFirst, provide the rewritten text. Then write EXPLANATION: "+
			"followed by what you changed and why the writer should care (teach them)."+
			"\n\nText: %s", text)
	case ModeConcise:
		return fmt.Sprintf("Make this text more concise. Cut unnecessary words without "+
			"losing meaning.\n\nFirst, provide the rewritten text. Then write EXPLANATION: "+
			"followed by what you cut and why it was unnecessary (teach the writer to "+
			"self-edit).\n\nText: %s", text)
	case ModeFormal:
		return fmt.Sprintf("Rewrite in a more formal, professional tone.\n\nFirst, "+
			"provide the rewritten text. Then write EXPLANATION: followed by what tone "+
			"shifts you made and when formal tone matters.\n\nText: %s", text)
	case ModeCasual:
		return fmt.Sprintf("Rewrite in a more casual, conversational tone.\n\nFirst, "+
			"provide the rewritten text. Then write EXPLANATION: followed by what you "+
			"changed to make it more natural.\n\nText: %s", text)
	case ModeCoach:
		return fmt.Sprintf("Analyze this text as a writing coach. Identify grammar "+
			"issues, unclear phrasing, and style problems. For each issue, explain WHAT "+
			"is wrong and WHY it matters — teach the writer, don't just flag.\n\nText: %s",
			text)
	default:
		return fmt.Sprintf("Improve this text for clarity and correctness.\n\nFirst, "+
			"provide the improved text. Then write EXPLANATION: followed by a brief "+
			"teaching note.\n\nText: %s", text)
	}
}
