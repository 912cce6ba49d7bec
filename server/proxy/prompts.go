package proxy

import (
	"fmt"
	"strings"

	"github.com/satchelhq/satchel/plugin/ai/assist"
)

const (
	summarizeSystemPrompt = "You are a study assistant. Summarize the given course material in a few short " +
		"paragraphs a student can review quickly. Keep key terms and definitions."

	estimateSystemPrompt = "You estimate how long an assignment takes a typical student. Answer with a short " +
		"phrase like \"about 2 hours\" or \"3-4 hours\" and nothing else."

	studyPlanSystemPrompt = "You break an assignment into an ordered study plan. Respond with JSON only, shaped " +
		`{"steps":[{"title":"...","minutes":30,"detail":"..."}]}. No prose around the JSON.`

	flashcardsSystemPrompt = "You turn course material into flashcards. Respond with JSON only, shaped " +
		`{"cards":[{"front":"...","back":"..."}]}. No prose around the JSON.`

	tutorSystemPrompt = "You are a patient tutor. Answer the student's question clearly, step by step. " +
		"Use the provided course context when it is relevant."
)

// assignmentPrompt renders an assignment into the user message the estimate
// and study plan prompts consume.
func assignmentPrompt(a assist.Assignment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", a.Course)
	fmt.Fprintf(&b, "Assignment: %s\n", a.Title)
	if a.DueAt != "" {
		fmt.Fprintf(&b, "Due: %s\n", a.DueAt)
	}
	if a.Points > 0 {
		fmt.Fprintf(&b, "Points: %g\n", a.Points)
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Description)
	}
	return b.String()
}
