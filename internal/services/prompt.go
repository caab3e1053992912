package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildQuestionsPrompt creates prompt for interview question generation
func (pb *PromptBuilder) BuildQuestionsPrompt(resumeText, jobPosition, company, difficulty string, count int, references string) string {
	if strings.TrimSpace(resumeText) == "" {
		resumeText = "No resume was provided. Ask questions suitable for a typical candidate for this role."
	}
	if strings.TrimSpace(references) == "" {
		references = "No reference questions available."
	}

	return fmt.Sprintf(`You are a senior hiring manager at %s preparing a %s-difficulty interview for a %s position.

CANDIDATE RESUME:
%s

REFERENCE QUESTIONS (examples of the style and depth expected, do not copy verbatim):
%s

Write %d interview questions for this candidate. Mix behavioral and technical questions, ground them in the candidate's resume where possible, and use anything you know about %s to make them specific to the company.

Return your response as a JSON array of strings, one question per element:
["<question 1>", "<question 2>", ...]

Return ONLY the JSON array, no markdown, no numbering, no explanation.`,
		company, difficulty, jobPosition, resumeText, references, count, company)
}

// BuildResponsePrompt creates prompt for the interviewer's next utterance
func (pb *PromptBuilder) BuildResponsePrompt(userUtterance string, remainingQuestions []string) string {
	remaining := "None. Wrap up with a closing follow-up question."
	if len(remainingQuestions) > 0 {
		var lines []string
		for i, q := range remainingQuestions {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, q))
		}
		remaining = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`You are a professional interviewer who has interviewed candidates for prestigious jobs for the last 30 years. You are known for thoughtful questions that reveal who candidates are and how qualified they are for the job.

CANDIDATE'S LAST ANSWER:
%s

REMAINING QUESTIONS:
%s

Analyze the candidate's answer. Then either ask a single insightful follow-up question that digs deeper into the answer, or ask the most appropriate question from the remaining list. Keep a professional, engaging tone.

Return exactly one interview question in plain text. No preamble, no explanation, no list, no quotation marks.`,
		userUtterance, remaining)
}

// BuildFeedbackPrompt creates prompt for scoring a finished interview
func (pb *PromptBuilder) BuildFeedbackPrompt(transcript string) string {
	return fmt.Sprintf(`You are an expert interview coach reviewing the transcript of a mock interview.

TRANSCRIPT:
%s

Score the candidate on three parameters, each an integer from 0 to 100:
1. Communication - clarity, structure and conciseness of answers
2. Content - relevance, depth and correctness of what was said
3. Confidence - assertiveness and composure throughout the interview

Return your response in the following JSON format:
{
  "communication": <integer 0-100>,
  "content": <integer 0-100>,
  "confidence": <integer 0-100>,
  "feedback": "<detailed feedback 3-5 sentences explaining strengths and what to improve>"
}

Be objective. Reference specific answers from the transcript.`,
		transcript)
}

// BuildResearchQuery creates the web research query for a company
func (pb *PromptBuilder) BuildResearchQuery(company, jobPosition string) string {
	company = strings.TrimSpace(company)
	if company == "" {
		return ""
	}
	return fmt.Sprintf("%s company %s interview culture values", company, jobPosition)
}

// Helper to format question bank hits as prompt context
func FormatReferenceQuestions(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Reference %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
