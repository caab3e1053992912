package services

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/mock-interviewer/internal/apperrors"
)

type QuestionRequest struct {
	ResumeText  string
	JobPosition string
	Company     string
	Difficulty  string
	Count       int
}

// QuestionGenerator produces the ordered candidate questions for a session.
// The result length approximates Count; it is neither padded nor truncated.
type QuestionGenerator interface {
	Generate(ctx context.Context, req QuestionRequest) ([]string, error)
}

type questionGenerator struct {
	llm           LLMTask
	bank          QuestionBank
	embedder      Embedder
	promptBuilder *PromptBuilder
	temperature   float32
	referenceSize int
}

// NewQuestionGenerator builds a generator. bank and embedder may be nil, in
// which case no reference questions are retrieved.
func NewQuestionGenerator(llm LLMTask, bank QuestionBank, embedder Embedder, temperature float32) QuestionGenerator {
	return &questionGenerator{
		llm:           llm,
		bank:          bank,
		embedder:      embedder,
		promptBuilder: NewPromptBuilder(),
		temperature:   temperature,
		referenceSize: 5,
	}
}

func (g *questionGenerator) Generate(ctx context.Context, req QuestionRequest) ([]string, error) {
	references := g.retrieveReferences(ctx, req)

	prompt := g.promptBuilder.BuildQuestionsPrompt(
		req.ResumeText,
		req.JobPosition,
		req.Company,
		req.Difficulty,
		req.Count,
		references,
	)
	log.Printf("📝 Question generation prompt length: %d characters", len(prompt))

	response, err := g.llm.Execute(ctx, Task{
		Prompt:        prompt,
		Temperature:   g.temperature,
		ResearchQuery: g.promptBuilder.BuildResearchQuery(req.Company, req.JobPosition),
	})
	if err != nil {
		return nil, apperrors.Upstream(err, "question generation failed")
	}

	questions := NormalizeQuestions(response)
	if len(questions) == 0 {
		return nil, apperrors.New(apperrors.KindUpstream, "question generator returned no usable questions")
	}

	if req.Count > 0 && len(questions) != req.Count {
		log.Printf("⚠️  Requested %d questions, generator returned %d\n", req.Count, len(questions))
	}

	return questions, nil
}

func (g *questionGenerator) retrieveReferences(ctx context.Context, req QuestionRequest) string {
	if g.bank == nil || g.embedder == nil {
		return ""
	}

	query := fmt.Sprintf("%s interview questions, %s difficulty", req.JobPosition, req.Difficulty)
	embedding, err := g.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("⚠️  Warning: Failed to embed reference query: %v\n", err)
		return ""
	}

	results, err := g.bank.SearchSimilar(ctx, embedding, "", g.referenceSize)
	if err != nil {
		log.Printf("⚠️  Warning: Failed to retrieve reference questions: %v\n", err)
		return ""
	}

	return FormatReferenceQuestions(results)
}
