package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// ResearchNote is one piece of context gathered by a ResearchTool.
type ResearchNote struct {
	Source string
	Title  string
	URL    string
	Text   string
}

// ResearchTool gathers context for a query. Tools run in order and each one
// sees the notes produced before it.
type ResearchTool interface {
	Name() string
	Research(ctx context.Context, query string, prior []ResearchNote) ([]ResearchNote, error)
}

type toolAugmentedTask struct {
	base  LLMTask
	tools []ResearchTool
}

// NewToolAugmentedTask runs the tools for Task.ResearchQuery and prepends what
// they find to the prompt before delegating to base. A failing tool is
// skipped.
func NewToolAugmentedTask(base LLMTask, tools ...ResearchTool) LLMTask {
	if len(tools) == 0 {
		return base
	}
	return &toolAugmentedTask{base: base, tools: tools}
}

func (t *toolAugmentedTask) Execute(ctx context.Context, task Task) (string, error) {
	if strings.TrimSpace(task.ResearchQuery) == "" {
		return t.base.Execute(ctx, task)
	}

	var notes []ResearchNote
	for _, tool := range t.tools {
		found, err := tool.Research(ctx, task.ResearchQuery, notes)
		if err != nil {
			log.Printf("⚠️  Research tool %s failed: %v\n", tool.Name(), err)
			continue
		}
		notes = append(notes, found...)
	}

	if len(notes) > 0 {
		log.Printf("🔍 Gathered %d research notes for %q\n", len(notes), task.ResearchQuery)
		task.Prompt = FormatResearchNotes(notes) + "\n\n" + task.Prompt
	}

	return t.base.Execute(ctx, task)
}

func FormatResearchNotes(notes []ResearchNote) string {
	var parts []string
	for i, note := range notes {
		header := fmt.Sprintf("--- Research %d (%s) ---", i+1, note.Source)
		if note.Title != "" {
			header += "\n" + note.Title
		}
		if note.URL != "" {
			header += "\n" + note.URL
		}
		parts = append(parts, header+"\n"+strings.TrimSpace(note.Text))
	}

	return "RESEARCH NOTES:\n" + strings.Join(parts, "\n\n")
}
