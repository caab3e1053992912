package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/mock-interviewer/internal/config"
	"alfredoptarigan/mock-interviewer/internal/services"
)

const guideChunkSize = 600

func main() {
	log.Println("🚀 Starting question guide ingestion...")

	// Load configuration
	cfg := config.Load()
	if !cfg.QuestionBankEnabled() {
		log.Fatalf("❌ QDRANT_URL and GEMINI_API_KEY are required for ingestion")
	}

	// Initialize services
	geminiService, err := services.NewGeminiService(
		cfg.LLM.GeminiAPIKey,
		cfg.LLM.GeminiModel,
		cfg.LLM.RetryMaxAttempts,
		cfg.LLM.Timeout,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	questionBank, err := services.NewQdrantQuestionBank(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()
	if err := questionBank.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	parser := services.NewResumeParser()
	chunker := services.NewGuideChunker()

	guides, err := guidePaths(os.Args[1:])
	if err != nil {
		log.Fatalf("❌ Failed to list guides: %v", err)
	}
	if len(guides) == 0 {
		log.Fatalf("❌ No guides found. Pass files or put .pdf/.txt/.md files in ./reference_guides")
	}

	successCount := 0
	failCount := 0

	for _, path := range guides {
		sourceID := filepath.Base(path)
		log.Printf("\n📄 Processing: %s", sourceID)

		log.Printf("   📖 Extracting text...")
		text, err := parser.ExtractText(path)
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Printf("   ⚠️  No text extracted, skipping...")
			failCount++
			continue
		}

		chunks := chunker.Chunk(text, guideChunkSize)
		log.Printf("   ✂️  Created %d chunks", len(chunks))

		// Replace whatever an earlier run stored for this guide
		if err := questionBank.DeleteBySource(ctx, sourceID); err != nil {
			log.Printf("   ❌ Failed to clear previous chunks: %v", err)
			failCount++
			continue
		}

		stored := 0
		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("   ❌ Failed to generate embedding for chunk %d: %v", i+1, err)
				continue
			}

			entry := services.BankEntry{
				Key:      fmt.Sprintf("%s:%d", sourceID, i),
				SourceID: sourceID,
				DocType:  services.DocTypeReference,
				Text:     chunk,
			}
			if err := questionBank.Upsert(ctx, entry, embedding); err != nil {
				log.Printf("   ❌ Failed to store chunk %d: %v", i+1, err)
				continue
			}
			stored++

			if (i+1)%5 == 0 || i == len(chunks)-1 {
				log.Printf("   📊 Progress: %d/%d chunks stored", i+1, len(chunks))
			}
		}

		if stored == 0 {
			failCount++
			continue
		}
		log.Printf("   ✅ Successfully ingested %s", sourceID)
		successCount++
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d guides", successCount)
	log.Printf("   ❌ Failed: %d guides", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some guides failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All guides ingested successfully!")
}

// guidePaths returns the explicit arguments, or every supported file in
// ./reference_guides when none are given.
func guidePaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	entries, err := os.ReadDir("./reference_guides")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".txt", ".md":
			paths = append(paths, filepath.Join("./reference_guides", entry.Name()))
		}
	}
	return paths, nil
}
