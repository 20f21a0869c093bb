package main

import (
	"context"
	"log"

	"hirehub/backend/internal/config"
	"hirehub/backend/internal/models"
	"hirehub/backend/internal/repositories"
	"hirehub/backend/internal/services"
)

// Rebuilds the candidate vector index from the database: the latest resume
// profile per candidate plus the analysis of every completed interview.
// Run after wiping or re-provisioning the Qdrant collection.
func main() {
	log.Println("🚀 Starting candidate reindex...")

	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	vectorIndex, err := services.NewVectorIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := vectorIndex.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	resumeRepo := repositories.NewResumeRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)

	resumeService := services.NewResumeService(
		services.NewExtractorService(),
		geminiService,
		vectorIndex,
		resumeRepo,
		cfg.Gemini.RetryMaxAttempts,
	)
	analysisService := services.NewAnalysisService(
		geminiService,
		vectorIndex,
		candidateRepo,
		cfg.Gemini.RetryMaxAttempts,
	)

	ctx := context.Background()

	var candidates []models.Candidate
	if err := db.Find(&candidates).Error; err != nil {
		log.Fatalf("❌ Failed to list candidates: %v", err)
	}

	successCount := 0
	failCount := 0

	log.Printf("📄 Reindexing resumes for %d candidates...", len(candidates))
	for _, candidate := range candidates {
		doc, err := resumeRepo.FindLatestByCandidate(candidate.ID)
		if err != nil {
			log.Printf("   ⚠️  No resume for candidate %s, skipping...", candidate.ID)
			continue
		}

		if err := resumeService.IndexProfile(ctx, candidate.ID, doc.Profile); err != nil {
			log.Printf("   ❌ Failed to index candidate %s: %v", candidate.ID, err)
			failCount++
			continue
		}
		successCount++
	}

	var sessions []models.InterviewSession
	if err := db.Where("status = ? AND analysis IS NOT NULL", models.SessionCompleted).
		Find(&sessions).Error; err != nil {
		log.Fatalf("❌ Failed to list completed sessions: %v", err)
	}

	log.Printf("🎤 Reindexing %d interview analyses...", len(sessions))
	for i := range sessions {
		session := &sessions[i]
		if err := analysisService.PublishCandidateSignal(ctx, session); err != nil {
			log.Printf("   ❌ Failed to publish signal for session %s: %v", session.ID, err)
			failCount++
			continue
		}
		successCount++
	}

	log.Printf("\n✅ Reindex complete: %d succeeded, %d failed", successCount, failCount)
}
