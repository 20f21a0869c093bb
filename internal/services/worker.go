package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"hirehub/backend/internal/repositories"
)

// SignalWorker publishes candidate signals for completed interviews in the
// background so session completion never waits on the vector index.
type SignalWorker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueSession(sessionID uuid.UUID)
}

type signalWorker struct {
	sessionRepo     repositories.SessionRepository
	analysisService AnalysisService
	jobQueue        chan uuid.UUID
	concurrency     int
	wg              sync.WaitGroup
	stopChan        chan struct{}
}

func NewSignalWorker(
	sessionRepo repositories.SessionRepository,
	analysisService AnalysisService,
	concurrency int,
) SignalWorker {
	return &signalWorker{
		sessionRepo:     sessionRepo,
		analysisService: analysisService,
		jobQueue:        make(chan uuid.UUID, 100),
		concurrency:     concurrency,
		stopChan:        make(chan struct{}),
	}
}

// Start implements SignalWorker.
func (w *signalWorker) Start(ctx context.Context) {
	log.Printf("🚀 Starting signal worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingSignals(ctx)

	log.Println("✅ Signal worker started successfully")
}

// Stop implements SignalWorker.
func (w *signalWorker) Stop() {
	log.Println("🛑 Stopping signal worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Signal worker stopped")
}

// EnqueueSession implements SignalWorker.
func (w *signalWorker) EnqueueSession(sessionID uuid.UUID) {
	select {
	case w.jobQueue <- sessionID:
		log.Printf("📥 Signal job %s enqueued\n", sessionID)
	case <-w.stopChan:
		log.Printf("⚠️  Signal worker stopped, cannot enqueue %s\n", sessionID)
	}
}

func (w *signalWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Signal worker #%d stopped\n", workerID)
			return
		case sessionID := <-w.jobQueue:
			log.Printf("👷 Signal worker #%d processing session %s\n", workerID, sessionID)
			if err := w.publish(ctx, sessionID); err != nil {
				log.Printf("❌ Signal worker #%d failed for session %s: %v\n", workerID, sessionID, err)
			} else {
				log.Printf("✅ Signal worker #%d completed session %s\n", workerID, sessionID)
			}
		}
	}
}

func (w *signalWorker) publish(ctx context.Context, sessionID uuid.UUID) error {
	session, err := w.sessionRepo.FindByID(sessionID)
	if err != nil {
		return err
	}
	if session.SignalAt != nil {
		// Already published, nothing to do.
		return nil
	}
	if err := w.analysisService.PublishCandidateSignal(ctx, session); err != nil {
		return err
	}
	return w.sessionRepo.MarkSignalPublished(sessionID)
}

// pollPendingSignals picks up completed sessions whose signal publication was
// lost, e.g. across a restart.
func (w *signalWorker) pollPendingSignals(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	log.Println("🔄 Starting pending signal poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending signal poller stopped")
			return
		case <-ticker.C:
			pending, err := w.sessionRepo.FindPendingSignals(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending signals: %v\n", err)
				continue
			}

			if len(pending) > 0 {
				log.Printf("📋 Found %d pending signals\n", len(pending))
			}
			for _, session := range pending {
				select {
				case w.jobQueue <- session.ID:
				case <-w.stopChan:
					return
				}
			}
		}
	}
}
