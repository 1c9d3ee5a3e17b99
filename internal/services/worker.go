package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(docID uuid.UUID)
}

type worker struct {
	docRepo      repositories.DocumentRepository
	profiles     ProfileService
	queue        chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	log          *zap.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewWorker(
	docRepo repositories.DocumentRepository,
	profiles ProfileService,
	concurrency int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}

	return &worker{
		docRepo:      docRepo,
		profiles:     profiles,
		queue:        make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		log:          log,
		stopChan:     make(chan struct{}),
		inFlight:     make(map[uuid.UUID]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("🚀 Starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processDocuments(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollQueuedDocuments(ctx)

	w.log.Info("✅ Worker started successfully")
}

// Stop implements Worker. It waits for in-flight documents to finish.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("✅ Worker stopped")
	})
}

// Enqueue implements Worker. Documents already queued or running are
// skipped so the poller cannot double-process an upload.
func (w *worker) Enqueue(docID uuid.UUID) {
	w.mu.Lock()
	if _, ok := w.inFlight[docID]; ok {
		w.mu.Unlock()
		return
	}
	w.inFlight[docID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.queue <- docID:
		w.log.Debug("📥 Document enqueued", zap.String("document_id", docID.String()))
	case <-w.stopChan:
		w.release(docID)
		w.log.Warn("⚠️ Worker stopped, cannot enqueue document", zap.String("document_id", docID.String()))
	}
}

func (w *worker) release(docID uuid.UUID) {
	w.mu.Lock()
	delete(w.inFlight, docID)
	w.mu.Unlock()
}

func (w *worker) processDocuments(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			log.Debug("👷 Worker stopped")
			return
		case <-ctx.Done():
			return
		case docID := <-w.queue:
			if err := w.profiles.ProcessDocument(ctx, docID); err != nil {
				log.Error("❌ Failed to process document", zap.String("document_id", docID.String()), zap.Error(err))
			}
			w.release(docID)
		}
	}
}

func (w *worker) pollQueuedDocuments(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.docRepo.FindPending(10)
			if err != nil {
				w.log.Warn("⚠️ Failed to fetch queued documents", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				w.log.Info("📋 Found queued documents", zap.Int("count", len(pending)))
			}

			for _, doc := range pending {
				w.Enqueue(doc.ID)
			}
		}
	}
}
