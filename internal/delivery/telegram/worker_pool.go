package telegram

import (
	"context"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageRequest one inbound update queued for processing.
type messageRequest struct {
	ctx      context.Context
	userID   int64
	chatID   int64
	username string
	message  *tgbotapi.Message
}

const (
	maxRequestsPerSecond = 3
	requestQueueSize     = 100
	defaultWorkerCount   = 16
	turnTimeout          = 45 * time.Second

	rateLimiterCleanupTime = 5 * time.Minute
	rateLimiterMaxIdleTime = 10 * time.Minute
)

// workerPool processes queued messages in parallel. Per-user ordering
// is not enforced here; the session store's turn lock serializes turns
// of the same user, so workers for one user simply line up.
type workerPool struct {
	requestQueue chan *messageRequest
	workerCount  int
	handler      *BotHandler
	wg           sync.WaitGroup

	rateLimiter   map[int64]*userRateLimit
	rateLimiterMu sync.Mutex
}

type userRateLimit struct {
	mu           sync.Mutex
	lastRequest  time.Time
	requestCount int
}

func newWorkerPool(handler *BotHandler, workerCount int) *workerPool {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &workerPool{
		requestQueue: make(chan *messageRequest, requestQueueSize),
		workerCount:  workerCount,
		handler:      handler,
		rateLimiter:  make(map[int64]*userRateLimit),
	}
}

func (wp *workerPool) start(ctx context.Context) {
	log.Printf("[POOL] starting %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
	go wp.cleanupRateLimits(ctx)
}

// submit enqueues a request; false means the queue is full.
func (wp *workerPool) submit(req *messageRequest) bool {
	select {
	case wp.requestQueue <- req:
		return true
	default:
		return false
	}
}

func (wp *workerPool) stop() {
	close(wp.requestQueue)
	wp.wg.Wait()
}

func (wp *workerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[POOL] worker %d shutting down", id)
			return
		case req, ok := <-wp.requestQueue:
			if !ok {
				return
			}
			if req == nil {
				continue
			}
			if !wp.checkRateLimit(req.userID) {
				wp.handler.sendMessage(req.chatID, "Забагато повідомлень. Зачекайте, будь ласка, кілька секунд.")
				continue
			}
			wp.processWithTimeout(req)
		}
	}
}

func (wp *workerPool) processWithTimeout(req *messageRequest) {
	ctx, cancel := context.WithTimeout(req.ctx, turnTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[POOL] panic while processing user %d: %v", req.userID, r)
			wp.handler.sendMessage(req.chatID, "Сталася внутрішня помилка. Спробуйте, будь ласка, ще раз.")
		}
	}()

	wp.handler.processMessage(ctx, req)
}

func (wp *workerPool) checkRateLimit(userID int64) bool {
	wp.rateLimiterMu.Lock()
	limit, ok := wp.rateLimiter[userID]
	if !ok {
		limit = &userRateLimit{}
		wp.rateLimiter[userID] = limit
	}
	wp.rateLimiterMu.Unlock()

	limit.mu.Lock()
	defer limit.mu.Unlock()

	now := time.Now()
	if now.Sub(limit.lastRequest) >= time.Second {
		limit.lastRequest = now
		limit.requestCount = 1
		return true
	}
	limit.requestCount++
	return limit.requestCount <= maxRequestsPerSecond
}

func (wp *workerPool) cleanupRateLimits(ctx context.Context) {
	ticker := time.NewTicker(rateLimiterCleanupTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rateLimiterMaxIdleTime)
			wp.rateLimiterMu.Lock()
			for id, limit := range wp.rateLimiter {
				limit.mu.Lock()
				idle := limit.lastRequest.Before(cutoff)
				limit.mu.Unlock()
				if idle {
					delete(wp.rateLimiter, id)
				}
			}
			wp.rateLimiterMu.Unlock()
		}
	}
}
