package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/update-comb/app/cfg"
	"github.com/lysyi3m/update-comb/app/config"
	"github.com/lysyi3m/update-comb/app/database"
	"github.com/lysyi3m/update-comb/app/ledger"
	"github.com/lysyi3m/update-comb/app/page"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	endpoints    *config.Cache
	trackingRepo database.TrackingRepository
	ledgerRepo   database.LedgerRepository
	httpClient   *http.Client
	extractor    *page.Extractor
	detector     *page.Detector
	assigner     *ledger.Assigner
	userAgent    string
	interval     time.Duration
	fetchTimeout time.Duration
	workerCount  int
	forceNext    atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(endpoints *config.Cache, trackingRepo database.TrackingRepository,
	ledgerRepo database.LedgerRepository, httpClient *http.Client, extractor *page.Extractor,
	detector *page.Detector, assigner *ledger.Assigner) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	s := &Scheduler{
		endpoints:    endpoints,
		trackingRepo: trackingRepo,
		ledgerRepo:   ledgerRepo,
		httpClient:   httpClient,
		extractor:    extractor,
		detector:     detector,
		assigner:     assigner,
		userAgent:    c.UserAgent,
		interval:     time.Duration(c.SchedulerInterval) * time.Second,
		fetchTimeout: time.Duration(c.FetchTimeout) * time.Second,
		workerCount:  c.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
	}
	s.forceNext.Store(c.ForceReprocess)

	return s
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueCycle()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueCycle()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueProcessLocale schedules one locale for processing outside the
// regular cycle, optionally forcing extraction despite an unchanged digest.
func (s *Scheduler) EnqueueProcessLocale(locale string, force bool) error {
	url, ok := s.endpoints.GetURL(locale)
	if !ok {
		return fmt.Errorf("unknown locale: %s", locale)
	}
	return s.EnqueueTask(s.newProcessTask(locale, url, force))
}

// enqueueCycle schedules one ProcessLocaleTask per configured locale.
// The force flag from startup configuration applies to the first cycle only.
func (s *Scheduler) enqueueCycle() {
	endpoints := s.endpoints.GetEndpoints()
	if len(endpoints) == 0 {
		slog.Debug("No locale endpoints configured")
		return
	}

	force := s.forceNext.Swap(false)
	slog.Debug("Scheduling locale processing", "count", len(endpoints), "force", force)

	for locale, url := range endpoints {
		if err := s.EnqueueTask(s.newProcessTask(locale, url, force)); err != nil {
			slog.Warn("Failed to enqueue ProcessLocaleTask", "locale", locale, "error", err)
		}
	}
}

func (s *Scheduler) newProcessTask(locale, url string, force bool) *ProcessLocaleTask {
	return NewProcessLocaleTask(locale, url, force, s.httpClient, s.extractor, s.detector,
		s.assigner, s.trackingRepo, s.ledgerRepo, s.userAgent, s.fetchTimeout)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "locale", task.GetLocale(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
