package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/update-comb/app/database"
	"github.com/lysyi3m/update-comb/app/ledger"
	"github.com/lysyi3m/update-comb/app/page"
)

// ProcessLocaleTask runs one monitoring cycle for one locale: fetch, decide
// via content digest whether extraction is worth running, extract and
// normalize rows, reconcile against the ledger and commit atomically.
type ProcessLocaleTask struct {
	Task
	URL          string
	Force        bool
	httpClient   *http.Client
	extractor    *page.Extractor
	detector     *page.Detector
	assigner     *ledger.Assigner
	trackingRepo database.TrackingRepository
	ledgerRepo   database.LedgerRepository
	userAgent    string
	fetchTimeout time.Duration
}

func NewProcessLocaleTask(locale, url string, force bool, httpClient *http.Client,
	extractor *page.Extractor, detector *page.Detector, assigner *ledger.Assigner,
	trackingRepo database.TrackingRepository, ledgerRepo database.LedgerRepository,
	userAgent string, fetchTimeout time.Duration) *ProcessLocaleTask {
	return &ProcessLocaleTask{
		Task:         NewTask(TaskTypeProcessLocale, locale),
		URL:          url,
		Force:        force,
		httpClient:   httpClient,
		extractor:    extractor,
		detector:     detector,
		assigner:     assigner,
		trackingRepo: trackingRepo,
		ledgerRepo:   ledgerRepo,
		userAgent:    userAgent,
		fetchTimeout: fetchTimeout,
	}
}

func (t *ProcessLocaleTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetchPage(ctx, t.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	prev, err := t.trackingRepo.GetTracking(t.Locale)
	if err != nil {
		return fmt.Errorf("failed to load tracking entry: %w", err)
	}

	var tracking *page.Tracking
	if prev != nil {
		tracking = &page.Tracking{URL: prev.URL, Hash: prev.ContentHash}
	}

	digest, changed := t.detector.Run(data, t.URL, tracking, t.Force)
	if !changed {
		slog.Debug("No content changes detected", "locale", t.Locale)
		return nil
	}

	rows, err := t.extractor.Run(data, t.URL)
	if err != nil {
		return fmt.Errorf("failed to extract updates table: %w", err)
	}

	for i := range rows {
		rows[i].Date = page.NormalizeDate(rows[i].Date)
	}

	existing, err := t.ledgerRepo.GetRecords(t.Locale)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	fresh := t.assigner.Run(existing, rows)

	// Committed even when fresh is empty so an unchanged digest short-circuits
	// the next cycle instead of reparsing a tableless page forever.
	if err := t.ledgerRepo.CommitCycle(t.Locale, t.URL, digest, fresh); err != nil {
		return fmt.Errorf("failed to commit cycle: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessLocale",
		"locale", t.Locale,
		"duration", t.GetDuration(),
		"extracted", len(rows),
		"known", len(existing),
		"new", len(fresh))

	return nil
}

func (t *ProcessLocaleTask) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// The vendor's CDN rejects non-browser user agents.
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
