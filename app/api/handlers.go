package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/update-comb/app/cfg"
	"github.com/lysyi3m/update-comb/app/config"
	"github.com/lysyi3m/update-comb/app/database"
	"github.com/lysyi3m/update-comb/app/tasks"
)

type Handler struct {
	endpoints    *config.Cache
	trackingRepo database.TrackingRepository
	ledgerRepo   database.LedgerRepository
	subRepo      database.SubscriptionRepository
	scheduler    tasks.TaskSchedulerInterface
}

func NewHandler(endpoints *config.Cache, trackingRepo database.TrackingRepository,
	ledgerRepo database.LedgerRepository, subRepo database.SubscriptionRepository,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		endpoints:    endpoints,
		trackingRepo: trackingRepo,
		ledgerRepo:   ledgerRepo,
		subRepo:      subRepo,
		scheduler:    scheduler,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": cfg.Get().Version,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	tracked, err := h.trackingRepo.GetTrackedLocaleCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_tracked_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	total, err := h.ledgerRepo.GetTotalRecordCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_total_records", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	subscribers, err := h.subRepo.GetSubscriberCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_subscriber_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, Stats{
		Locales:        h.endpoints.Count(),
		TrackedLocales: tracked,
		TotalRecords:   total,
		Subscribers:    subscribers,
	})
}

func (h *Handler) ListLocales(c *gin.Context) {
	endpoints := h.endpoints.GetEndpoints()

	locales := make([]LocaleInfo, 0, len(endpoints))
	for code, url := range endpoints {
		count, err := h.ledgerRepo.GetRecordCount(code)
		if err != nil {
			slog.Error("Database error", "operation", "get_record_count", "locale", code, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}

		maxID, err := h.ledgerRepo.GetMaxID(code)
		if err != nil {
			slog.Error("Database error", "operation", "get_max_id", "locale", code, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}

		locales = append(locales, LocaleInfo{
			Code:        code,
			DisplayName: config.DisplayName(code),
			URL:         url,
			RecordCount: count,
			MaxRecordID: maxID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"locales": locales})
}

// GetLocaleUpdates serves a locale's ledger ascending by id. The optional
// "since" query parameter returns only records with a greater id.
func (h *Handler) GetLocaleUpdates(c *gin.Context) {
	code := c.Param("code")
	if !h.endpoints.Has(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown locale"})
		return
	}

	since := int64(0)
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since parameter"})
			return
		}
		since = parsed
	}

	records, err := h.ledgerRepo.GetRecordsAfter(code, since)
	if err != nil {
		slog.Error("Database error", "operation", "get_records", "locale", code, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	out := make([]UpdateRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, UpdateRecord{
			ID:     rec.ID,
			Name:   rec.Name,
			URL:    rec.URL,
			Target: rec.Target,
			Date:   rec.Date,
		})
	}

	c.JSON(http.StatusOK, gin.H{"locale": code, "updates": out})
}

// ReprocessLocale forces extraction for a locale on the next worker slot,
// bypassing the unchanged-digest skip.
func (h *Handler) ReprocessLocale(c *gin.Context) {
	code := c.Param("code")
	if !h.endpoints.Has(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown locale"})
		return
	}

	if err := h.scheduler.EnqueueProcessLocale(code, true); err != nil {
		slog.Error("Failed to enqueue reprocess task", "locale", code, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to schedule reprocessing"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"locale": code, "status": "scheduled"})
}
