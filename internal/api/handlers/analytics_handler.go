package handlers

import (
	"net/http"
	"strconv"
	"time"

	"upiqr/internal/engine/analytics"
	"upiqr/internal/pkg/errors"
)

type AnalyticsHandler struct {
	service *analytics.Service
	links   *LinkHandler
}

func NewAnalyticsHandler(service *analytics.Service, links *LinkHandler) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, links: links}
}

func (h *AnalyticsHandler) GetLinkAnalytics(w http.ResponseWriter, r *http.Request) {
	link, ok := h.links.owned(w, r)
	if !ok {
		return
	}

	startDate := r.URL.Query().Get("start_date") // YYYY-MM-DD
	endDate := r.URL.Query().Get("end_date")

	if startDate == "" || endDate == "" {
		now := time.Now().UTC()
		endDate = now.Format("2006-01-02")
		startDate = now.AddDate(0, 0, -30).Format("2006-01-02")
	}

	stats, err := h.service.GetStatsOverview(link.ID, startDate, endDate)
	if err != nil {
		writeDomainError(w, nil, err)
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"link_id":    link.ID,
		"scan_count": link.ScanCount,
		"daily":      stats,
	})
}

func (h *AnalyticsHandler) GetLinkScans(w http.ResponseWriter, r *http.Request) {
	link, ok := h.links.owned(w, r)
	if !ok {
		return
	}

	now := time.Now().UnixMilli()
	start := now - (24 * 60 * 60 * 1000)
	end := now

	if v, err := strconv.ParseInt(r.URL.Query().Get("start_ts"), 10, 64); err == nil {
		start = v
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("end_ts"), 10, 64); err == nil {
		end = v
	}
	limit, offset := pagination(r)

	scans, err := h.service.GetScanHistory(link.ID, start, end, limit, offset)
	if err != nil {
		writeDomainError(w, nil, err)
		return
	}

	errors.WriteJSON(w, http.StatusOK, scans)
}
