package handlers

import (
	"net/http"
	"time"

	"upiqr/internal/api/middleware"
	"upiqr/internal/engine/links"
	"upiqr/internal/engine/redirect"
	"upiqr/internal/pkg/errors"
	"upiqr/internal/platform/metrics"
)

type RedirectHandler struct {
	service    *links.Service
	cache      *redirect.LinkCache
	scanLogger *redirect.ScanLogger
	metrics    *metrics.Metrics
	now        func() time.Time
	// async runs scan logging off the request path.
	async func(func())
}

func NewRedirectHandler(service *links.Service, cache *redirect.LinkCache, scanLogger *redirect.ScanLogger, m *metrics.Metrics) *RedirectHandler {
	return &RedirectHandler{
		service:    service,
		cache:      cache,
		scanLogger: scanLogger,
		metrics:    m,
		now:        time.Now,
		async:      func(f func()) { go f() },
	}
}

// Handle resolves a short code to a freshly built upi:// URI and redirects.
func (h *RedirectHandler) Handle(w http.ResponseWriter, r *http.Request) {
	shortCode := param(r, "short_code")
	if shortCode == "" {
		h.outcome("not_found")
		http.NotFound(w, r)
		return
	}

	var link *links.PaymentLink
	if cached, found := h.cache.Get(shortCode); found {
		link = cached.Link()
	} else {
		var err error
		link, err = h.service.GetByShortCode(shortCode)
		if err != nil {
			h.outcome("not_found")
			writeDomainError(w, h.metrics, err)
			return
		}
		h.cache.Set(link)
	}

	if link.Status != links.StatusActive || link.Expired(h.now().Unix()) {
		h.outcome("gone")
		errors.Write(w, errors.New(errors.CodeGone, "Payment link is no longer active").With("status", link.Status))
		return
	}

	if link.Protected() && !links.CheckPassword(link, r.URL.Query().Get("password")) {
		h.outcome("unauthorized")
		errors.Write(w, errors.New(errors.CodeUnauthorized, "Password required"))
		return
	}

	uri, err := h.service.BuildURI(link)
	if err != nil {
		h.outcome("error")
		writeDomainError(w, h.metrics, err)
		return
	}

	reqCtx := redirect.RequestContext{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
	linkID := link.ID
	h.async(func() { h.scanLogger.LogScan(linkID, shortCode, reqCtx) })

	h.outcome("redirected")
	http.Redirect(w, r, uri, http.StatusFound)
}

func (h *RedirectHandler) outcome(o string) {
	h.metrics.Redirects.WithLabelValues(o).Inc()
}
