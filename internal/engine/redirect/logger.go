package redirect

import (
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"upiqr/internal/engine/analytics"
	"upiqr/internal/engine/webhooks"
	"upiqr/internal/pkg/parser"
)

// RequestContext is what the redirect handler captures from the request
// before the response is written.
type RequestContext struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

type ScanRecorder interface {
	RecordScan(scan *analytics.Scan) error
}

type ScanCounter interface {
	IncrementScanCount(id string) error
}

// ScanNotifier publishes scan events; *webhooks.Dispatcher implements it.
type ScanNotifier interface {
	Dispatch(eventType string, data interface{})
}

type ScanLogger struct {
	recorder ScanRecorder
	counter  ScanCounter
	// Notifier, when set, is told about every recorded scan.
	Notifier ScanNotifier
}

func NewScanLogger(recorder ScanRecorder, counter ScanCounter) *ScanLogger {
	return &ScanLogger{recorder: recorder, counter: counter}
}

// LogScan stores one scan and bumps the link's counter. It is meant to run in
// its own goroutine, so every input is passed by value.
func (l *ScanLogger) LogScan(linkID, shortCode string, reqCtx RequestContext) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("link_id", linkID).Msg("recovered from panic in LogScan")
		}
	}()

	os, browser := parser.ParseUserAgent(reqCtx.UserAgent)
	scan := &analytics.Scan{
		LinkID:         linkID,
		ShortCode:      shortCode,
		Timestamp:      time.Now().UnixMilli(),
		IPAddress:      reqCtx.IPAddress,
		UserAgent:      reqCtx.UserAgent,
		DeviceType:     parser.ParseDeviceType(reqCtx.UserAgent),
		OS:             os,
		Browser:        browser,
		Referrer:       reqCtx.Referrer,
		ReferrerDomain: referrerDomain(reqCtx.Referrer),
	}

	if err := l.recorder.RecordScan(scan); err != nil {
		log.Error().Err(err).Str("link_id", linkID).Msg("failed to log scan")
	} else if l.Notifier != nil {
		l.Notifier.Dispatch(webhooks.EventLinkScanned, scan)
	}
	if err := l.counter.IncrementScanCount(linkID); err != nil {
		log.Error().Err(err).Str("link_id", linkID).Msg("failed to increment scan count")
	}
}

func referrerDomain(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
