package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const DefaultMaxLogoBytes = 5 << 20

var ErrLogoSourceNotAllowed = errors.New("logo source not allowed")

// LogoLoader fetches logo bytes from a data URI, an http(s) URL or a file path.
// A restricted loader only accepts data URIs and https URLs on allowed hosts.
type LogoLoader struct {
	Client   *http.Client
	MaxBytes int64

	restricted bool
	hosts      map[string]bool
}

// NewLogoLoader returns a loader that accepts every source, including local
// files. It is meant for trusted callers such as the CLI.
func NewLogoLoader(timeout time.Duration, maxBytes int64) *LogoLoader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLogoBytes
	}
	return &LogoLoader{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

// NewRestrictedLogoLoader returns a loader for untrusted input: data URIs, and
// https URLs whose host is in hosts. Redirects off the list are refused.
func NewRestrictedLogoLoader(timeout time.Duration, maxBytes int64, hosts []string) *LogoLoader {
	l := NewLogoLoader(timeout, maxBytes)
	l.restricted = true
	l.hosts = make(map[string]bool, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			l.hosts[h] = true
		}
	}
	l.Client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return errors.New("too many redirects")
		}
		if !l.hostAllowed(req.URL) {
			return fmt.Errorf("%w: redirect to %s", ErrLogoSourceNotAllowed, req.URL.Host)
		}
		return nil
	}
	return l
}

func (l *LogoLoader) Load(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return l.limit(decodeDataURI(src))
	}

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if l.restricted {
			u, err := url.Parse(src)
			if err != nil || !l.hostAllowed(u) {
				return nil, fmt.Errorf("%w: %s", ErrLogoSourceNotAllowed, src)
			}
		}
		return l.fetch(ctx, src)
	}

	if l.restricted {
		return nil, fmt.Errorf("%w: local files", ErrLogoSourceNotAllowed)
	}
	return l.readFile(src)
}

func (l *LogoLoader) hostAllowed(u *url.URL) bool {
	return u.Scheme == "https" && u.User == nil && l.hosts[strings.ToLower(u.Hostname())]
}

func (l *LogoLoader) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch logo: unexpected status %d", resp.StatusCode)
	}
	return l.limit(io.ReadAll(io.LimitReader(resp.Body, l.maxBytes()+1)))
}

func (l *LogoLoader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return l.limit(io.ReadAll(io.LimitReader(f, l.maxBytes()+1)))
}

func (l *LogoLoader) limit(data []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes() {
		return nil, fmt.Errorf("logo exceeds %d bytes", l.maxBytes())
	}
	return data, nil
}

func (l *LogoLoader) maxBytes() int64 {
	if l.MaxBytes <= 0 {
		return DefaultMaxLogoBytes
	}
	return l.MaxBytes
}

// decodeDataURI handles data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}

	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
			return data, nil
		}
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}

	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
