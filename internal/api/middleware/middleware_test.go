package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apiContext "upiqr/internal/api/context"
	"upiqr/internal/platform/auth"
	"upiqr/internal/platform/config"
)

func TestAuthMiddleware(t *testing.T) {
	tokenSvc := auth.NewTokenService(config.JWTConfig{Secret: "s", AccessTokenTTL: time.Hour})
	token, err := tokenSvc.GenerateAccessToken("merchant-1", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	var seen *auth.Claims
	handler := NewAuthMiddleware(tokenSvc).Handle(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value(apiContext.Claims).(*auth.Claims)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name      string
		header    string
		want      int
		challenge string
	}{
		{"valid", "Bearer " + token, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + token, http.StatusOK, ""},
		{"extra spaces", "  Bearer   " + token + " ", http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, `Bearer realm="upiqr"`},
		{"no token", "Bearer ", http.StatusUnauthorized, `Bearer realm="upiqr"`},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, `Bearer realm="upiqr"`},
		{"bad token", "Bearer abc", http.StatusUnauthorized, `Bearer realm="upiqr", error="invalid_token"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if got := rr.Header().Get("WWW-Authenticate"); got != tt.challenge {
				t.Errorf("WWW-Authenticate = %q, want %q", got, tt.challenge)
			}
			if tt.want == http.StatusOK && (seen == nil || seen.MerchantID != "merchant-1") {
				t.Errorf("claims not injected: %+v", seen)
			}
		})
	}
}

func TestRequireScope(t *testing.T) {
	handler := RequireScope("links:write")(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, tt := range []struct {
		scopes []string
		want   int
	}{
		{nil, http.StatusNoContent},
		{[]string{"links:write"}, http.StatusNoContent},
		{[]string{"links:read"}, http.StatusForbidden},
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(withClaims(req, &auth.Claims{MerchantID: "m", Scopes: tt.scopes}))
		rr := httptest.NewRecorder()
		handler(rr, req)
		if rr.Code != tt.want {
			t.Errorf("scopes %v: status = %d, want %d", tt.scopes, rr.Code, tt.want)
		}
		if tt.want == http.StatusForbidden && !strings.Contains(rr.Header().Get("WWW-Authenticate"), `error="insufficient_scope"`) {
			t.Errorf("scopes %v: missing insufficient_scope challenge", tt.scopes)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(config.RateLimitConfig{RenderPerMinute: 2})
	rl.now = func() time.Time { return now }

	handler := rl.Middleware(LimitRender)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5555"
		rr := httptest.NewRecorder()
		handler(rr, req)
		return rr.Code
	}

	if call("10.0.0.1") != 200 || call("10.0.0.1") != 200 {
		t.Fatal("first two requests should pass")
	}
	if code := call("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want 429", code)
	}
	if call("10.0.0.2") != 200 {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(30 * time.Second)
	if call("10.0.0.1") != 200 {
		t.Error("bucket should refill after 30s")
	}

	now = now.Add(time.Hour)
	rl.sweep()
	count := 0
	rl.store.Range(func(_, _ interface{}) bool { count++; return true })
	if count != 0 {
		t.Errorf("idle buckets not swept: %d left", count)
	}

	if rl.Limit("unknown") != defaultLimit || rl.Limit(LimitRedirect) != defaultLimit {
		t.Error("unset limits should fall back to the default")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("ClientIP = %s", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP with XFF = %s", got)
	}
}

func withClaims(r *http.Request, c *auth.Claims) context.Context {
	return context.WithValue(r.Context(), apiContext.Claims, c)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer", "", false},
		{"Bearerabc", "", false},
		{"Token abc", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v", tt.header, token, ok)
		}
	}
}
