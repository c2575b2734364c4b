package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPsalm       = "psalm_number"
	KeyStanza      = "stanza_number"
	KeyStanzaCount = "stanzas"
	KeyCacheKey    = "cache_key"
	KeyCacheResult = "cache_result"
	KeyMethod      = "method"
	KeyPath        = "path"
	KeyStatus      = "status"
	KeyDuration    = "duration"
	KeyUserAgent   = "user_agent"
	KeyRemoteAddr  = "remote_addr"
	KeyRequestID   = "request_id"
	KeyAttempt     = "attempt"
	KeySource      = "source"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Psalm(n int) slog.Attr              { return slog.Int(KeyPsalm, n) }
func Stanza(n int) slog.Attr             { return slog.Int(KeyStanza, n) }
func StanzaCount(n int) slog.Attr        { return slog.Int(KeyStanzaCount, n) }
func CacheKey(k string) slog.Attr        { return slog.String(KeyCacheKey, k) }
func CacheResult(r string) slog.Attr     { return slog.String(KeyCacheResult, r) }
func Method(m string) slog.Attr          { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr          { return slog.Int(KeyStatus, code) }
func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }
func UserAgent(ua string) slog.Attr      { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr   { return slog.String(KeyRemoteAddr, addr) }
func RequestID(id string) slog.Attr      { return slog.String(KeyRequestID, id) }
func Attempt(n int) slog.Attr            { return slog.Int(KeyAttempt, n) }
func Source(s string) slog.Attr          { return slog.String(KeySource, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
