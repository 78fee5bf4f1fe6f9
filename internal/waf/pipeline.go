// Package waf implements the decision-and-forward pipeline: every inbound
// request not claimed by the admin or health surface passes through here
// exactly once.
package waf

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sentrywaf/waf/internal/eventlog"
	"github.com/sentrywaf/waf/internal/inspect"
	"github.com/sentrywaf/waf/internal/logger"
	"github.com/sentrywaf/waf/internal/metrics"
	"github.com/sentrywaf/waf/internal/models"
	"github.com/sentrywaf/waf/internal/proxy"
)

// RuleSource supplies the currently enabled rule set. Implemented by
// *rulestore.Store; abstracted here so the pipeline is testable without a
// database.
type RuleSource interface {
	ListEnabled(ctx context.Context) ([]models.Rule, error)
}

// BlockSource answers whether a client IP is currently blocked.
type BlockSource interface {
	Check(ctx context.Context, ip string) (bool, string, error)
}

// LogSink records a request decision.
type LogSink interface {
	Record(ctx context.Context, f eventlog.Fields) (*models.AttackLog, error)
}

type Pipeline struct {
	rules     RuleSource
	blocklist BlockSource
	logs      LogSink
	forwarder *proxy.Forwarder
	threshold int
}

func New(rules RuleSource, blocked BlockSource, logs LogSink, forwarder *proxy.Forwarder, threshold int) *Pipeline {
	return &Pipeline{rules: rules, blocklist: blocked, logs: logs, forwarder: forwarder, threshold: threshold}
}

// Handler returns the gin.HandlerFunc registered as the catch-all route.
func (p *Pipeline) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		ip := resolveClientIP(c)

		bodyBytes, err := readBody(c.Request)
		if err != nil {
			logger.WithFields(map[string]interface{}{"error": err.Error()}).Error("waf: failed to read request body")
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"detail": "Backend unreachable: failed to read request body"})
			return
		}
		decodedBody := decodeLossy(bodyBytes)

		blocked, reason, err := p.blocklist.Check(ctx, ip)
		if err != nil {
			logger.WithFields(map[string]interface{}{"ip": ip, "error": err.Error()}).Error("waf: blocklist hard tier unavailable")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Blocklist store unavailable"})
			return
		}
		if blocked {
			p.recordAndBlock(c, ip, decodedBody, reason)
			return
		}

		rules, err := p.rules.ListEnabled(ctx)
		if err != nil {
			logger.WithFields(map[string]interface{}{"error": err.Error()}).Error("waf: rule store unavailable")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Rule store unavailable"})
			return
		}

		// Percent-escapes and '+' in the query are decoded for inspection so
		// encoded payloads hit the same rules; the raw query is what is forwarded.
		query := c.Request.URL.RawQuery
		if unescaped, err := url.QueryUnescape(query); err == nil {
			query = unescaped
		}

		result := inspect.Inspect(rules, inspect.Request{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  query,
			Body:   &decodedBody,
		}, p.threshold)

		metrics.IncRequestsInspected()

		headers := headerSnapshot(c.Request.Header)
		var bodyPtr *string
		if decodedBody != "" {
			bodyPtr = &decodedBody
		}

		if _, err := p.logs.Record(ctx, eventlog.Fields{
			IPAddress:   ip,
			Method:      c.Request.Method,
			Endpoint:    c.Request.URL.Path,
			Headers:     headers,
			RequestBody: bodyPtr,
			ThreatScore: result.ThreatScore,
			ActionTaken: result.Action,
			ThreatTypes: result.ThreatTypes,
		}); err != nil {
			metrics.IncLogWriteFailures()
			logger.WithFields(map[string]interface{}{"ip": ip, "error": err.Error()}).Error("waf: failed to record attack log")
		}

		if result.Action == inspect.ActionBlock {
			metrics.IncRequestsBlocked("rule_match")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"detail":       "Request blocked by WAF",
				"threat_types": result.ThreatTypes,
			})
			return
		}

		resp, err := p.forwarder.Forward(ctx, c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery, c.Request.Header, bodyBytes, ip, c.Request.Host)
		if err != nil {
			metrics.IncUpstreamErrors()
			logger.WithFields(map[string]interface{}{"ip": ip, "error": err.Error()}).Error("waf: upstream forward failed")
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"detail": "Backend unreachable: " + err.Error()})
			return
		}

		metrics.IncRequestsForwarded()
		for name, values := range resp.Header {
			for _, v := range values {
				c.Writer.Header().Add(name, v)
			}
		}
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), resp.Body)
	}
}

func (p *Pipeline) recordAndBlock(c *gin.Context, ip, body, reason string) {
	ctx := c.Request.Context()
	metrics.IncRequestsBlocked("ip_blocklist")

	var bodyPtr *string
	if body != "" {
		bodyPtr = &body
	}

	if _, err := p.logs.Record(ctx, eventlog.Fields{
		IPAddress:   ip,
		Method:      c.Request.Method,
		Endpoint:    c.Request.URL.Path,
		Headers:     headerSnapshot(c.Request.Header),
		RequestBody: bodyPtr,
		ThreatScore: 100,
		ActionTaken: "block",
		ThreatTypes: []string{models.IPBlockedCategory},
	}); err != nil {
		metrics.IncLogWriteFailures()
		logger.WithFields(map[string]interface{}{"ip": ip, "error": err.Error()}).Error("waf: failed to record attack log")
	}

	logger.WithFields(map[string]interface{}{"ip": ip, "reason": reason}).Warn("waf: rejected blocklisted ip")
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Your IP has been blocked."})
}

func resolveClientIP(c *gin.Context) string {
	if real := c.Request.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if c.Request.RemoteAddr != "" {
		if host := hostOnly(c.Request.RemoteAddr); host != "" {
			return host
		}
	}
	return "unknown"
}

func hostOnly(remoteAddr string) string {
	idx := strings.LastIndex(remoteAddr, ":")
	if idx == -1 {
		return remoteAddr
	}
	return remoteAddr[:idx]
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// decodeLossy produces a valid UTF-8 view of raw for inspection, replacing
// invalid byte sequences rather than failing. The original bytes are kept
// separately for forwarding.
func decodeLossy(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

func headerSnapshot(h http.Header) models.JSONMap {
	out := make(models.JSONMap, len(h))
	for name, values := range h {
		if len(values) == 1 {
			out[name] = values[0]
		} else {
			out[name] = values
		}
	}
	return out
}
