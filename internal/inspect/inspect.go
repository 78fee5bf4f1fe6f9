// Package inspect implements the pure, side-effect-free scoring of a
// single request against the current set of enabled rules.
package inspect

import (
	"regexp"
	"strings"
	"sync"

	"github.com/sentrywaf/waf/internal/logger"
	"github.com/sentrywaf/waf/internal/models"
)

// Request is the portion of an inbound HTTP request the engine cares
// about. Header values are deliberately excluded from the corpus to avoid
// false positives (e.g. a Content-Type containing HTML keywords).
type Request struct {
	Method string
	Path   string
	Query  string
	Body   *string
}

// Result is the outcome of running Inspect against a Request.
type Result struct {
	ThreatScore int
	ThreatTypes []string
	Action      string
}

const (
	ActionBlock = "block"
	ActionAllow = "allow"
)

var (
	regexCacheMu sync.RWMutex
	regexCache   = map[string]*regexp.Regexp{}
)

// compile returns a cached case-insensitive *regexp.Regexp for pattern,
// compiling and caching it on first use. A pattern that fails to compile
// is cached as nil so repeated failures don't recompile every request.
func compile(pattern string) *regexp.Regexp {
	regexCacheMu.RLock()
	re, ok := regexCache[pattern]
	regexCacheMu.RUnlock()
	if ok {
		return re
	}

	regexCacheMu.Lock()
	defer regexCacheMu.Unlock()
	if re, ok := regexCache[pattern]; ok {
		return re
	}

	compiled, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		logger.WithFields(map[string]interface{}{"pattern": pattern, "error": err.Error()}).
			Debug("inspect: skipping malformed rule pattern")
		regexCache[pattern] = nil
		return nil
	}
	regexCache[pattern] = compiled
	return compiled
}

// buildCorpus joins method, path, query (if non-empty), and body (if
// non-empty) with newlines, per spec: the corpus a rule's pattern is
// matched against.
func buildCorpus(req Request) string {
	parts := []string{req.Method, req.Path}
	if req.Query != "" {
		parts = append(parts, req.Query)
	}
	if req.Body != nil && *req.Body != "" {
		parts = append(parts, *req.Body)
	}
	return strings.Join(parts, "\n")
}

// Inspect scores req against rules and returns the aggregate decision.
// threshold is the score at or above which the request is blocked.
//
// The engine does not special-case a rule's advisory Action field: every
// matching rule contributes its score and category regardless of whether
// its Action is "block" or "log".
func Inspect(rules []models.Rule, req Request, threshold int) Result {
	corpus := buildCorpus(req)

	totalScore := 0
	seen := make(map[string]bool)
	var threatTypes []string

	for _, rule := range rules {
		re := compile(rule.Pattern)
		if re == nil {
			continue
		}
		if re.MatchString(corpus) {
			totalScore += rule.Score
			if !seen[rule.Type] {
				seen[rule.Type] = true
				threatTypes = append(threatTypes, rule.Type)
			}
		}
	}

	action := ActionAllow
	if totalScore >= threshold {
		action = ActionBlock
	}

	return Result{
		ThreatScore: totalScore,
		ThreatTypes: threatTypes,
		Action:      action,
	}
}
