package rulestore

import "github.com/sentrywaf/waf/internal/models"

// defaultRules covers the most common web attack vectors. Each pattern is
// matched case-insensitively against: method + path + query + body.
var defaultRules = []models.Rule{
	// SQL Injection
	{Name: "SQLi - UNION SELECT", Type: "SQLi", Pattern: `union\s+(all\s+)?select`, Score: 60, Action: models.ActionBlock, Enabled: true},
	{Name: "SQLi - Tautology (OR 1=1)", Type: "SQLi", Pattern: `\b(or|and)\b\s+[\w'"]+\s*=\s*[\w'"]+`, Score: 40, Action: models.ActionBlock, Enabled: true},
	{Name: "SQLi - Inline Comment", Type: "SQLi", Pattern: `(--|#|/\*|\*/)`, Score: 20, Action: models.ActionLog, Enabled: true},
	{Name: "SQLi - Stacked Queries", Type: "SQLi", Pattern: `;\s*(select|insert|update|delete|drop|exec)`, Score: 60, Action: models.ActionBlock, Enabled: true},

	// Cross-Site Scripting
	{Name: "XSS - Script Tag", Type: "XSS", Pattern: `<\s*script[^>]*>`, Score: 60, Action: models.ActionBlock, Enabled: true},
	{Name: "XSS - Inline Event Handler", Type: "XSS", Pattern: `\bon(load|error|click|mouseover|focus|blur|submit|keydown|keyup)\s*=`, Score: 50, Action: models.ActionBlock, Enabled: true},
	{Name: "XSS - javascript: Protocol", Type: "XSS", Pattern: `javascript\s*:`, Score: 50, Action: models.ActionBlock, Enabled: true},

	// Path Traversal
	{Name: "Path Traversal - Dot-Dot Slash", Type: "PathTraversal", Pattern: `(\.\./|\.\.\\|%2e%2e%2f|%2e%2e%5c|\.\.%2f|\.\.%5c)`, Score: 50, Action: models.ActionBlock, Enabled: true},
	{Name: "Path Traversal - Sensitive Files", Type: "PathTraversal", Pattern: `(etc/passwd|etc/shadow|proc/self|win\.ini|system32)`, Score: 70, Action: models.ActionBlock, Enabled: true},

	// Command Injection
	{Name: "CmdInjection - Shell Metacharacters", Type: "CmdInjection", Pattern: "[;&|`$]\\s*(ls|cat|id|whoami|uname|curl|wget|bash|sh|cmd|powershell)", Score: 70, Action: models.ActionBlock, Enabled: true},
	{Name: "CmdInjection - Subshell", Type: "CmdInjection", Pattern: "(\\$\\(|`)[^)]*[)`]", Score: 60, Action: models.ActionBlock, Enabled: true},

	// SSRF
	{Name: "SSRF - Internal Address", Type: "SSRF", Pattern: `(https?://)?(localhost|127\.0\.0\.1|0\.0\.0\.0|169\.254\.|10\.\d+\.\d+\.\d+|172\.(1[6-9]|2\d|3[01])\.\d+\.\d+|192\.168\.)`, Score: 40, Action: models.ActionLog, Enabled: true},
}
