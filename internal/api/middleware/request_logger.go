package middleware

import (
    "time"

    "github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request, including traffic the proxy
// catch-all forwards to the backend, along with the request_id.
func RequestLogger() gin.HandlerFunc {
    return func(c *gin.Context) {
        start := time.Now()
        c.Next()
        latency := time.Since(start)
        entry := GetRequestLogger(c)
        entry.WithFields(map[string]interface{}{
            "status":     c.Writer.Status(),
            "method":     c.Request.Method,
            "path":       c.Request.URL.Path,
            "latency":    latency.String(),
            "client":     c.ClientIP(),
            "user_agent": c.Request.UserAgent(),
        }).Info("handled request")
    }
}
