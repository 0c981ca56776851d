package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

// Logger configuration
type LoggerConfig struct {
	EnableColors bool
	SkipPaths    []string
}

// DefaultLoggerConfig keeps health probes out of the log stream
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		EnableColors: true,
		SkipPaths:    []string{"/health", "/metrics", "/ping"},
	}
}

func Logger() gin.HandlerFunc {
	return LoggerWithConfig(DefaultLoggerConfig())
}

func LoggerWithConfig(config LoggerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		// Skip logging for certain paths
		for _, skipPath := range config.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		method := c.Request.Method
		ip := c.ClientIP()
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		var methodColor, statusColor, resetColor string
		if config.EnableColors {
			methodColor = getMethodColor(method)
			statusColor = getStatusColor(status)
			resetColor = ColorReset
		}

		if query != "" {
			path = path + "?" + truncateString(query, 100)
		}

		log.Printf("%s%3d%s %s%-6s%s %s%s%s %s%v • %s%s",
			statusColor, status, resetColor,
			methodColor, method, resetColor,
			ColorBlue, path, resetColor,
			ColorGray, latency, ip, resetColor)
	}
}

func getMethodColor(method string) string {
	switch method {
	case "GET":
		return ColorGreen
	case "POST":
		return ColorBlue
	case "PUT":
		return ColorYellow
	case "DELETE":
		return ColorRed
	case "PATCH":
		return ColorPurple
	default:
		return ColorWhite
	}
}

func getStatusColor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return ColorGreen
	case status >= 300 && status < 400:
		return ColorCyan
	case status >= 400 && status < 500:
		return ColorYellow
	case status >= 500:
		return ColorRed
	default:
		return ColorWhite
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
