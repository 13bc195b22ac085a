// Package logging configures the process logger and the request logging
// middleware.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/config"
)

// Setup configures the standard logrus logger from cfg and returns it.
// Unknown levels fall back to info.
func Setup(cfg config.Logging) *logrus.Logger {
	logger := logrus.StandardLogger()
	Configure(logger, cfg, os.Stdout)
	return logger
}

func Configure(logger *logrus.Logger, cfg config.Logging, out io.Writer) {
	logger.SetOutput(out)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
			PadLevelText:    true,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// GinLogger logs one line per request at a level matching the response status.
func GinLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path += "?" + raw
		}
		status := c.Writer.Status()
		fields := logrus.Fields{
			"ip":     c.ClientIP(),
			"method": c.Request.Method,
			"path":   path,
			"status": status,
			"took":   time.Since(start),
		}

		switch {
		case status >= 500:
			logger.WithFields(fields).Error("Server error")
		case status >= 400:
			logger.WithFields(fields).Warn("Client error")
		default:
			logger.WithFields(fields).Info("Request completed")
		}
	}
}
