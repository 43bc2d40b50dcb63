// internal/notify/log.go
package notify

import (
	"context"
	"log/slog"

	"github-repo-tracker/internal/model"
)

// LogSink writes notifications to the structured log. Used when no webhook is
// configured, typically during local development.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a new LogSink instance.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(_ context.Context, domainID string, n model.Notification) error {
	attrs := []any{"domain", domainID, "kind", n.Kind, "login", n.AccountLogin, "repo", n.RepoName}
	if n.Summary != nil {
		attrs = append(attrs, "commits", len(n.Summary.Commits), "additions", n.Summary.Additions, "deletions", n.Summary.Deletions)
	}
	s.logger.Info("Repository change", attrs...)
	return nil
}
