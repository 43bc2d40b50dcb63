// internal/notify/webhook.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github-repo-tracker/internal/model"
)

// Display truncation only; summary totals always cover the full range.
const (
	maxDisplayedCommits = 5
	maxDisplayedFiles   = 10
)

const (
	colorDefault = 0x3498db
	colorUpdate  = 0x2c2f33
	colorDeleted = 0xe74c3c
)

// WebhookSink delivers notifications as embed-style JSON payloads to a
// Discord-compatible webhook. URLs are resolved per domain with a fallback
// default, so one process can serve several chat servers.
type WebhookSink struct {
	client     *http.Client
	defaultURL string
	domainURLs map[string]string
	logger     *slog.Logger
}

// NewWebhookSink creates a new WebhookSink instance.
func NewWebhookSink(defaultURL string, domainURLs map[string]string, logger *slog.Logger) *WebhookSink {
	return &WebhookSink{
		client:     &http.Client{Timeout: 10 * time.Second},
		defaultURL: defaultURL,
		domainURLs: domainURLs,
		logger:     logger,
	}
}

type embedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Author      embedAuthor  `json:"author"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      embedFooter  `json:"footer"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Deliver renders the notification and posts it to the domain's webhook.
func (s *WebhookSink) Deliver(ctx context.Context, domainID string, n model.Notification) error {
	url := s.defaultURL
	if u, ok := s.domainURLs[domainID]; ok {
		url = u
	}
	if url == "" {
		return fmt.Errorf("no webhook configured for domain %q", domainID)
	}

	payload := webhookPayload{Embeds: []embed{renderEmbed(n)}}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	s.logger.Debug("Delivered notification", "domain", domainID, "kind", n.Kind, "repo", n.RepoName)
	return nil
}

func renderEmbed(n model.Notification) embed {
	e := embed{
		Color: colorDefault,
		Author: embedAuthor{
			Name:    n.AccountLogin,
			URL:     n.AccountURL,
			IconURL: n.AccountAvatarURL,
		},
		Footer: embedFooter{
			Text: fmt.Sprintf("GitHub Tracker • %s UTC", time.Now().UTC().Format("15:04:05")),
		},
	}

	switch n.Kind {
	case model.RepoCreated:
		e.Title = "🚀 New Repository"
		e.Description = fmt.Sprintf("**[%s](%s)**\n%s", n.Repo.Name, n.Repo.HTMLURL, n.Repo.Description)
		e.Fields = append(e.Fields,
			embedField{Name: "Language", Value: orNone(n.Repo.Language), Inline: true},
			embedField{Name: "Visibility", Value: visibility(n.Repo.Private), Inline: true},
		)
	case model.RepoUpdated:
		e.Title = "🛠 Repository Update"
		e.Color = colorUpdate
		e.Description = fmt.Sprintf("**[%s](%s)**\n%s", n.Repo.Name, n.Repo.HTMLURL, n.Repo.Description)
		e.Fields = append(e.Fields, summaryFields(n.Summary)...)
	case model.RepoDeleted:
		e.Title = "🗑️ Repository Deleted"
		e.Color = colorDeleted
		e.Description = fmt.Sprintf("**%s**", n.RepoName)
	}

	return e
}

func summaryFields(s *model.CommitSummary) []embedField {
	fields := []embedField{
		{Name: "Branch", Value: fmt.Sprintf("`%s`", s.DefaultBranch), Inline: true},
		{Name: "Stats", Value: fmt.Sprintf("🟩 +%d  🟥 -%d", s.Additions, s.Deletions), Inline: true},
	}

	var commits bytes.Buffer
	// Displayed commits are the newest of the range, capped for readability.
	shown := s.Commits
	if len(shown) > maxDisplayedCommits {
		shown = shown[len(shown)-maxDisplayedCommits:]
	}
	for _, c := range shown {
		fmt.Fprintf(&commits, "• [`%s`](%s) %s\n", shortSHA(c.SHA), c.HTMLURL, c.Message)
	}
	fields = append(fields, embedField{Name: "Commits", Value: commits.String()})

	if len(s.Files) > 0 {
		var files bytes.Buffer
		for i, f := range s.Files {
			if i == maxDisplayedFiles {
				fmt.Fprintf(&files, "*...and %d more files*\n", len(s.Files)-maxDisplayedFiles)
				break
			}
			fmt.Fprintf(&files, "%s `%s`\n", statusMarker(f.Status), f.Filename)
		}
		fields = append(fields, embedField{Name: "Changed Files", Value: files.String()})
	}

	if s.BestEffort {
		fields = append(fields, embedField{Name: "Note", Value: "Stats incomplete: some commits could not be inspected.", Inline: false})
	}
	return fields
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func statusMarker(status model.FileStatus) string {
	switch status {
	case model.FileAdded:
		return "➕"
	case model.FileRemoved:
		return "❌"
	default:
		return "📝"
	}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func visibility(private bool) string {
	if private {
		return "Private"
	}
	return "Public"
}
