package logger

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// webhookHook mirrors log lines to Discord webhooks. Error levels go to the
// error webhook, everything else to the logs webhook.
type webhookHook struct {
	errorURL string
	logsURL  string
	client   *http.Client
}

func newWebhookHook(errorURL, logsURL string) *webhookHook {
	return &webhookHook{
		errorURL: errorURL,
		logsURL:  logsURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (h *webhookHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *webhookHook) Fire(e *logrus.Entry) error {
	lvl := entryLevel(e)
	url := h.logsURL
	if lvl <= LevelError {
		url = h.errorURL
	}
	if url == "" {
		return nil
	}

	go h.send(url, lvl, entryPrefix(e), e.Message, e.Time)
	return nil
}

type webhookEmbed struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Color       int               `json:"color"`
	Timestamp   string            `json:"timestamp"`
	Footer      map[string]string `json:"footer"`
}

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

func (h *webhookHook) send(url string, lvl LogLevel, prefix, message string, at time.Time) {
	payload := webhookPayload{
		Embeds: []webhookEmbed{{
			Title:       fmt.Sprintf("[%s] %s", lvl.String(), prefix),
			Description: fmt.Sprintf("```%s```", message),
			Color:       lvl.DiscordColor(),
			Timestamp:   at.Format(time.RFC3339),
			Footer:      map[string]string{"text": "VeilleBot"},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
