package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/riverqueue/river"
)

// NotificationJobArgs is the river payload for one outbound notification.
type NotificationJobArgs struct {
	Event Event `json:"event"`
}

func (NotificationJobArgs) Kind() string { return "notification" }

// NotificationWorker POSTs the event JSON to the notification sender.
// Returning an error lets river retry with backoff; the retries never touch
// the core operation that emitted the event.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]
	webhookURL string
	httpClient *http.Client
}

// NewNotificationWorker returns a worker posting to webhookURL.
func NewNotificationWorker(webhookURL string) *NotificationWorker {
	return &NotificationWorker{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	body, err := json.Marshal(job.Args.Event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification sender returned status %d", resp.StatusCode)
	}
	return nil
}
