package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"guestregistration/internal/domain"
)

// Row is one line appended to the registrant spreadsheet.
type Row struct {
	EventName      string    `json:"event_name"`
	RegistrationID string    `json:"registration_id"`
	Name           string    `json:"name"`
	Company        string    `json:"company"`
	Title          string    `json:"title"`
	Email          string    `json:"email"`
	Status         string    `json:"status"`
	Companion      bool      `json:"companion"`
	RegisteredAt   time.Time `json:"registered_at"`
}

type payload struct {
	Rows []Row `json:"rows"`
}

type webhookSyncer struct {
	client     *http.Client
	webhookURL string
}

// NewWebhookSyncer returns a syncer that posts registrant rows as JSON to a
// spreadsheet webhook (for example an Apps Script web app).
func NewWebhookSyncer(client *http.Client, webhookURL string) domain.RegistrantSheetSyncer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &webhookSyncer{client: client, webhookURL: webhookURL}
}

func (s *webhookSyncer) Sync(ctx context.Context, registrant *domain.Registrant, companion *domain.Companion, eventName string) error {
	rows := []Row{{
		EventName:      eventName,
		RegistrationID: registrant.RegistrationID,
		Name:           registrant.Name,
		Company:        registrant.Company,
		Title:          registrant.Title,
		Email:          registrant.Email,
		Status:         string(registrant.Status),
		RegisteredAt:   registrant.CreatedAt,
	}}
	if companion != nil {
		rows = append(rows, Row{
			EventName:      eventName,
			RegistrationID: companion.RegistrationID,
			Name:           companion.Name,
			Company:        companion.Company,
			Title:          companion.Title,
			Email:          companion.Email,
			Status:         string(registrant.Status),
			Companion:      true,
			RegisteredAt:   companion.CreatedAt,
		})
	}
	body, err := json.Marshal(payload{Rows: rows})
	if err != nil {
		return fmt.Errorf("failed to encode sheet rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to sheet webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sheet webhook returned status: %d", resp.StatusCode)
	}
	return nil
}
