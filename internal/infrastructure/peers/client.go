package peers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pagos-service/pkg/errors"
)

const (
	serviceReservations = "reservation service"
	serviceActivity     = "activity service"
)

// PeerConfig holds the base URLs of the sibling services
type PeerConfig struct {
	ReservationsBaseURL string
	ActivityBaseURL     string
	Timeout             time.Duration
}

// Client notifies the reservation and activity services after a commit
type Client struct {
	config     PeerConfig
	httpClient *http.Client
}

// activityRequest is the body accepted by publishActivity
type activityRequest struct {
	OwnerID string `json:"idUsuario"`
	Action  string `json:"accion"`
}

func NewClient(config PeerConfig) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	config.ReservationsBaseURL = strings.TrimRight(config.ReservationsBaseURL, "/")
	config.ActivityBaseURL = strings.TrimRight(config.ActivityBaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// ConfirmReservation marks a reservation as paid.
func (c *Client) ConfirmReservation(ctx context.Context, reservationID string) error {
	url := fmt.Sprintf("%s/%s/confirmar", c.config.ReservationsBaseURL, reservationID)
	return c.post(ctx, serviceReservations, url, nil)
}

// PublishActivity records a free-text action for an owner.
func (c *Client) PublishActivity(ctx context.Context, ownerID, action string) error {
	body, err := json.Marshal(activityRequest{OwnerID: ownerID, Action: action})
	if err != nil {
		return errors.NewPeerServiceError(serviceActivity, fmt.Errorf("failed to marshal request: %w", err))
	}
	return c.post(ctx, serviceActivity, c.config.ActivityBaseURL+"/publishActivity", body)
}

func (c *Client) post(ctx context.Context, service, url string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return errors.NewPeerServiceError(service, fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewPeerServiceError(service, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewPeerServiceError(service, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}
	return nil
}
