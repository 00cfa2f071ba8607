// Package backend is the REST client for the dispatcher backend. The bot
// only goes through this client, so the conversation logic stays decoupled
// from the backend's wire format.
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ajubot/volunteer-bot/internal/models"
)

// Client talks to the dispatcher backend with basic auth. All methods are
// synchronous request/response; callers decide what a failure means for the
// conversation state.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LookupVolunteer tells the backend which chat belongs to this phone number
// and reports whether the volunteer is already registered.
func (c *Client) LookupVolunteer(ctx context.Context, username string, chatID int64, phone string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	url := fmt.Sprintf("volunteer?telegram_chat_id=%d&phone=%s&nickname=%s", chatID, phone, username)
	if err := c.get(ctx, url, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// RegisterVolunteer submits a completed onboarding profile.
func (c *Client) RegisterVolunteer(ctx context.Context, profile *models.RegistrationProfile) error {
	payload := map[string]interface{}{
		"chat_id":      profile.ChatID,
		"first_name":   profile.FirstName,
		"last_name":    profile.LastName,
		"availability": profile.Availability,
		"activities":   profile.Activities,
		"phone":        profile.Phone,
		"email":        profile.Email,
	}
	if profile.PhoneForeign != "" {
		payload["phoneEx"] = profile.PhoneForeign
	}
	return c.send(ctx, http.MethodPost, "volunteer", payload)
}

// UploadReceipt documents expenses handled on behalf of the beneficiary.
// A volunteer may send several receipts for the same request.
func (c *Client) UploadReceipt(ctx context.Context, requestID string, image []byte) error {
	payload := map[string]interface{}{
		"beneficiary_id": requestID,
		"data":           base64.StdEncoding.EncodeToString(image),
	}
	return c.send(ctx, http.MethodPost, "receipt", payload)
}

// RelayOffer forwards a volunteer's proposed time. Called once per
// responding volunteer while the backend picks an assignee.
func (c *Client) RelayOffer(ctx context.Context, requestID string, chatID int64, offer string) error {
	payload := map[string]interface{}{
		"telegram_chat_id":     chatID,
		"offer_beneficiary_id": requestID,
		"availability_day":     offer,
	}
	return c.send(ctx, http.MethodPut, "volunteer", payload)
}

// UpdateRequestStatus changes the lifecycle status of a request.
func (c *Client) UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) error {
	payload := map[string]interface{}{
		"_id":    requestID,
		"status": string(status),
	}
	return c.send(ctx, http.MethodPut, "beneficiary", payload)
}

// SubmitResult sends the consolidated exit-survey payload for a finalized
// request.
func (c *Client) SubmitResult(ctx context.Context, result *models.RequestResult) error {
	return c.send(ctx, http.MethodPut, "beneficiary", result)
}

// GetRequestDetails fetches the full record of a request.
func (c *Client) GetRequestDetails(ctx context.Context, requestID string) (*models.AssistanceRequest, error) {
	var out struct {
		Count int                         `json:"count"`
		List  []*models.AssistanceRequest `json:"list"`
	}
	if err := c.get(ctx, "beneficiary/filters/1/10?id="+requestID, &out); err != nil {
		return nil, err
	}
	if out.Count == 0 || len(out.List) == 0 {
		return nil, fmt.Errorf("request %s not found on backend", requestID)
	}
	return out.List[0], nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend GET %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return nil
}
