package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ajubot/volunteer-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
	Auth   string
}

func newTestClient(t *testing.T, status int, response string) (*Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = r.URL.RawQuery
		rec.Auth = r.Header.Get("Authorization")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", "bot", "secret"), rec
}

func TestLookupVolunteer(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{"exists": true}`)

	exists, err := client.LookupVolunteer(context.Background(), "ana", 42, "+37379000000")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/api/volunteer", rec.Path)
	assert.Contains(t, rec.Query, "telegram_chat_id=42")
	assert.NotEmpty(t, rec.Auth, "requests must be authenticated")
}

func TestRegisterVolunteerIncludesForeignPhone(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{}`)

	profile := models.NewRegistrationProfile(7, "Ion", "Rusu", "+4915112345", "+373")
	profile.Availability = "4"
	profile.Activities = []string{"assist_delivery"}
	profile.Phone = "+37361111111"
	profile.Email = "ion@example.com"

	require.NoError(t, client.RegisterVolunteer(context.Background(), profile))
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/volunteer", rec.Path)
	assert.Equal(t, "+4915112345", rec.Body["phoneEx"])
	assert.Equal(t, "+37361111111", rec.Body["phone"])
}

func TestUploadReceiptEncodesImage(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{}`)

	image := []byte{0xFF, 0xD8, 0xFF}
	require.NoError(t, client.UploadReceipt(context.Background(), "req-1", image))
	assert.Equal(t, "/api/receipt", rec.Path)
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), rec.Body["data"])
	assert.Equal(t, "req-1", rec.Body["beneficiary_id"])
}

func TestRelayOffer(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{}`)

	require.NoError(t, client.RelayOffer(context.Background(), "req-1", 42, "14:30"))
	assert.Equal(t, http.MethodPut, rec.Method)
	assert.Equal(t, "/api/volunteer", rec.Path)
	assert.Equal(t, "14:30", rec.Body["availability_day"])
	assert.Equal(t, float64(42), rec.Body["telegram_chat_id"])
}

func TestUpdateRequestStatus(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{}`)

	require.NoError(t, client.UpdateRequestStatus(context.Background(), "req-1", models.StatusInProgress))
	assert.Equal(t, http.MethodPut, rec.Method)
	assert.Equal(t, "/api/beneficiary", rec.Path)
	assert.Equal(t, "in_progress", rec.Body["status"])
}

func TestSubmitResult(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{}`)

	result := &models.RequestResult{
		RequestID:   "req-1",
		Amount:      "99",
		Symptoms:    []string{"symptom_fever"},
		Wellbeing:   2,
		WouldReturn: true,
	}
	require.NoError(t, client.SubmitResult(context.Background(), result))
	assert.Equal(t, "req-1", rec.Body["request_id"])
	assert.Equal(t, float64(2), rec.Body["wellbeing"])
	assert.Equal(t, true, rec.Body["would_return"])
}

func TestGetRequestDetails(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK,
		`{"count": 1, "list": [{"request_id": "req-1", "address": "Armeneasca 35", "needs": ["groceries"]}]}`)

	req, err := client.GetRequestDetails(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", req.ID)
	assert.Equal(t, "Armeneasca 35", req.Address)
}

func TestGetRequestDetailsMissing(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"count": 0, "list": []}`)

	_, err := client.GetRequestDetails(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestNonOKStatusIsAnError(t *testing.T) {
	client, _ := newTestClient(t, http.StatusBadGateway, ``)

	err := client.UpdateRequestStatus(context.Background(), "req-1", models.StatusDone)
	assert.Error(t, err)
}
