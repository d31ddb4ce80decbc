package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bundle-service/internal/models"
)

// HTTPSender posts bundle submissions to the service endpoint with the
// per-session anti-forgery token attached.
type HTTPSender struct {
	client    *http.Client
	endpoint  string
	sessionID string
	token     string
}

// NewHTTPSender creates an HTTP sender for the given endpoint and session
func NewHTTPSender(client *http.Client, endpoint, sessionID, token string) *HTTPSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSender{
		client:    client,
		endpoint:  endpoint,
		sessionID: sessionID,
		token:     token,
	}
}

// Send submits the bundle request and decodes the reply
func (s *HTTPSender) Send(ctx context.Context, req models.BundleRequest) (*models.BundleResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Bundle-Session", s.sessionID)
	httpReq.Header.Set("X-Bundle-Token", s.token)

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("bundle submission failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var serverErr ServerError
		if decodeErr := json.NewDecoder(httpResp.Body).Decode(&serverErr); decodeErr != nil || serverErr.Message == "" {
			return nil, fmt.Errorf("bundle submission rejected with status %d", httpResp.StatusCode)
		}
		return nil, &serverErr
	}

	var resp models.BundleResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode bundle response: %w", err)
	}

	return &resp, nil
}
