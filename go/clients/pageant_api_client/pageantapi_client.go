package pageant_api_client

import (
	"encoding/json"
	"fmt"

	"github.com/crownjudge/pageant/go/clients"
)

// PageantApiClient talks to the pageant backend REST API. Every response
// is wrapped in the standard {success, data, error} envelope.
type PageantApiClient struct {
	*clients.BaseClient
}

func NewPageantApiClient(baseURL, token string) *PageantApiClient {
	base := clients.NewBaseClient(baseURL)
	base.SetBearerToken(token)
	return &PageantApiClient{BaseClient: base}
}

// envelope is the backend's uniform response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// decodeEnvelope unwraps the response envelope into out. A server-side
// rejection surfaces its human-readable error string.
func decodeEnvelope(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if !env.Success {
		if env.Error != "" {
			return fmt.Errorf("api error: %s", env.Error)
		}
		return fmt.Errorf("api request failed")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
