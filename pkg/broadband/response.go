package broadband

import (
	"encoding/json"
	"fmt"
	"time"
)

// Response is a successful API reply.
type Response struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
	Duration   time.Duration   `json:"-"`
}

// APIError is returned for non-2xx replies.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("broadband api returned %d: %s", e.StatusCode, body)
}
