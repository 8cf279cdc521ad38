package gateway

import (
	"encoding/json"
	"fmt"

	"bookshelf/internal/services"
)

// DecodeJSON unmarshals a 2xx body into v. Non-2xx statuses map to
// ErrNotFound and undecodable bodies to ErrMalformed; both are soft for the
// orchestrator.
func DecodeJSON(provider string, resp *Response, v any) error {
	if resp == nil {
		return services.Wrap(services.ErrMalformed, provider, "decode", "nil response", nil)
	}
	if !resp.OK() {
		return services.Wrap(services.ErrNotFound, provider, "decode",
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return services.Wrap(services.ErrMalformed, provider, "decode", "invalid json", err)
	}
	return nil
}
