package platform

import "fmt"

// APIError is a structured failure from a platform call. Timeouts and
// transport failures are reported through the same type so every step of a
// checkout treats them identically to a non-2xx response.
type APIError struct {
	Op      string // which collaborator call failed
	Status  int    // HTTP status, 0 for transport errors
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("platform %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("platform %s: status %d: %s", e.Op, e.Status, e.Message)
}
