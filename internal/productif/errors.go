package productif

import "fmt"

// APIError is returned for any non-2xx answer from the Domain API.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("productif api %s: status %d: %s", e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("productif api %s: status %d", e.Path, e.Status)
}

// StatusCode 供 util.ClassifyError 识别
func (e *APIError) StatusCode() int { return e.Status }

// Unauthorized reports whether the credential was refused.
func (e *APIError) Unauthorized() bool {
	return e.Status == 401 || e.Status == 403
}
