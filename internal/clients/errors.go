package clients

// AuthenticationError is returned when the Orchestra identity endpoint
// rejects the client-credentials grant.
type AuthenticationError struct {
	StatusCode int
	Status     string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Status
}

// FetchError is returned when the Orchestra items endpoint responds with a
// non-success status after the single re-authentication retry.
type FetchError struct {
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return "failed to fetch items: " + e.Status
}

// CommerceAPIError is returned when Shopify rejects a product creation. The
// Payload carries the remote error body verbatim so the operator can diagnose
// against Shopify's own error vocabulary.
type CommerceAPIError struct {
	StatusCode int
	Payload    string
}

func (e *CommerceAPIError) Error() string {
	return "Shopify API error: " + e.Payload
}
