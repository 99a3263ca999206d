package rest

// ErrorResponse is the JSON envelope returned by all handlers on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
