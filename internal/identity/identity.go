package identity

// Identity is the verified principal bound to a connection for the
// lifetime of its session. It contains facts only, no decisions.
type Identity struct {
	Subject string         `json:"subject"`
	Claims  map[string]any `json:"claims,omitempty"`
}
