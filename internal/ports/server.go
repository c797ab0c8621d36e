package ports

// Server is a long-running front end of the triage pipeline
type Server interface {
	// Start serves until Stop is called or the listener fails
	Start() error

	// Stop shuts the server down gracefully
	Stop() error
}
