package log

// Transporter is a log output destination (stdout, files, collectors).
type Transporter interface {
	// Name identifies the transporter in fallback error messages.
	Name() string

	// Write delivers one entry.
	Write(entry Entry) error

	// Close releases held resources; Write is not called afterwards.
	Close() error
}
