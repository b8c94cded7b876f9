package constants

import "time"

const (
	// Advice backend defaults
	DefaultAdviceBaseURL = "https://generativelanguage.googleapis.com"
	DefaultAdviceModel   = "gemini-2.5-flash"
	DefaultAdviceTimeout = 15 * time.Second

	// Remote mirror
	MirrorQueueSize      = 64
	MirrorAttemptTimeout = 10 * time.Second
	MirrorMaxAttempts    = 3
	MirrorDrainTimeout   = 3 * time.Second

	// ResolveTimeout bounds initial-screen resolution so startup never hangs.
	ResolveTimeout = 8 * time.Second

	// SessionTTL is how long a remote session token stays valid.
	SessionTTL = 30 * 24 * time.Hour

	// RemoteSchema is the Postgres schema holding the remote tables.
	RemoteSchema = "brahmapath"
)
