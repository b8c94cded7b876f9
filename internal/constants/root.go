package constants

import "time"

const (
	AppName           = "brahmapath"
	Version           = "v0.1.0"
	DefaultConfigDir  = "~/.config/brahmapath"
	DefaultConfigPath = "~/.config/brahmapath/brahma_user.json"

	// ProfileStorageKey is the fixed key the local profile blob is stored under.
	ProfileStorageKey = "brahma_user"

	// Keyring entries
	KeyringAdviceKey    = "advice-api-key"
	KeyringRemote       = "remote-connection"
	KeyringSessionToken = "session-token"

	// InstanceLockfileName guards the local cache against a second writer.
	InstanceLockfileName = "brahmapath.lock"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"
)

const (
	// ProgramDays is the length of the program; CurrentDay never exceeds it.
	ProgramDays = 108

	// GateWindow is the cooldown between two accountability actions.
	GateWindow = 24 * time.Hour

	// GateTickInterval drives the dashboard countdown.
	GateTickInterval = time.Second

	MinAge = 15
	MaxAge = 80

	MinPasswordLen = 6

	// ProgramFee is shown on the payment screen only.
	ProgramFee = "₹10"
)
