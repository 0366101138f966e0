package constants

const (
	// SessionIDMin is the inclusive lower bound for generated session ids
	SessionIDMin int = 100000
	// SessionIDMax is the exclusive upper bound for generated session ids
	SessionIDMax int = 999999
	// PlayerIDMax is the exclusive upper bound for generated player ids
	PlayerIDMax int = 99999

	// ActionBufferSize is the capacity of the feature's action channel
	ActionBufferSize = 64
	// EffectBufferSize is the capacity of the feature's effect channel
	EffectBufferSize = 64
	// NotificationBufferSize is the capacity of the notification channel
	NotificationBufferSize = 16
	// StateBufferSize is the capacity of each state subscriber channel
	StateBufferSize = 16
	// SnapshotBufferSize is the capacity of gateway snapshot channels
	SnapshotBufferSize = 16
)
