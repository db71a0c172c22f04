package core

import "time"

// TODO: set at compile time via -ldflags
const Version = "0.1.0"

// Config of heartbeat fixture
type Config struct {
	// Interval between heartbeat lines
	Interval time.Duration
	// ExitOnSignal - return from loop after first handled signal instead of resuming
	ExitOnSignal bool
	// Debug enables debug logs on stderr
	Debug bool
}

var DefaultConfig = Config{
	Interval:     time.Second,
	ExitOnSignal: false,
	Debug:        false,
}
