package constants

import "time"

// Application constants centralized in one location to improve type safety
// and eliminate magic strings throughout the codebase

// Default Configuration Values
const (
	// Server defaults
	DefaultPort        = 6660
	DefaultSessionPort = 6661
	DefaultLogLevel    = "INFO"
	DefaultMinFloor    = 0
	DefaultMaxFloor    = 9
	DefaultCabID       = 1

	// Control engine defaults
	DefaultSpeed              = 300
	DefaultWaitThreshold      = 3 * time.Second
	DefaultKeepAlive          = 15 * time.Second
	DefaultHeartbeatThreshold = 5 * time.Second
	DefaultTransitPerFloor    = 500 * time.Millisecond
)

// HTTP Content Types
const (
	ContentTypeJSON      = "application/json"
	ContentTypeTextPlain = "text/plain"
)

// HTTP Methods
const (
	MethodGET  = "GET"
	MethodPOST = "POST"
)

// Component Names for Logging
const (
	ComponentHTTPServer = "http-server"
	ComponentHTTPHandler = "http_handler"
	ComponentEngine      = "engine"
	ComponentSession     = "session"
	ComponentDriver      = "driver"
)

// Floor Validation Limits
const (
	MinAllowedFloor = -100 // Reasonable minimum for basements
	MaxAllowedFloor = 200  // Reasonable maximum for skyscrapers
)

// Metrics
const (
	MetricsNamespace = "elevator"
	CabIDLabel       = "cab_id"
)
