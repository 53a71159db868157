package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidPort is returned when the listen port is outside 1-65535.
	ErrInvalidPort = errors.New("invalid port: must be between 1 and 65535")

	// ErrInvalidWorkers is returned when the extraction worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxImages is returned when the batch limit is not in 1-5.
	ErrInvalidMaxImages = errors.New("invalid max images: must be between 1 and 5")

	// ErrNoModelPath is returned when no classifier artifact is configured.
	ErrNoModelPath = errors.New("no model path configured")

	// ErrInvalidTTL is returned when the session lifetime is not positive.
	ErrInvalidTTL = errors.New("invalid session ttl: must be positive")

	// ErrInvalidLogLevel is returned for a log level other than debug, info, warn or error.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
