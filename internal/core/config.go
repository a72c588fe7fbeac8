package core

import "time"

type BackendConfig interface {
	GetServerURL() string
	GetSessionCookie() string
	GetRequestTimeout() time.Duration
}

type PollConfig interface {
	GetPollInterval() time.Duration
	GetPollMaxAttempts() int
}
