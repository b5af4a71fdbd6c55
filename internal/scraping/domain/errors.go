package domain

import "errors"

var (
	ErrDisallowedByRobots = errors.New("page disallowed by robots.txt")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
	ErrBodyTooLarge       = errors.New("response body too large")
	ErrNotHTML            = errors.New("response is not an HTML page")
	ErrRendererDisabled   = errors.New("javascript rendering is not enabled")
	ErrPrivateAddress     = errors.New("refusing to connect to a private network address")
)
