package server

import "errors"

var (
	errNoListenAddress = errors.New("no listen address configured")
)
