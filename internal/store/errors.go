package store

import "errors"

var (
	ErrNoSnapshot = errors.New("no session snapshot saved")
)
