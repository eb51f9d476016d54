package analytics

import "errors"

var (
	ErrUnknownSlice = errors.New("unknown analytics slice")
	ErrNotLoaded    = errors.New("dashboard not loaded")
)
