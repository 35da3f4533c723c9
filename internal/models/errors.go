package models

import "errors"

var (
	ErrEmptyText    = errors.New("text is empty")
	ErrInvalidScore = errors.New("invalid polarity score")
	ErrEmptyHistory = errors.New("history is empty")
)
