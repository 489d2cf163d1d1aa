package service

import "errors"

var (
	ErrNotFound               = errors.New("error not found")
	ErrDataUnavailable        = errors.New("error data unavailable")
	ErrInvalidRange           = errors.New("error invalid chart range")
	ErrPersistenceReadFailed  = errors.New("error could not read favorites")
	ErrPersistenceWriteFailed = errors.New("error could not save favorite")
	ErrNothingToExport        = errors.New("error watchlist is empty")
)

var ErrExportTooLarge = errors.New("error export exceeds file limit")
