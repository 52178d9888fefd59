package storage

import "errors"

// Common client storage errors
var (
	// ErrCampaignNotFound кампания с таким id не найдена в журнале
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
