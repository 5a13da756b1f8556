package sync

import "errors"

var (
	ErrDeviceRequired     = errors.New("device id is required")
	ErrConflictNotFound   = errors.New("conflict not found")
	ErrAlreadyResolved    = errors.New("conflict already resolved")
	ErrMergedDataRequired = errors.New("merged data is required for merge resolution")
	ErrUnknownResolution  = errors.New("unknown resolution")
)

// Тексты per-change ошибок, которые видит клиент в Result.Error
const (
	errConflictDetected  = "Conflict detected"
	errUnsupportedEntity = "unsupported entity type"
)
