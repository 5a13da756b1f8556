package catalog

import "errors"

var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	// ErrStaleEntity условная запись не прошла: updated_at на сервере
	// новее, чем время, на которое рассчитывал клиент
	ErrStaleEntity = errors.New("entity is newer than claimed timestamp")
	ErrUnknownKind = errors.New("unknown entity kind")
)
