package sync

import (
	"context"
	"time"

	"marketsync/internal/domain/catalog"
)

// Repository хранилище журнала синхронизации и чекпоинтов устройств.
// Данные каталога этому ядру не принадлежат - только журнал и чекпоинты.
type Repository interface {
	// Журнал
	SaveQueueRecord(ctx context.Context, rec *QueueRecord) error
	GetQueueRecord(ctx context.Context, businessID int, id string) (*QueueRecord, error)
	ListConflicts(ctx context.Context, businessID int) ([]QueueRecord, error)
	MarkResolved(ctx context.Context, businessID int, id string, resolution Resolution, resolvedAt time.Time) error

	// Лента удалений: завершенные delete-записи после указанного момента.
	// Единственный способ узнать об удалении жестко удаляемых видов.
	CompletedDeletesSince(ctx context.Context, businessID int, kinds []catalog.Kind, since time.Time) ([]QueueRecord, error)

	// PruneCompletedDeletes удаляет завершенные delete-записи старше
	// горизонта хранения. Вызывается только при ненулевом горизонте.
	PruneCompletedDeletes(ctx context.Context, businessID int, before time.Time) (int64, error)

	// Чекпоинты
	GetCheckpoint(ctx context.Context, userID, businessID int, deviceID string) (*Checkpoint, error)
	// AdvanceCheckpoint двигает чекпоинт монотонно: сохраняется максимум
	// из текущего и нового значения
	AdvanceCheckpoint(ctx context.Context, cp *Checkpoint) error
}
