package client

import (
	"encoding/json"
	"time"

	"marketsync/internal/domain/catalog"
	"marketsync/internal/domain/sync"
)

// PendingChange локальная правка, еще не отправленная на сервер.
// SyncID выдается при постановке в журнал и переживает повторные
// отправки, чтобы сервер мог распознать ретрай.
type PendingChange struct {
	Seq             int64           `json:"seq"`
	EntityType      catalog.Kind    `json:"entity_type"`
	EntityID        string          `json:"entity_id"`
	SyncID          string          `json:"sync_id"`
	Operation       sync.Operation  `json:"operation"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	ClientTimestamp time.Time       `json:"client_timestamp"`
}

// SyncError ошибка обработки одного изменения
type SyncError struct {
	EntityID  string    `json:"entity_id"`
	Operation string    `json:"operation"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncResult итог одного прохода синхронизации
type SyncResult struct {
	Success    bool          `json:"success"`
	Uploaded   int           `json:"uploaded"`
	Downloaded int           `json:"downloaded"`
	Conflicts  int           `json:"conflicts"`
	Errors     []SyncError   `json:"errors"`
	Duration   time.Duration `json:"duration"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
}

// SyncStats накопленная статистика синхронизаций устройства
type SyncStats struct {
	TotalSyncs      int       `json:"total_syncs"`
	LastSuccessful  time.Time `json:"last_successful"`
	LastFailed      time.Time `json:"last_failed"`
	TotalUploaded   int       `json:"total_uploaded"`
	TotalDownloaded int       `json:"total_downloaded"`
	TotalConflicts  int       `json:"total_conflicts"`
}

// ProductFilter фильтр локального списка товаров
type ProductFilter struct {
	CategoryID  string
	ShowDeleted bool
	Limit       int
	Offset      int
}
