package sync

import (
	"encoding/json"
	"time"

	"marketsync/internal/domain/catalog"
)

// Operation операция над сущностью каталога
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Status статус записи очереди синхронизации
type Status string

const (
	StatusCompleted Status = "completed"
	StatusConflict  Status = "conflict"
	StatusResolved  Status = "resolved"
)

// Resolution способ разрешения конфликта
type Resolution string

const (
	ResolutionKeepServer Resolution = "keep_server"
	ResolutionKeepClient Resolution = "keep_client"
	ResolutionMerge      Resolution = "merge"
)

// CheckpointAll сентинел вида сущности для общего чекпоинта устройства
const CheckpointAll = "all"

// Change входящее изменение от устройства. EntityID выбирает клиент и
// переиспользует при повторных попытках: для созданных офлайн сущностей
// он же становится первичным ключом на сервере.
type Change struct {
	EntityType      catalog.Kind    `json:"entity_type" enum:"product,category,image"`
	EntityID        string          `json:"entity_id"`
	SyncID          string          `json:"sync_id,omitempty" doc:"Клиентский корреляционный токен"`
	Operation       Operation       `json:"operation" enum:"create,update,delete"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	ClientTimestamp time.Time       `json:"client_timestamp" format:"date-time"`
}

// Result результат обработки одного изменения
type Result struct {
	EntityID        string          `json:"entity_id"`
	SyncID          string          `json:"sync_id,omitempty"`
	Success         bool            `json:"success"`
	ServerTimestamp time.Time       `json:"server_timestamp"`
	Error           string          `json:"error,omitempty"`
	ConflictData    json.RawMessage `json:"conflict_data,omitempty" doc:"Текущее состояние сущности на сервере при конфликте"`
}

// QueueRecord строка журнала синхронизации: одна на каждую обработанную
// попытку. Журнал служит и аудит-логом, и источником сведений об
// удалениях для pull (строка жестко удаленной сущности из живой таблицы
// уже исчезла). Запись со статусом conflict мутирует ровно один раз -
// при разрешении; остальные записи неизменяемы.
type QueueRecord struct {
	ID              string          `json:"id"`
	UserID          int             `json:"user_id"`
	BusinessID      int             `json:"business_id"`
	DeviceID        string          `json:"device_id"`
	EntityType      catalog.Kind    `json:"entity_type"`
	EntityID        string          `json:"entity_id"`
	SyncID          string          `json:"sync_id,omitempty"`
	Operation       Operation       `json:"operation"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	ClientTimestamp time.Time       `json:"client_timestamp"`
	Status          Status          `json:"status"`
	Resolution      Resolution      `json:"resolution,omitempty"`
	ProcessedAt     time.Time       `json:"processed_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// Checkpoint отметка, до какого момента устройство синхронизировано.
// Двигается только вперед: повторный push или pull не откатывает ее.
type Checkpoint struct {
	UserID     int       `json:"user_id"`
	BusinessID int       `json:"business_id"`
	DeviceID   string    `json:"device_id"`
	EntityType string    `json:"entity_type"`
	LastSyncAt time.Time `json:"last_sync_at"`
}

// PulledChange исходящее изменение сервера для устройства
type PulledChange struct {
	EntityType      catalog.Kind    `json:"entity_type"`
	EntityID        string          `json:"entity_id"`
	SyncID          string          `json:"sync_id,omitempty"`
	Operation       Operation       `json:"operation"`
	Data            json.RawMessage `json:"data,omitempty"`
	ServerTimestamp time.Time       `json:"server_timestamp"`
}
