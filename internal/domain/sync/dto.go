package sync

import (
	"encoding/json"
	"time"

	"marketsync/internal/domain/catalog"
)

// DTO запросов и ответов API синхронизации

// PushRequest пакет изменений устройства
type PushRequest struct {
	DeviceID string   `json:"device_id" minLength:"1"`
	Changes  []Change `json:"changes"`
}

// PushResponse результаты по каждому изменению плюс серверное время,
// ставшее новым значением чекпоинта
type PushResponse struct {
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
	Results         []Result  `json:"results"`
	ServerTimestamp time.Time `json:"server_timestamp"`
}

// PullRequest запрос инкрементальной выборки изменений сервера
type PullRequest struct {
	DeviceID    string         `json:"device_id" minLength:"1"`
	LastSyncAt  time.Time      `json:"last_sync_at,omitempty" format:"date-time"`
	EntityTypes []catalog.Kind `json:"entity_types,omitempty"`
}

// PullResponse страница изменений после чекпоинта
type PullResponse struct {
	Status          string         `json:"status"`
	Error           string         `json:"error,omitempty"`
	Changes         []PulledChange `json:"changes"`
	ServerTimestamp time.Time      `json:"server_timestamp"`
	HasMore         bool           `json:"has_more"`
}

// FullSyncRequest запрос полного состояния каталога (холодный старт)
type FullSyncRequest struct {
	DeviceID string `json:"device_id" minLength:"1"`
}

// FullSyncResponse полное текущее состояние каталога
type FullSyncResponse struct {
	Status          string             `json:"status"`
	Error           string             `json:"error,omitempty"`
	Products        []catalog.Product  `json:"products"`
	Categories      []catalog.Category `json:"categories"`
	ServerTimestamp time.Time          `json:"server_timestamp"`
}

// CheckpointResponse текущий чекпоинт устройства
type CheckpointResponse struct {
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DeviceID   string    `json:"device_id"`
	LastSyncAt time.Time `json:"last_sync_at"`
}

// ConflictsResponse неразрешенные конфликты бизнеса
type ConflictsResponse struct {
	Status string        `json:"status"`
	Error  string        `json:"error,omitempty"`
	Data   []QueueRecord `json:"data"`
}

// ResolveRequest разрешение конфликта
type ResolveRequest struct {
	Resolution Resolution      `json:"resolution" enum:"keep_server,keep_client,merge"`
	MergedData json.RawMessage `json:"merged_data,omitempty" doc:"Объединенный документ для resolution=merge"`
}

// ResolveResponse подтверждение разрешения конфликта
type ResolveResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
