package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) pushOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-push",
		Method:      http.MethodPost,
		Path:        "/api/sync/push",
		Summary:     "Принять пакет изменений устройства",
		Description: "Применяет изменения по одному, конфликты ставит в очередь; пакет не прерывается из-за одного плохого изменения",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) pullOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-pull",
		Method:      http.MethodPost,
		Path:        "/api/sync/pull",
		Summary:     "Выдать изменения сервера после чекпоинта",
		Description: "Возвращает страницу изменений строго после чекпоинта устройства, включая ленту удалений",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) fullSyncOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-full",
		Method:      http.MethodPost,
		Path:        "/api/sync/full",
		Summary:     "Полная синхронизация",
		Description: "Возвращает полное активное состояние каталога для устройства без чекпоинта",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) checkpointOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-checkpoint",
		Method:      http.MethodGet,
		Path:        "/api/sync/checkpoint",
		Summary:     "Получить чекпоинт устройства",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) conflictsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-conflicts",
		Method:      http.MethodGet,
		Path:        "/api/sync/conflicts",
		Summary:     "Получить конфликты синхронизации",
		Description: "Возвращает записи очереди со статусом conflict",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) resolveOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-resolve-conflict",
		Method:      http.MethodPost,
		Path:        "/api/sync/conflicts/{id}/resolve",
		Summary:     "Разрешить конфликт синхронизации",
		Description: "Разрешает конфликт режимом keep_server, keep_client или merge",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
