package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/exp/slog"

	"marketsync/internal/app/client/config"
	"marketsync/internal/domain/sync"
	"marketsync/internal/domain/user"
)

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) (*httpClient, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log,
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "MarketSync-Client/1.0",
	}, nil
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер вернул статус: %d", resp.StatusCode)
	}
	return nil
}

// Register регистрирует продавца и его бизнес
func (h *httpClient) Register(ctx context.Context, req user.RegisterRequest) (int, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/user/register", req)
	if err != nil {
		return 0, err
	}

	var registerResp struct {
		ID         int    `json:"user_id"`
		BusinessID int    `json:"business_id"`
		Status     string `json:"status"`
		Error      string `json:"error"`
	}
	if err := h.parseResponse(resp, &registerResp); err != nil {
		return 0, err
	}
	if registerResp.Status == "Error" {
		return 0, fmt.Errorf("ошибка сервера: %s", registerResp.Error)
	}
	return registerResp.BusinessID, nil
}

// Login аутентифицируется и возвращает токен сессии
func (h *httpClient) Login(ctx context.Context, login, password string) (string, error) {
	req := user.BaseRequest{Login: login, Password: password}

	resp, err := h.doRequest(ctx, http.MethodPost, "/user/login", req)
	if err != nil {
		return "", err
	}

	var loginResp struct {
		Token  string `json:"token"`
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := h.parseResponse(resp, &loginResp); err != nil {
		return "", err
	}
	if loginResp.Status == "Error" {
		return "", fmt.Errorf("ошибка сервера: %s", loginResp.Error)
	}

	h.token = loginResp.Token
	return loginResp.Token, nil
}

// Push отправляет пакет локальных изменений
func (h *httpClient) Push(ctx context.Context, req sync.PushRequest) (*sync.PushResponse, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/sync/push", req)
	if err != nil {
		return nil, err
	}

	var result sync.PushResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	if result.Status == "Error" {
		return nil, fmt.Errorf("ошибка сервера: %s", result.Error)
	}
	return &result, nil
}

// Pull забирает страницу серверных изменений после отметки
func (h *httpClient) Pull(ctx context.Context, req sync.PullRequest) (*sync.PullResponse, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/sync/pull", req)
	if err != nil {
		return nil, err
	}

	var result sync.PullResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	if result.Status == "Error" {
		return nil, fmt.Errorf("ошибка сервера: %s", result.Error)
	}
	return &result, nil
}

// FullSync запрашивает полное состояние каталога
func (h *httpClient) FullSync(ctx context.Context, req sync.FullSyncRequest) (*sync.FullSyncResponse, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/sync/full", req)
	if err != nil {
		return nil, err
	}

	var result sync.FullSyncResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	if result.Status == "Error" {
		return nil, fmt.Errorf("ошибка сервера: %s", result.Error)
	}
	return &result, nil
}

// Checkpoint возвращает серверную отметку синхронизации устройства
func (h *httpClient) Checkpoint(ctx context.Context, deviceID string) (*sync.CheckpointResponse, error) {
	path := "/api/sync/checkpoint?device_id=" + url.QueryEscape(deviceID)
	resp, err := h.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result sync.CheckpointResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	if result.Status == "Error" {
		return nil, fmt.Errorf("ошибка сервера: %s", result.Error)
	}
	return &result, nil
}

// Conflicts возвращает неразрешенные конфликты бизнеса
func (h *httpClient) Conflicts(ctx context.Context) ([]sync.QueueRecord, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/sync/conflicts", nil)
	if err != nil {
		return nil, err
	}

	var result sync.ConflictsResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}
	if result.Status == "Error" {
		return nil, fmt.Errorf("ошибка сервера: %s", result.Error)
	}
	return result.Data, nil
}

// Resolve разрешает конфликт по идентификатору записи очереди
func (h *httpClient) Resolve(ctx context.Context, conflictID string, req sync.ResolveRequest) error {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/sync/conflicts/"+conflictID+"/resolve", req)
	if err != nil {
		return err
	}

	var result sync.ResolveResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return err
	}
	if result.Status == "Error" {
		return fmt.Errorf("ошибка сервера: %s", result.Error)
	}
	return nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
	)

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				return fmt.Errorf("ошибка сервера: %s", errResp.Error)
			}
			if errResp.Detail != "" {
				return fmt.Errorf("ошибка сервера: %s", errResp.Detail)
			}
		}
		return fmt.Errorf("ошибка сервера: статус %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}
	return nil
}
