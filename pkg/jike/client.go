package jike

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"sph_sync/models"
)

// Client обращается к локальному статистическому API за метриками
// опубликованных видео по аккаунтам.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создаёт клиента источника. baseURL — адрес локального сервиса,
// например http://127.0.0.1:9802.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
	}
}

// Params — необязательные фильтры запроса статистики.
type Params struct {
	UserIDs   string // Идентификаторы аккаунтов через запятую
	StartTime string // Начало диапазона дат, "yyyy-MM-dd"
	EndTime   string // Конец диапазона дат, "yyyy-MM-dd"
}

// response — конверт ответа источника: успех обозначается кодом 200.
type response struct {
	Code int                  `json:"code"`
	Msg  string               `json:"msg"`
	Data []models.AccountData `json:"data"`
}

// FetchPostStatistics запрашивает статистику публикаций по всем аккаунтам,
// попадающим под фильтры. Любая ошибка здесь относится к уровню прогона:
// без данных источника синхронизировать нечего.
func (c *Client) FetchPostStatistics(ctx context.Context, p Params) ([]models.AccountData, error) {
	q := url.Values{}
	if p.UserIDs != "" {
		q.Set("user_ids", p.UserIDs)
	}
	if p.StartTime != "" {
		q.Set("start_time", p.StartTime)
	}
	if p.EndTime != "" {
		q.Set("end_time", p.EndTime)
	}

	reqURL := c.baseURL + "/sph/api/post_statistics"
	if encoded := q.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}
	log.Printf("[JIKE INFO] Запрос статистики: %s", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("источник статистики недоступен: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("источник статистики: HTTP %d", httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("разбор ответа источника: %w", err)
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("источник статистики: код %d: %s", resp.Code, resp.Msg)
	}

	log.Printf("[JIKE INFO] Получено аккаунтов: %d", len(resp.Data))
	return resp.Data, nil
}
