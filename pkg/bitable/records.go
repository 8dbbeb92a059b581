package bitable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"sph_sync/models"
)

// Размер страницы списочных запросов. Последовательная пагинация:
// следующая страница запрашивается только после получения токена предыдущей.
const listPageSize = 500

// Record — запись таблицы в том виде, как её отдаёт API списка.
type Record struct {
	RecordID string         `json:"record_id"`
	Fields   map[string]any `json:"fields"`
}

// ListPage — одна страница результата списка записей.
type ListPage struct {
	Items     []Record `json:"items"`
	HasMore   bool     `json:"has_more"`
	PageToken string   `json:"page_token"`
}

// ListQuery описывает параметры одного списочного запроса.
type ListQuery struct {
	Filter     string   // Выражение равенства, например CurrentValue.[账号]="x"
	FieldNames []string // Проекция: запрашиваем только нужные колонки
	PageToken  string
}

// ListRecords возвращает одну страницу записей таблицы.
func (c *Client) ListRecords(ctx context.Context, entry models.RoutingEntry, q ListQuery) (*ListPage, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	appToken, err := c.ResolveAppToken(ctx, entry.BaseToken)
	if err != nil {
		return nil, err
	}

	names, err := json.Marshal(q.FieldNames)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"field_names": {string(names)},
		"page_size":   {strconv.Itoa(listPageSize)},
	}
	if q.Filter != "" {
		params.Set("filter", q.Filter)
	}
	if q.PageToken != "" {
		params.Set("page_token", q.PageToken)
	}

	reqURL := fmt.Sprintf("%s/open-apis/bitable/v1/apps/%s/tables/%s/records?%s",
		c.baseURL, appToken, entry.TableID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var resp struct {
		apiEnvelope
		Data ListPage `json:"data"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, &APIError{Code: resp.Code, Msg: resp.Msg}
	}
	return &resp.Data, nil
}

// CreateRecord добавляет запись и возвращает её идентификатор.
func (c *Client) CreateRecord(ctx context.Context, entry models.RoutingEntry, fields map[string]any) (string, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	appToken, err := c.ResolveAppToken(ctx, entry.BaseToken)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return "", err
	}
	reqURL := fmt.Sprintf("%s/open-apis/bitable/v1/apps/%s/tables/%s/records",
		c.baseURL, appToken, entry.TableID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		apiEnvelope
		Data struct {
			Record Record `json:"record"`
		} `json:"data"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.Code != 0 {
		return "", &APIError{Code: resp.Code, Msg: resp.Msg}
	}
	return resp.Data.Record.RecordID, nil
}

// UpdateRecord выполняет частичное обновление полей существующей записи.
func (c *Client) UpdateRecord(ctx context.Context, entry models.RoutingEntry, recordID string, fields map[string]any) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}
	appToken, err := c.ResolveAppToken(ctx, entry.BaseToken)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return err
	}
	reqURL := fmt.Sprintf("%s/open-apis/bitable/v1/apps/%s/tables/%s/records/%s",
		c.baseURL, appToken, entry.TableID, recordID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var resp apiEnvelope
	if err := c.do(req, &resp); err != nil {
		return err
	}
	if resp.Code != 0 {
		return &APIError{Code: resp.Code, Msg: resp.Msg}
	}
	return nil
}
