package jike

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchPostStatistics(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": 200, "msg": "ok",
			"data": [{
				"user_id": 101,
				"username": "мой аккаунт",
				"group_name": "группа",
				"total_count": 1,
				"videos": [{"name": "обзор", "readCount": 1234}]
			}]
		}`))
	}))
	defer srv.Close()

	accounts, err := NewClient(srv.URL).FetchPostStatistics(context.Background(), Params{
		UserIDs:   "uid-1,uid-2",
		StartTime: "2026-08-01",
		EndTime:   "2026-08-31",
	})
	if err != nil {
		t.Fatalf("запрос статистики: %v", err)
	}

	if gotPath != "/sph/api/post_statistics" {
		t.Errorf("путь запроса: %q", gotPath)
	}
	if got := gotQuery["user_ids"]; len(got) != 1 || got[0] != "uid-1,uid-2" {
		t.Errorf("фильтр аккаунтов: %v", got)
	}
	if got := gotQuery["start_time"]; len(got) != 1 || got[0] != "2026-08-01" {
		t.Errorf("начало диапазона: %v", got)
	}
	if got := gotQuery["end_time"]; len(got) != 1 || got[0] != "2026-08-31" {
		t.Errorf("конец диапазона: %v", got)
	}

	if len(accounts) != 1 || accounts[0].Username != "мой аккаунт" {
		t.Fatalf("разбор данных: %+v", accounts)
	}
	if len(accounts[0].Videos) != 1 || accounts[0].Videos[0].ReadCount != 1234 {
		t.Fatalf("разбор видео: %+v", accounts[0].Videos)
	}
}

func TestFetchPostStatisticsEmptyParamsOmitted(t *testing.T) {
	var gotRawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"code": 200, "msg": "ok", "data": []}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).FetchPostStatistics(context.Background(), Params{}); err != nil {
		t.Fatalf("запрос без фильтров: %v", err)
	}
	if gotRawQuery != "" {
		t.Fatalf("пустые фильтры не должны попадать в запрос: %q", gotRawQuery)
	}
}

func TestFetchPostStatisticsEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 500, "msg": "scraper down", "data": []}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchPostStatistics(context.Background(), Params{})
	if err == nil {
		t.Fatalf("ненулевой код конверта должен давать ошибку")
	}
	if !strings.Contains(err.Error(), "scraper down") {
		t.Fatalf("ошибка должна нести сообщение источника: %v", err)
	}
}

func TestFetchPostStatisticsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).FetchPostStatistics(context.Background(), Params{}); err == nil {
		t.Fatalf("HTTP-ошибка источника должна возвращаться")
	}
}
