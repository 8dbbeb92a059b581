package bitable

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// testserver_test.go содержит имитацию API хранилища для тестов пакета:
// обмен токена, разрешение wiki-узлов, список/создание/обновление записей.

type storedRecord struct {
	id     string
	fields map[string]any
}

type fakeStore struct {
	t *testing.T

	mu      sync.Mutex
	records []storedRecord
	nextID  int

	// knownFields ограничивает допустимые имена колонок; обращение к
	// неизвестному имени возвращает отказ FieldNameNotFound с этим именем.
	// Пустая карта отключает проверку.
	knownFields map[string]bool

	pageSize int // Размер страницы списка; 0 — вся таблица одной страницей

	tokenCalls  int
	listCalls   int
	createCalls int
	updateCalls int

	inFlight    int
	maxInFlight int
	createSeen  []string // Описания в порядке поступления запросов создания

	lastUpdateID     string
	lastUpdateFields map[string]any

	createFailMsg string // Если задано, создание отвечает этим отказом
	updateFailMsg string // Если задано, обновление отвечает этим отказом

	wikiObjToken string // Если задано, get_node возвращает узел типа bitable

	srv *httptest.Server
}

var filterPattern = regexp.MustCompile(`^CurrentValue\.\[(.+)\]="(.*)"$`)

func newFakeStore(t *testing.T) *fakeStore {
	fs := &fakeStore{t: t, knownFields: map[string]bool{}}
	mux := http.NewServeMux()

	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.tokenCalls++
		fs.mu.Unlock()
		writeJSON(w, map[string]any{
			"code": 0, "msg": "success",
			"tenant_access_token": "test-token",
			"expire":              7200,
		})
	})

	mux.HandleFunc("/open-apis/wiki/v2/spaces/get_node", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		objToken := fs.wikiObjToken
		fs.mu.Unlock()
		if objToken == "" {
			writeJSON(w, map[string]any{"code": 131006, "msg": "node not found"})
			return
		}
		writeJSON(w, map[string]any{
			"code": 0, "msg": "success",
			"data": map[string]any{
				"node": map[string]any{"obj_type": "bitable", "obj_token": objToken},
			},
		})
	})

	mux.HandleFunc("/open-apis/bitable/v1/apps/", fs.handleRecords)

	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.srv.Close)
	return fs
}

// client возвращает клиента, направленного на имитацию.
func (fs *fakeStore) client() *Client {
	return NewClient(fs.srv.URL, "app-id", "app-secret")
}

func (fs *fakeStore) add(fields map[string]any) string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.nextID++
	id := fmt.Sprintf("rec%d", fs.nextID)
	fs.records = append(fs.records, storedRecord{id: id, fields: fields})
	return id
}

// unknownField возвращает первое имя, отсутствующее среди допустимых колонок.
func (fs *fakeStore) unknownField(names []string) string {
	if len(fs.knownFields) == 0 {
		return ""
	}
	for _, name := range names {
		if !fs.knownFields[name] {
			return name
		}
	}
	return ""
}

func (fs *fakeStore) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer test-token" {
		writeJSON(w, map[string]any{"code": 99991663, "msg": "invalid token"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		fs.handleList(w, r)
	case http.MethodPost:
		fs.handleCreate(w, r)
	case http.MethodPut:
		fs.handleUpdate(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (fs *fakeStore) handleList(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.listCalls++

	var names []string
	if raw := r.URL.Query().Get("field_names"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			writeJSON(w, map[string]any{"code": 1254001, "msg": "bad field_names"})
			return
		}
	}
	if name := fs.unknownField(names); name != "" {
		writeJSON(w, map[string]any{"code": 1254045, "msg": "FieldNameNotFound: " + name})
		return
	}

	matched := fs.records
	if filter := r.URL.Query().Get("filter"); filter != "" {
		parts := filterPattern.FindStringSubmatch(filter)
		if parts == nil {
			writeJSON(w, map[string]any{"code": 1254001, "msg": "bad filter"})
			return
		}
		if name := fs.unknownField([]string{parts[1]}); name != "" {
			writeJSON(w, map[string]any{"code": 1254045, "msg": "FieldNameNotFound: " + name})
			return
		}
		matched = nil
		for _, rec := range fs.records {
			if val, _ := rec.fields[parts[1]].(string); val == parts[2] {
				matched = append(matched, rec)
			}
		}
	}

	start := 0
	if token := r.URL.Query().Get("page_token"); token != "" {
		start, _ = strconv.Atoi(token)
	}
	end := len(matched)
	if fs.pageSize > 0 && start+fs.pageSize < end {
		end = start + fs.pageSize
	}

	items := make([]map[string]any, 0, end-start)
	for _, rec := range matched[start:end] {
		fields := rec.fields
		if len(names) > 0 {
			fields = make(map[string]any, len(names))
			for _, name := range names {
				if val, ok := rec.fields[name]; ok {
					fields[name] = val
				}
			}
		}
		items = append(items, map[string]any{"record_id": rec.id, "fields": fields})
	}

	data := map[string]any{"items": items, "has_more": end < len(matched)}
	if end < len(matched) {
		data["page_token"] = strconv.Itoa(end)
	}
	writeJSON(w, map[string]any{"code": 0, "msg": "success", "data": data})
}

func (fs *fakeStore) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, map[string]any{"code": 1254001, "msg": "bad body"})
		return
	}

	fs.mu.Lock()
	fs.createCalls++
	fs.inFlight++
	if fs.inFlight > fs.maxInFlight {
		fs.maxInFlight = fs.inFlight
	}
	desc, _ := body.Fields[FieldDescription].(string)
	fs.createSeen = append(fs.createSeen, desc)
	failMsg := fs.createFailMsg
	fs.mu.Unlock()

	// Небольшая задержка удерживает запросы волны в полёте одновременно,
	// чтобы тесты могли наблюдать фактическую ширину волны.
	time.Sleep(10 * time.Millisecond)

	fs.mu.Lock()
	fs.inFlight--
	fs.mu.Unlock()

	if failMsg != "" {
		writeJSON(w, map[string]any{"code": 1254064, "msg": failMsg})
		return
	}
	if name := fs.unknownField(fieldNames(body.Fields)); name != "" {
		writeJSON(w, map[string]any{"code": 1254045, "msg": "FieldNameNotFound: " + name})
		return
	}

	id := fs.add(body.Fields)
	writeJSON(w, map[string]any{
		"code": 0, "msg": "success",
		"data": map[string]any{"record": map[string]any{"record_id": id}},
	})
}

func (fs *fakeStore) handleUpdate(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	recordID := parts[len(parts)-1]

	var body struct {
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, map[string]any{"code": 1254001, "msg": "bad body"})
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.updateCalls++
	fs.lastUpdateID = recordID
	fs.lastUpdateFields = body.Fields

	if fs.updateFailMsg != "" {
		writeJSON(w, map[string]any{"code": 1254064, "msg": fs.updateFailMsg})
		return
	}

	for i, rec := range fs.records {
		if rec.id != recordID {
			continue
		}
		for k, v := range body.Fields {
			fs.records[i].fields[k] = v
		}
		writeJSON(w, map[string]any{"code": 0, "msg": "success"})
		return
	}
	writeJSON(w, map[string]any{"code": 1254043, "msg": "RecordIdNotFound"})
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
