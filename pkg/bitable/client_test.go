package bitable

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAccessTokenCached(t *testing.T) {
	fs := newFakeStore(t)
	c := fs.client()

	tok1, err := c.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("первый обмен токена: %v", err)
	}
	tok2, err := c.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("повторный обмен токена: %v", err)
	}
	if tok1 != "test-token" || tok2 != "test-token" {
		t.Fatalf("неожиданные токены: %q %q", tok1, tok2)
	}
	if fs.tokenCalls != 1 {
		t.Fatalf("токен в пределах срока должен браться из кэша, обменов: %d", fs.tokenCalls)
	}
}

func TestAccessTokenRefreshedAfterMargin(t *testing.T) {
	fs := newFakeStore(t)
	c := fs.client()

	base := time.Now()
	c.now = func() time.Time { return base }
	if _, err := c.AccessToken(context.Background()); err != nil {
		t.Fatalf("первый обмен токена: %v", err)
	}

	// Срок 7200 c, запас 5 минут: за 4 минуты до истечения токен уже
	// считается протухшим и меняется заново.
	c.now = func() time.Time { return base.Add(7200*time.Second - 4*time.Minute) }
	if _, err := c.AccessToken(context.Background()); err != nil {
		t.Fatalf("обмен после запаса: %v", err)
	}
	if fs.tokenCalls != 2 {
		t.Fatalf("токен на границе запаса должен обновляться, обменов: %d", fs.tokenCalls)
	}
}

func TestAccessTokenAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"code": 99991661, "msg": "app secret invalid"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app-id", "плохой-секрет")
	_, err := c.AccessToken(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("ненулевой код обмена должен давать ошибку авторизации: %v", err)
	}
	if authErr.Code != 99991661 {
		t.Fatalf("код ошибки: %d", authErr.Code)
	}
}

func TestResolveAppTokenWikiNode(t *testing.T) {
	fs := newFakeStore(t)
	fs.wikiObjToken = "bascnREAL"
	c := fs.client()

	got, err := c.ResolveAppToken(context.Background(), "wikcnNODE")
	if err != nil {
		t.Fatalf("разрешение wiki-узла: %v", err)
	}
	if got != "bascnREAL" {
		t.Fatalf("должен вернуться obj_token узла, получено %q", got)
	}
}

func TestResolveAppTokenFallback(t *testing.T) {
	fs := newFakeStore(t)
	c := fs.client()

	// Узел не найден: исходный токен считается прямым токеном приложения.
	got, err := c.ResolveAppToken(context.Background(), "bascnDIRECT")
	if err != nil {
		t.Fatalf("откат к прямому токену: %v", err)
	}
	if got != "bascnDIRECT" {
		t.Fatalf("при отказе wiki должен возвращаться исходный токен, получено %q", got)
	}
}

func TestResolveAppTokenCached(t *testing.T) {
	fs := newFakeStore(t)
	fs.wikiObjToken = "bascnREAL"
	c := fs.client()

	if _, err := c.ResolveAppToken(context.Background(), "wikcnNODE"); err != nil {
		t.Fatalf("первое разрешение: %v", err)
	}
	fs.wikiObjToken = "" // Повторный запрос к wiki выдал бы откат
	got, err := c.ResolveAppToken(context.Background(), "wikcnNODE")
	if err != nil {
		t.Fatalf("повторное разрешение: %v", err)
	}
	if got != "bascnREAL" {
		t.Fatalf("повторное разрешение должно браться из кэша, получено %q", got)
	}
}
