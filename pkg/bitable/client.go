package bitable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Запас до истечения токена: обновляем за пять минут до конца срока,
// чтобы не отправлять запросы с токеном на грани протухания.
const tokenSafetyMargin = 5 * time.Minute

// Client инкапсулирует доступ к многомерным таблицам: обмен учётных данных
// на токен, разрешение wiki-токенов и вызовы записей. Кэши токенов живут
// столько же, сколько сам клиент, и защищены мьютексом, так как обработчики
// gin выполняются в разных горутинах.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	appSecret  string

	// now подменяется в тестах, чтобы проверять истечение срока токена.
	now func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpire time.Time
	appTokens   map[string]string // wiki-токен -> разрешённый токен приложения
}

// NewClient создаёт клиента хранилища. baseURL — корень API без завершающего слэша.
func NewClient(baseURL, appID, appSecret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		appID:      appID,
		appSecret:  appSecret,
		now:        time.Now,
		appTokens:  make(map[string]string),
	}
}

// apiEnvelope — общая обёртка ответов API: ненулевой code означает отказ.
type apiEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// AccessToken возвращает действующий tenant-токен, при необходимости
// выполняя обмен учётных данных. Отказ обмена фатален для всего прогона.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.tokenExpire) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	body, err := json.Marshal(map[string]string{
		"app_id":     c.appID,
		"app_secret": c.appSecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/open-apis/auth/v3/tenant_access_token/internal", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		apiEnvelope
		Token  string `json:"tenant_access_token"`
		Expire int64  `json:"expire"` // Остаток срока действия в секундах
	}
	if err := c.do(req, &resp); err != nil {
		return "", &AuthError{Reason: err.Error()}
	}
	if resp.Code != 0 {
		return "", &AuthError{Code: resp.Code, Reason: resp.Msg}
	}

	c.mu.Lock()
	c.token = resp.Token
	c.tokenExpire = c.now().Add(time.Duration(resp.Expire)*time.Second - tokenSafetyMargin)
	c.mu.Unlock()
	return resp.Token, nil
}

// ResolveAppToken превращает возможный wiki-токен в токен приложения таблиц.
// Если узел wiki не найден или имеет другой тип, токен считается уже прямым.
// Результат кэшируется на всё время жизни клиента: расположение таблиц
// в рамках сессии не меняется.
func (c *Client) ResolveAppToken(ctx context.Context, rawToken string) (string, error) {
	c.mu.Lock()
	if resolved, ok := c.appTokens[rawToken]; ok {
		c.mu.Unlock()
		return resolved, nil
	}
	c.mu.Unlock()

	resolved := rawToken
	node, err := c.wikiNode(ctx, rawToken)
	switch {
	case err != nil:
		// Неудача разрешения не фатальна: используем исходный токен как прямой.
		log.Printf("[BITABLE WARN] Не удалось проверить wiki-токен %q, используем как прямой: %v", rawToken, err)
	case node.ObjType == "bitable" && node.ObjToken != "":
		resolved = node.ObjToken
	}

	c.mu.Lock()
	c.appTokens[rawToken] = resolved
	c.mu.Unlock()
	return resolved, nil
}

type wikiNodeInfo struct {
	ObjType  string `json:"obj_type"`
	ObjToken string `json:"obj_token"`
}

func (c *Client) wikiNode(ctx context.Context, token string) (*wikiNodeInfo, error) {
	accessToken, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/open-apis/wiki/v2/spaces/get_node?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp struct {
		apiEnvelope
		Data struct {
			Node wikiNodeInfo `json:"node"`
		} `json:"data"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, &APIError{Code: resp.Code, Msg: resp.Msg}
	}
	return &resp.Data.Node, nil
}

// do выполняет запрос и декодирует JSON-ответ в out.
// Транспортные ошибки возвращаются как есть, без попыток повтора.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("разбор ответа %s: %w", req.URL.Path, err)
	}
	return nil
}
