package bitable

import (
	"errors"
	"fmt"
	"strings"
)

// APIError — отказ API хранилища с ненулевым кодом.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bitable: код %d: %s", e.Code, e.Msg)
}

// AuthError — отказ обмена учётных данных на токен.
// В отличие от ошибок отдельных записей прерывает весь прогон.
type AuthError struct {
	Code   int
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("bitable: получение токена: код %d: %s", e.Code, e.Reason)
}

// Маркеры известных отказов в сообщениях API хранилища.
const (
	msgFieldNameNotFound = "FieldNameNotFound"
	msgDatetimeConvFail  = "DatetimeFieldConvFail"
	msgNumberConvFail    = "NumberFieldConvFail"
)

// IsFieldNameError сообщает, отверг ли API запрос из-за неизвестного имени поля.
// Именно этот класс ошибок разрешается повтором с запасным именем поля.
func IsFieldNameError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Msg, msgFieldNameNotFound)
}

// isFieldNameErrorFor уточняет IsFieldNameError: отказ должен называть
// именно пробовавшееся имя. Отказ по чужому полю повтором с запасным
// именем не лечится и возвращается вызывающему сразу.
func isFieldNameErrorFor(err error, field string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		strings.Contains(apiErr.Msg, msgFieldNameNotFound) &&
		strings.Contains(apiErr.Msg, field)
}

// RewriteStoreError переводит типовые отказы хранилища в понятные сообщения
// для журнала прогона. Неопознанные ошибки возвращаются дословно.
func RewriteStoreError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, msgFieldNameNotFound):
		return "字段名不匹配，请检查多维表格列名是否正确 (如: 内容描述, 账号, 完播率等)"
	case strings.Contains(msg, msgDatetimeConvFail):
		return "日期格式转换失败，请检查“发布时间”列是否为日期类型"
	case strings.Contains(msg, msgNumberConvFail):
		return "数字格式转换失败，请检查数值列 (如: 完播率, 平均播放时长) 类型是否匹配"
	default:
		return msg
	}
}
