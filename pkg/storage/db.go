package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// DB — обёртка подключения к Postgres для истории прогонов.
// Сами видео живут во внешнем хранилище таблиц; здесь фиксируются
// только запуски синхронизации, поитоговые записи и снимки плана.
type DB struct {
	Conn *sql.DB
}

func NewDB(conn *sql.DB) *DB {
	return &DB{Conn: conn}
}
