package storage

import (
	"log"

	"sph_sync/models"
)

// CreateSyncRun регистрирует запуск синхронизации и возвращает запись
// с заполненным временем создания.
func (db *DB) CreateSyncRun(run models.SyncRun) (*models.SyncRun, error) {
	query := `
               INSERT INTO sync_runs (id, user_ids, start_time, end_time, status)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING created_at
       `
	err := db.Conn.QueryRow(query, run.ID, run.UserIDs, run.StartTime, run.EndTime, run.Status).Scan(&run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// AddSyncOutcome сохраняет итог обработки одного видео.
// Порядковый номер сохраняет порядок входного пакета при выборке истории.
func (db *DB) AddSyncOutcome(runID string, position int, account string, o models.SyncOutcome) error {
	query := `
               INSERT INTO sync_outcomes (run_id, position, account, video_name, status, message)
               VALUES ($1, $2, $3, $4, $5, $6)
       `
	_, err := db.Conn.Exec(query, runID, position, account, o.VideoName, o.Status, o.Message)
	return err
}

// FinishSyncRun записывает итоговые счётчики и статус завершения прогона.
func (db *DB) FinishSyncRun(runID string, status string, t models.SyncTotals) error {
	query := `
               UPDATE sync_runs
               SET status = $2, processed = $3, created = $4, updated = $5, skipped = $6, errors = $7, finished_at = NOW()
               WHERE id = $1
       `
	_, err := db.Conn.Exec(query, runID, status, t.Processed, t.Created, t.Updated, t.Skipped, t.Errors)
	return err
}

// GetSyncRun возвращает один прогон по идентификатору.
func (db *DB) GetSyncRun(runID string) (*models.SyncRun, error) {
	var run models.SyncRun
	query := `
               SELECT id, user_ids, start_time, end_time, status, processed, created, updated, skipped, errors, created_at
               FROM sync_runs
               WHERE id = $1
       `
	err := db.Conn.QueryRow(query, runID).Scan(
		&run.ID,
		&run.UserIDs,
		&run.StartTime,
		&run.EndTime,
		&run.Status,
		&run.Totals.Processed,
		&run.Totals.Created,
		&run.Totals.Updated,
		&run.Totals.Skipped,
		&run.Totals.Errors,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetSyncOutcomes возвращает поитоговые записи прогона в порядке обработки.
func (db *DB) GetSyncOutcomes(runID string) ([]models.SyncOutcome, error) {
	query := `
               SELECT video_name, status, message
               FROM sync_outcomes
               WHERE run_id = $1
               ORDER BY position
       `
	rows, err := db.Conn.Query(query, runID)
	if err != nil {
		log.Printf("[DB ERROR] Failed to get outcomes for run %s: %v", runID, err)
		return nil, err
	}
	defer rows.Close()

	var outcomes []models.SyncOutcome
	for rows.Next() {
		var o models.SyncOutcome
		if err := rows.Scan(&o.VideoName, &o.Status, &o.Message); err != nil {
			log.Printf("[DB WARN] Failed to scan outcome: %v", err)
			continue // Пропускаем проблемные записи
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
