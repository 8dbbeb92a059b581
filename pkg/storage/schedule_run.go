package storage

import (
	"sph_sync/models"
)

// CreateScheduleRun регистрирует расчёт плана публикаций.
func (db *DB) CreateScheduleRun(runID string, candidateCount int) error {
	_, err := db.Conn.Exec(
		"INSERT INTO schedule_runs (id, candidate_count) VALUES ($1, $2)",
		runID, candidateCount,
	)
	return err
}

// AddScheduleCandidates сохраняет снимок отобранных кандидатов.
// Позиция фиксирует место в отсортированном списке на момент расчёта.
func (db *DB) AddScheduleCandidates(runID string, candidates []models.ScheduleCandidate) error {
	query := `
               INSERT INTO schedule_candidates (run_id, position, record_id, video_id, description, read_count, publish_time, account, group_name, repeat_count, account_today_count)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
       `
	for i, cand := range candidates {
		_, err := db.Conn.Exec(query,
			runID, i, cand.RecordID, cand.VideoID, cand.Description,
			cand.ReadCount, cand.PublishTime, cand.Account, cand.GroupName,
			cand.RepeatCount, cand.AccountTodayCount,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
