package db

import "pocketcasts-mirror/internal/models"

// ResetProgress creates or resets the progress row for a sync run.
func ResetProgress(runID string, total int) error {
	_, err := DB.Exec(`
		INSERT INTO sync_progress (run_id, total, completed)
		VALUES ($1, $2, 0)
		ON CONFLICT (run_id) DO UPDATE SET total = EXCLUDED.total, completed = 0`,
		runID, total)
	return err
}

// IncrementProgress bumps a run's completed counter and returns the new
// value together with the expected total. The increment and read happen in
// one statement so two workers finishing at the same instant cannot both
// observe the final count.
func IncrementProgress(runID string) (completed, total int, err error) {
	row := DB.QueryRow(`
		UPDATE sync_progress
		SET completed = completed + 1
		WHERE run_id = $1
		RETURNING completed, total`,
		runID)
	err = row.Scan(&completed, &total)
	return completed, total, err
}

// GetProgress reads a run's progress row.
func GetProgress(runID string) (models.SyncProgress, error) {
	var p models.SyncProgress
	err := DB.Get(&p, "SELECT * FROM sync_progress WHERE run_id = $1", runID)
	return p, err
}
