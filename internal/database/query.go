package database

import (
	"database/sql"
	"time"
)

const selectRemovals = `
	SELECT id, timestamp, action, root, path, object_type, error_message, created_at
	FROM removals
`

// GetRecent returns the N most recent removal events
func (d *RemovalDB) GetRecent(limit int) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetByAction returns events filtered by action type
func (d *RemovalDB) GetByAction(action string, limit int) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, action, limit)
}

// GetByRoot returns events recorded while removing the given root
func (d *RemovalDB) GetByRoot(root string, limit int) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	WHERE root = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, root, limit)
}

// GetByDateRange returns events within a time range
func (d *RemovalDB) GetByDateRange(start, end time.Time) ([]RemovalRecord, error) {
	return d.queryRemovals(selectRemovals+`
	WHERE timestamp BETWEEN ? AND ?
	ORDER BY timestamp DESC, id DESC
	`, start, end)
}

// GetCountByAction returns count of events grouped by action
func (d *RemovalDB) GetCountByAction(since time.Time) (map[string]int, error) {
	rows, err := d.db.Query(`
	SELECT action, COUNT(*)
	FROM removals
	WHERE timestamp >= ?
	GROUP BY action
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// RemovalStats holds aggregated statistics
type RemovalStats struct {
	TotalRemoved int
	TotalErrors  int
	TotalSkipped int
	TotalDryRun  int
	Roots        int
	ByAction     map[string]int
	StartDate    time.Time
	EndDate      time.Time
}

// GetStats returns statistics for the last N days
func (d *RemovalDB) GetStats(days int) (*RemovalStats, error) {
	now := d.now()
	since := now.AddDate(0, 0, -days)

	stats := &RemovalStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'DRY_RUN' THEN 1 END),
			COUNT(DISTINCT root)
		FROM removals
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalRemoved, &stats.TotalErrors, &stats.TotalSkipped, &stats.TotalDryRun, &stats.Roots)
	if err != nil {
		return nil, err
	}

	stats.ByAction, err = d.GetCountByAction(since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than specified days
func (d *RemovalDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := d.now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM removals WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (d *RemovalDB) queryRemovals(query string, args ...interface{}) ([]RemovalRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RemovalRecord
	for rows.Next() {
		var r RemovalRecord
		var errMsg sql.NullString
		var created sql.NullTime

		if err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Root, &r.Path,
			&r.ObjectType, &errMsg, &created,
		); err != nil {
			return nil, err
		}

		if errMsg.Valid {
			r.ErrorMessage = errMsg.String
		}
		if created.Valid {
			r.CreatedAt = created.Time
		}

		records = append(records, r)
	}

	return records, rows.Err()
}
