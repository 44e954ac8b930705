package sqlite

import "github.com/falub/kazadigate/internal/storage/models"

// UpdateUsageDay upserts the per-owner daily traffic aggregate
func (s *Storage) UpdateUsageDay(usage *models.UsageDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO usage_daily (date, owner_id, request_count, error_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date, owner_id) DO UPDATE SET
			request_count = request_count + excluded.request_count,
			error_count = error_count + excluded.error_count
	`, usage.Date, usage.OwnerID, usage.RequestCount, usage.ErrorCount)

	return err
}

// GetUsageDays returns daily aggregates for one owner in [startDate, endDate]
func (s *Storage) GetUsageDays(ownerID, startDate, endDate string) ([]*models.UsageDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.Query(`
		SELECT date, owner_id, request_count, error_count
		FROM usage_daily
		WHERE owner_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, ownerID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []*models.UsageDay
	for rows.Next() {
		var d models.UsageDay
		if err := rows.Scan(&d.Date, &d.OwnerID, &d.RequestCount, &d.ErrorCount); err != nil {
			return nil, err
		}
		days = append(days, &d)
	}
	return days, rows.Err()
}
