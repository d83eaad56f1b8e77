package sqlite

import (
	"context"
	"encoding/json"

	"github.com/flowency/kavostack/internal/backend/domain"
)

type activityLogsRepo struct {
	db dbtx
}

func (r *activityLogsRepo) Append(ctx context.Context, entry domain.ActivityLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, client_id, user_id, action, entity_type, entity_id, details)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ClientID,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		string(details),
	)
	return mapUnique(err)
}

func (r *activityLogsRepo) ListByClient(
	ctx context.Context,
	clientID string,
) ([]domain.ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, user_id, action, entity_type, entity_id, details, created_at
		 FROM activity_logs WHERE client_id = ? ORDER BY created_at DESC, id DESC`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActivityLog
	for rows.Next() {
		var entry domain.ActivityLog
		var details string
		err := rows.Scan(
			&entry.ID,
			&entry.ClientID,
			&entry.UserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
