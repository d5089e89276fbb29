package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "streakbot/internal/errors"
	"streakbot/internal/models"
)

const eventColumns = "id, challenge_id, chat_id, topic_id, user_id, type, day, note, meta, created_at"

func (s *Store) AddEvent(ev models.CheckinEvent) error {
	metaJSON, err := marshalMeta(ev.Meta)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO checkin_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.ID, ev.ChallengeID, ev.ChatID, ev.TopicID, ev.UserID,
		string(ev.Type), ev.Day, ev.Note, metaJSON, ev.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.Conflictf("day %d is already recorded for this challenge", ev.Day)
	}
	return err
}

func (s *Store) ListEvents(challengeID string) ([]models.CheckinEvent, error) {
	rows, err := s.db.Query(`
		SELECT `+eventColumns+` FROM checkin_events
		WHERE challenge_id = $1
		ORDER BY day`, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.CheckinEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) HasDoneEventSince(challengeID string, since time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT count(*) FROM checkin_events
		WHERE challenge_id = $1 AND type = $2 AND created_at >= $3`,
		challengeID, string(models.EventDone), since).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) MergeEventMeta(challengeID string, day int, meta map[string]models.AnswerValue) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id string
	var metaJSON []byte
	err = tx.QueryRow(`
		SELECT id, meta FROM checkin_events
		WHERE challenge_id = $1 AND day = $2 AND type = $3
		FOR UPDATE`,
		challengeID, day, string(models.EventDone)).Scan(&id, &metaJSON)
	if err == sql.ErrNoRows {
		// Session outlived its triggering mark; nothing to attach to.
		return nil
	}
	if err != nil {
		return err
	}

	merged := map[string]models.AnswerValue{}
	if err := json.Unmarshal(metaJSON, &merged); err != nil {
		return fmt.Errorf("failed to unmarshal meta for event %s: %w", id, err)
	}
	for k, v := range meta {
		merged[k] = v
	}

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	if _, err := tx.Exec(`UPDATE checkin_events SET meta = $1 WHERE id = $2`, string(mergedJSON), id); err != nil {
		return err
	}

	return tx.Commit()
}

func scanEvent(row rowScanner) (models.CheckinEvent, error) {
	var ev models.CheckinEvent
	var typ string
	var metaJSON []byte

	err := row.Scan(&ev.ID, &ev.ChallengeID, &ev.ChatID, &ev.TopicID, &ev.UserID,
		&typ, &ev.Day, &ev.Note, &metaJSON, &ev.CreatedAt)
	if err != nil {
		return models.CheckinEvent{}, err
	}

	ev.Type = models.EventType(typ)
	if err := json.Unmarshal(metaJSON, &ev.Meta); err != nil {
		return models.CheckinEvent{}, fmt.Errorf("failed to unmarshal meta for event %s: %w", ev.ID, err)
	}

	return ev, nil
}

func marshalMeta(meta map[string]models.AnswerValue) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal meta: %w", err)
	}
	return string(metaJSON), nil
}
