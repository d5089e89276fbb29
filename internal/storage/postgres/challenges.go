package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "streakbot/internal/errors"
	"streakbot/internal/models"
)

const challengeColumns = "id, chat_id, topic_id, title, total_days, start_date, status, reminders, created_at"

func (s *Store) AddChallenge(ch models.Challenge) error {
	remindersJSON, err := json.Marshal(ch.Reminders)
	if err != nil {
		return fmt.Errorf("failed to marshal reminders: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO challenges (`+challengeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ch.ID, ch.ChatID, ch.TopicID, ch.Title, ch.TotalDays,
		ch.StartDate, string(ch.Status), string(remindersJSON), ch.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.Conflictf("an active challenge already exists for topic %d", ch.TopicID)
	}
	return err
}

func (s *Store) GetChallenge(id string) (models.Challenge, error) {
	row := s.db.QueryRow(`SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
	ch, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return models.Challenge{}, apperrors.NotFoundf("challenge %s", id)
	}
	return ch, err
}

func (s *Store) FindActiveChallenge(chatID, topicID int64) (models.Challenge, error) {
	row := s.db.QueryRow(`
		SELECT `+challengeColumns+` FROM challenges
		WHERE chat_id = $1 AND topic_id = $2 AND status = $3`,
		chatID, topicID, string(models.ChallengeActive))
	ch, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return models.Challenge{}, apperrors.NotFoundf("no active challenge for topic %d", topicID)
	}
	return ch, err
}

func (s *Store) ListActiveChallenges(chatID int64) ([]models.Challenge, error) {
	rows, err := s.db.Query(`
		SELECT `+challengeColumns+` FROM challenges
		WHERE chat_id = $1 AND status = $2
		ORDER BY created_at DESC`,
		chatID, string(models.ChallengeActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChallenges(rows)
}

func (s *Store) ListRemindable() ([]models.Challenge, error) {
	rows, err := s.db.Query(`
		SELECT `+challengeColumns+` FROM challenges
		WHERE status = $1 AND reminders != '[]'::jsonb
		ORDER BY created_at`,
		string(models.ChallengeActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChallenges(rows)
}

func (s *Store) SetChallengeStatus(id string, status models.ChallengeStatus) error {
	result, err := s.db.Exec(`UPDATE challenges SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	return requireRow(result, "challenge %s", id)
}

func (s *Store) SetChallengeReminders(id string, reminders []models.Reminder) error {
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	remindersJSON, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("failed to marshal reminders: %w", err)
	}

	result, err := s.db.Exec(`UPDATE challenges SET reminders = $1 WHERE id = $2`, string(remindersJSON), id)
	if err != nil {
		return err
	}
	return requireRow(result, "challenge %s", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChallenge(row rowScanner) (models.Challenge, error) {
	var ch models.Challenge
	var status string
	var remindersJSON []byte

	err := row.Scan(&ch.ID, &ch.ChatID, &ch.TopicID, &ch.Title, &ch.TotalDays,
		&ch.StartDate, &status, &remindersJSON, &ch.CreatedAt)
	if err != nil {
		return models.Challenge{}, err
	}

	ch.Status = models.ChallengeStatus(status)
	if err := json.Unmarshal(remindersJSON, &ch.Reminders); err != nil {
		return models.Challenge{}, fmt.Errorf("failed to unmarshal reminders for challenge %s: %w", ch.ID, err)
	}

	return ch, nil
}

func collectChallenges(rows *sql.Rows) ([]models.Challenge, error) {
	var challenges []models.Challenge
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, ch)
	}
	return challenges, rows.Err()
}

func requireRow(result sql.Result, format string, args ...interface{}) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NotFoundf(format, args...)
	}
	return nil
}
