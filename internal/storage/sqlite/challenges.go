package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.ChatID, ch.TopicID, ch.Title, ch.TotalDays,
		ch.StartDate.UTC().Format(time.RFC3339), string(ch.Status), string(remindersJSON),
		ch.CreatedAt.UTC().Format(time.RFC3339))
	if isUniqueViolation(err) {
		return apperrors.Conflictf("an active challenge already exists for topic %d", ch.TopicID)
	}
	return err
}

func (s *Store) GetChallenge(id string) (models.Challenge, error) {
	row := s.db.QueryRow(`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id)
	ch, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return models.Challenge{}, apperrors.NotFoundf("challenge %s", id)
	}
	return ch, err
}

func (s *Store) FindActiveChallenge(chatID, topicID int64) (models.Challenge, error) {
	row := s.db.QueryRow(`
		SELECT `+challengeColumns+` FROM challenges
		WHERE chat_id = ? AND topic_id = ? AND status = ?`,
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
		WHERE chat_id = ? AND status = ?
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
		WHERE status = ? AND reminders != '[]'
		ORDER BY created_at`,
		string(models.ChallengeActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChallenges(rows)
}

func (s *Store) SetChallengeStatus(id string, status models.ChallengeStatus) error {
	result, err := s.db.Exec(`UPDATE challenges SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return requireRow(result, "challenge %s", id)
}

func (s *Store) SetChallengeReminders(id string, reminders []models.Reminder) error {
	remindersJSON, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("failed to marshal reminders: %w", err)
	}
	if reminders == nil {
		remindersJSON = []byte("[]")
	}

	result, err := s.db.Exec(`UPDATE challenges SET reminders = ? WHERE id = ?`, string(remindersJSON), id)
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
	var status, remindersJSON, startDate, createdAt string

	err := row.Scan(&ch.ID, &ch.ChatID, &ch.TopicID, &ch.Title, &ch.TotalDays,
		&startDate, &status, &remindersJSON, &createdAt)
	if err != nil {
		return models.Challenge{}, err
	}

	ch.Status = models.ChallengeStatus(status)
	if err := json.Unmarshal([]byte(remindersJSON), &ch.Reminders); err != nil {
		return models.Challenge{}, fmt.Errorf("failed to unmarshal reminders for challenge %s: %w", ch.ID, err)
	}
	ch.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return models.Challenge{}, fmt.Errorf("failed to parse start_date for challenge %s: %w", ch.ID, err)
	}
	ch.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Challenge{}, fmt.Errorf("failed to parse created_at for challenge %s: %w", ch.ID, err)
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
