package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "streakbot/internal/errors"
	"streakbot/internal/models"
)

const sessionColumns = "id, challenge_id, chat_id, topic_id, user_id, day, step_index, answers, status, form_key, created_at, updated_at"

func (s *Store) AddSession(sess models.FormSession) error {
	answersJSON, err := marshalAnswers(sess.Answers)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO form_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.ChallengeID, sess.ChatID, sess.TopicID, sess.UserID,
		sess.Day, sess.StepIndex, answersJSON, string(sess.Status), sess.FormKey,
		sess.CreatedAt.UTC().Format(time.RFC3339), sess.UpdatedAt.UTC().Format(time.RFC3339))
	if isUniqueViolation(err) {
		return apperrors.Conflictf("an active form session already exists for day %d", sess.Day)
	}
	return err
}

func (s *Store) GetSession(id string) (models.FormSession, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM form_sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return models.FormSession{}, apperrors.NotFoundf("form session %s", id)
	}
	return sess, err
}

func (s *Store) FindActiveSession(chatID, topicID, userID int64) (models.FormSession, error) {
	row := s.db.QueryRow(`
		SELECT `+sessionColumns+` FROM form_sessions
		WHERE chat_id = ? AND topic_id = ? AND user_id = ? AND status = ?`,
		chatID, topicID, userID, string(models.SessionActive))
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return models.FormSession{}, apperrors.NotFoundf("no active form session")
	}
	return sess, err
}

func (s *Store) FindActiveSessionForDay(chatID, topicID, userID int64, day int) (models.FormSession, error) {
	row := s.db.QueryRow(`
		SELECT `+sessionColumns+` FROM form_sessions
		WHERE chat_id = ? AND topic_id = ? AND user_id = ? AND day = ? AND status = ?`,
		chatID, topicID, userID, day, string(models.SessionActive))
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return models.FormSession{}, apperrors.NotFoundf("no active form session for day %d", day)
	}
	return sess, err
}

func (s *Store) UpdateSession(sess models.FormSession) error {
	answersJSON, err := marshalAnswers(sess.Answers)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(`
		UPDATE form_sessions SET
			step_index = ?, answers = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		sess.StepIndex, answersJSON, string(sess.Status),
		sess.UpdatedAt.UTC().Format(time.RFC3339), sess.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "form session %s", sess.ID)
}

func scanSession(row rowScanner) (models.FormSession, error) {
	var sess models.FormSession
	var status, answersJSON, createdAt, updatedAt string

	err := row.Scan(&sess.ID, &sess.ChallengeID, &sess.ChatID, &sess.TopicID, &sess.UserID,
		&sess.Day, &sess.StepIndex, &answersJSON, &status, &sess.FormKey, &createdAt, &updatedAt)
	if err != nil {
		return models.FormSession{}, err
	}

	sess.Status = models.SessionStatus(status)
	if err := json.Unmarshal([]byte(answersJSON), &sess.Answers); err != nil {
		return models.FormSession{}, fmt.Errorf("failed to unmarshal answers for session %s: %w", sess.ID, err)
	}
	sess.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.FormSession{}, fmt.Errorf("failed to parse created_at for session %s: %w", sess.ID, err)
	}
	sess.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.FormSession{}, fmt.Errorf("failed to parse updated_at for session %s: %w", sess.ID, err)
	}

	return sess, nil
}

func marshalAnswers(answers map[string]models.AnswerValue) (string, error) {
	if answers == nil {
		return "{}", nil
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("failed to marshal answers: %w", err)
	}
	return string(answersJSON), nil
}
