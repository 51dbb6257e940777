package db

import (
	"context"
	"time"
)

func (s *Store) CreateSession(ctx context.Context, id string, userID int64, expires time.Time) error {
	_, err := s.exec(ctx, `INSERT INTO sessions(id,user_id,expires_at) VALUES(?,?,?)`, id, userID, expires.Unix())
	return err
}

// SessionUser returns the user id of a live session.
func (s *Store) SessionUser(ctx context.Context, id string) (int64, time.Time, error) {
	var (
		uid int64
		exp int64
	)
	err := s.queryRow(ctx, `SELECT user_id, expires_at FROM sessions WHERE id = ?`, id).Scan(&uid, &exp)
	if err != nil {
		return 0, time.Time{}, mapError(err)
	}
	return uid, time.Unix(exp, 0), nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.exec(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := s.exec(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions that expired before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
