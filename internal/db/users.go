package db

import (
	"context"
	"fmt"
	"strings"

	"blog/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	id, err := s.insert(ctx, `INSERT INTO users(email,password,name) VALUES(?,?,?)`,
		u.Email, u.PasswordHash, u.Name)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	return s.scanUser(ctx, `SELECT id,email,password,name FROM users WHERE id = ?`, id)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(ctx, `SELECT id,email,password,name FROM users WHERE email = ?`, email)
}

func (s *Store) scanUser(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	err := s.queryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return u, nil
}

// UsersByID loads the given users keyed by id. Unknown ids are absent
// from the result.
func (s *Store) UsersByID(ctx context.Context, ids ...int64) (map[int64]models.User, error) {
	users := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	seen := make(map[int64]bool, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			args = append(args, id)
		}
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	rows, err := s.query(ctx, `SELECT id,email,password,name FROM users WHERE id IN (`+marks+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name); err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}
