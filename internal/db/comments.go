package db

import (
	"context"
	"fmt"

	"blog/internal/models"
)

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	id, err := s.insert(ctx, `INSERT INTO comments(text,author_id,post_id) VALUES(?,?,?)`,
		c.Text, c.AuthorID, c.PostID)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	c.ID = id
	return nil
}

// CommentsForPost returns the comments of a post, oldest first.
func (s *Store) CommentsForPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.query(ctx, `SELECT id,text,author_id,post_id FROM comments WHERE post_id = ? ORDER BY id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.PostID); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
