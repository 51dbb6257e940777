package db

import (
	"context"
	"fmt"

	"blog/internal/models"
)

const postColumns = `id,author_id,title,subtitle,date,body,img_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (models.Post, error) {
	var p models.Post
	err := r.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL)
	return p, err
}

// ListPosts returns every post in storage order.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.query(ctx, `SELECT `+postColumns+` FROM blog_posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) PostByID(ctx context.Context, id int64) (models.Post, error) {
	p, err := scanPost(s.queryRow(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = ?`, id))
	return p, mapError(err)
}

func (s *Store) PostByTitle(ctx context.Context, title string) (models.Post, error) {
	p, err := scanPost(s.queryRow(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE title = ?`, title))
	return p, mapError(err)
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	id, err := s.insert(ctx, `INSERT INTO blog_posts(author_id,title,subtitle,date,body,img_url) VALUES(?,?,?,?,?,?)`,
		p.AuthorID, p.Title, p.Subtitle, p.Date, p.Body, p.ImgURL)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	p.ID = id
	return nil
}

// UpdatePost overwrites every editable column of p. The date is kept.
func (s *Store) UpdatePost(ctx context.Context, p models.Post) error {
	res, err := s.exec(ctx, `UPDATE blog_posts SET author_id=?, title=?, subtitle=?, body=?, img_url=? WHERE id=?`,
		p.AuthorID, p.Title, p.Subtitle, p.Body, p.ImgURL, p.ID)
	if err != nil {
		return fmt.Errorf("update post %d: %w", p.ID, err)
	}
	return affected(res)
}

// DeletePost removes the post and its comments in one transaction.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	return s.Tx(ctx, func(tx *Store) error {
		if _, err := tx.exec(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
			return fmt.Errorf("delete comments of post %d: %w", id, err)
		}
		res, err := tx.exec(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete post %d: %w", id, err)
		}
		return affected(res)
	})
}
