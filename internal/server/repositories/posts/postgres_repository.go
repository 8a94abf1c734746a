// Package posts provides the PostgreSQL-backed board post store.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hicomm/internal/common"
	"github.com/dmitrijs2005/hicomm/internal/dbx"
	"github.com/dmitrijs2005/hicomm/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (board_id, title, content, author_id, is_notice)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, views, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		post.BoardID, post.Title, post.Content, post.AuthorID, post.IsNotice).
		Scan(&post.ID, &post.Views, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

// Get returns the post with its author's current nickname. A withdrawn
// author leaves AuthorID nil and AuthorNickname empty.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Post, error) {
	query := `
		SELECT p.id, p.board_id, p.title, p.content, p.author_id, u.nickname,
		       p.views, p.is_notice, p.created_at
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`
	var (
		post     models.Post
		authorID sql.NullInt64
		nickname sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.BoardID, &post.Title, &post.Content, &authorID, &nickname,
		&post.Views, &post.IsNotice, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if authorID.Valid {
		post.AuthorID = &authorID.Int64
	}
	post.AuthorNickname = nickname.String

	return &post, nil
}

func (r *PostgresRepository) List(ctx context.Context, boardID string, limit, offset int) ([]*models.Post, error) {
	query := `
		SELECT p.id, p.board_id, p.title, p.content, p.author_id, u.nickname,
		       p.views, p.is_notice, p.created_at,
		       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.board_id = $1
		ORDER BY p.is_notice DESC, p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, boardID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Post, 0, limit)
	for rows.Next() {
		var (
			post     models.Post
			authorID sql.NullInt64
			nickname sql.NullString
		)
		if err := rows.Scan(
			&post.ID, &post.BoardID, &post.Title, &post.Content, &authorID, &nickname,
			&post.Views, &post.IsNotice, &post.CreatedAt, &post.CommentCount); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if authorID.Valid {
			id := authorID.Int64
			post.AuthorID = &id
		}
		post.AuthorNickname = nickname.String
		result = append(result, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, boardID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE board_id = $1`, boardID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) FindAuthor(ctx context.Context, id int64) (*int64, error) {
	var authorID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT author_id FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&authorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !authorID.Valid {
		return nil, nil
	}
	return &authorID.Int64, nil
}

// Delete removes the post; its comments go with it.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) SetNotice(ctx context.Context, id int64, isNotice bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE posts SET is_notice = $2 WHERE id = $1`, id, isNotice)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
