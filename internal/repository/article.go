package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/model"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	// List returns the newest articles first.
	List(ctx context.Context, limit, offset int) ([]model.Article, int, error)
}

type pgArticleRepo struct{ db DBTX }

func NewArticleRepository(db DBTX) ArticleRepository {
	return &pgArticleRepo{db: db}
}

func (r *pgArticleRepo) Create(ctx context.Context, a *model.Article) error {
	a.ID = uuid.New()
	var dateUp *time.Time
	if !a.DateUp.IsZero() {
		dateUp = &a.DateUp
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO articles (id, name, image, content, date_up, created_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), NOW()) RETURNING date_up, created_at`,
		a.ID, a.Name, a.Image, a.Content, dateUp,
	).Scan(&a.DateUp, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

func (r *pgArticleRepo) List(ctx context.Context, limit, offset int) ([]model.Article, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name, image, content, date_up, created_at
		 FROM articles ORDER BY date_up DESC, created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Name, &a.Image, &a.Content, &a.DateUp, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, total, rows.Err()
}
