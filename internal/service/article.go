package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/flicky/homeclick-store/internal/dto"
	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/repository"
)

type ArticleService struct {
	articleRepo repository.ArticleRepository
}

func NewArticleService(articleRepo repository.ArticleRepository) *ArticleService {
	return &ArticleService{articleRepo: articleRepo}
}

// Create publishes an article. Only admins may post.
func (s *ArticleService) Create(ctx context.Context, id identity.Identity, req dto.CreateArticleRequest) (*dto.ArticleResponse, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	article := &model.Article{
		Name:    strings.TrimSpace(req.Name),
		Content: strings.TrimSpace(req.Content),
		Image:   strings.TrimSpace(req.Image),
	}
	if req.DateUp != nil {
		article.DateUp = *req.DateUp
	}

	fields := make(map[string]string)
	if article.Name == "" {
		fields["name"] = "this field is required"
	}
	if article.Content == "" {
		fields["content"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	resp := toArticleResponse(article)
	return &resp, nil
}

func (s *ArticleService) List(ctx context.Context, req dto.ListArticlesRequest) (*dto.ArticleListResponse, error) {
	offset := (req.Page - 1) * req.Limit
	articles, total, err := s.articleRepo.List(ctx, req.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	items := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		items = append(items, toArticleResponse(&articles[i]))
	}
	return &dto.ArticleListResponse{Articles: items, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

func toArticleResponse(a *model.Article) dto.ArticleResponse {
	return dto.ArticleResponse{ID: a.ID, Name: a.Name, Image: a.Image, Content: a.Content, DateUp: a.DateUp}
}
