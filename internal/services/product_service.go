package services

import (
	"context"

	"github.com/YoshikiFujii/FLcasher/internal/model"
	"github.com/YoshikiFujii/FLcasher/internal/repository"
)

type ProductService struct {
	Repo *repository.ProductRepository
}

func NewProductService(r *repository.ProductRepository) *ProductService {
	return &ProductService{Repo: r}
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.Repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, p *model.Product) (int64, error) {
	return s.Repo.Create(ctx, p)
}

func (s *ProductService) Update(ctx context.Context, p *model.Product) error {
	return s.Repo.Update(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}
