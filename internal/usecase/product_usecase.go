package usecase

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
)

// ProductUsecase は公開カタログと管理側の商品登録。
type ProductUsecase struct {
	products repository.ProductRepository
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewProductUsecase(products repository.ProductRepository, idGen IDGenerator, clock Clock) *ProductUsecase {
	return &ProductUsecase{products: products, idGen: idGen, clock: clock}
}

type ProductOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
}

type ProductListOutput struct {
	Products []ProductOutput `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

// 公開一覧
func (u *ProductUsecase) List(ctx context.Context, page, limit int, category string) (ProductListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := u.products.ListPublic(ctx, repository.ProductListQuery{
		Page:     page,
		Limit:    limit,
		Category: category,
	})
	if err != nil {
		return ProductListOutput{}, err
	}

	out := ProductListOutput{
		Products: make([]ProductOutput, 0, len(items)),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	for _, p := range items {
		out.Products = append(out.Products, toProductOutput(p))
	}
	return out, nil
}

// 1件取得。非公開は存在しない扱い。
func (u *ProductUsecase) Get(ctx context.Context, id string) (ProductOutput, error) {
	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ProductOutput{}, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return ProductOutput{}, err
	}
	if !p.IsActive {
		return ProductOutput{}, &NotFoundError{Resource: "product", ID: id}
	}
	return toProductOutput(p), nil
}

type CreateProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	IsActive    bool     `json:"is_active"`
}

// 管理側の商品登録
func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (ProductOutput, error) {
	fields := []string{}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name")
	}
	if in.Price <= 0 {
		fields = append(fields, "price")
	}
	if len(in.Sizes) == 0 {
		fields = append(fields, "sizes")
	}
	if len(fields) > 0 {
		return ProductOutput{}, &ValidationError{Fields: fields}
	}

	now := u.clock.Now()
	p := model.Product{
		ID:          u.idGen.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Sizes:       strings.Join(in.Sizes, ","),
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return ProductOutput{}, err
	}
	return toProductOutput(created), nil
}

// 管理側の商品削除（論理削除）
func (u *ProductUsecase) Delete(ctx context.Context, id string) error {
	if _, err := u.products.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: id}
		}
		return err
	}
	return u.products.SoftDelete(ctx, id)
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Sizes:       p.SizeList(),
	}
}
