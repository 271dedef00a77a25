package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	CreateProduct(ctx context.Context, in entity.ProductInput, images []entity.ImageUpload) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id int64, in entity.ProductInput, images []entity.ImageUpload) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type CouponService interface {
	ActiveCoupons(ctx context.Context) ([]entity.Coupon, error)
	ValidateCoupon(ctx context.Context, code string, orderTotal decimal.Decimal) (*entity.CouponValidation, error)
	ListCoupons(ctx context.Context) ([]entity.Coupon, error)
	CreateCoupon(ctx context.Context, c entity.Coupon) (*entity.Coupon, error)
	UpdateCoupon(ctx context.Context, id int64, c entity.Coupon) (*entity.Coupon, error)
	DeleteCoupon(ctx context.Context, id int64) error
}
