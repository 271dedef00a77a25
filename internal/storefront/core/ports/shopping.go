package ports

import (
	"context"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// CartService operates on the cart of the user whose token is in ctx.
type CartService interface {
	GetCart(ctx context.Context) (*entity.Cart, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (*entity.Cart, error)
	RemoveFromCart(ctx context.Context, productID int64) (*entity.Cart, error)
	ClearCart(ctx context.Context) error
}

type OrderService interface {
	PlaceOrder(ctx context.Context, req entity.PlaceOrderRequest) (*entity.Order, error)
	ListOrders(ctx context.Context) ([]entity.Order, error)
	GetOrder(ctx context.Context, id int64) (*entity.Order, error)
	ListAllOrders(ctx context.Context) ([]entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status entity.OrderStatus) (*entity.Order, error)
}

type PaymentService interface {
	ProcessPayment(ctx context.Context, req entity.PaymentRequest) (*entity.Payment, error)
	SavedMethods(ctx context.Context) ([]entity.SavedPaymentMethod, error)
	SaveMethod(ctx context.Context, m entity.SavedPaymentMethod) (*entity.SavedPaymentMethod, error)
	UpdateMethod(ctx context.Context, id int64, m entity.SavedPaymentMethod) (*entity.SavedPaymentMethod, error)
	DeleteMethod(ctx context.Context, id int64) error
}

type AccountService interface {
	Register(ctx context.Context, reg entity.Registration) (*entity.AuthResult, error)
	Login(ctx context.Context, cred entity.Credentials) (*entity.AuthResult, error)
	Profile(ctx context.Context) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, p entity.Profile) (*entity.Profile, error)
	Addresses(ctx context.Context) ([]entity.Address, error)
	AddAddress(ctx context.Context, a entity.Address) (*entity.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
}

// SessionStore persists sessions between requests. Get returns (nil, nil)
// for an unknown or expired id and an error wrapping ErrCorruptSession for an
// entry it cannot decode.
type SessionStore interface {
	Get(ctx context.Context, id string) (*entity.Session, error)
	Save(ctx context.Context, s *entity.Session) error
	Delete(ctx context.Context, id string) error
	// Lock takes the session's exclusive lock for at most ttl and reports
	// false when another request holds it.
	Lock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, id string) error
}
