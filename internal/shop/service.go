package shop

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/miniapp-storefront/pkg/config"
	"github.com/angelmondragon/miniapp-storefront/pkg/db"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes the storefront's catalog, checkout and assistant operations.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListProducts(ctx context.Context, categoryID string) ([]ProductDTO, error)
	CreateCheckout(ctx context.Context, input CheckoutInput) (*CheckoutResultDTO, error)
	Reply(ctx context.Context, message string) (string, error)
}

// CategoryDTO is the wire shape of a catalog category.
type CategoryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// ProductDTO is the wire shape of a catalog product.
type ProductDTO struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image,omitempty"`
	CategoryID string          `json:"category_id"`
}

// CheckoutItemInput is one cart line submitted for checkout.
type CheckoutItemInput struct {
	ProductID string
	Quantity  int
}

// CheckoutInput holds the validated checkout payload.
type CheckoutInput struct {
	Items  []CheckoutItemInput
	UserID string
}

// CheckoutResultDTO is the wire shape of a created checkout session.
type CheckoutResultDTO struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

type service struct {
	dbClient    *db.Client
	paymentsCfg config.PaymentsConfig
	logg        *logger.Logger
}

// NewService wires the shop service.
func NewService(dbClient *db.Client, paymentsCfg config.PaymentsConfig, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db client is required")
	}
	return &service{dbClient: dbClient, paymentsCfg: paymentsCfg, logg: logg}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	var categories []Category
	if err := s.dbClient.DB().WithContext(ctx).
		Order("position asc").
		Find(&categories).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryDTO{ID: c.ID, Name: c.Name, Image: c.Image})
	}
	return dtos, nil
}

func (s *service) ListProducts(ctx context.Context, categoryID string) ([]ProductDTO, error) {
	query := s.dbClient.DB().WithContext(ctx).Order("position asc")
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var products []Product
	if err := query.Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, ProductDTO{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Image:      p.Image,
			CategoryID: p.CategoryID,
		})
	}
	return dtos, nil
}

// CreateCheckout prices the submitted lines against the catalog, persists the
// order with its item snapshots and returns the payment URL. Quantities and
// product IDs are validated; unit prices are never taken from the client.
func (s *service) CreateCheckout(ctx context.Context, input CheckoutInput) (*CheckoutResultDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout item is missing a product id")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout item quantity must be at least 1")
		}
	}

	orderID := uuid.New()
	order := Order{
		ID:     orderID,
		UserID: input.UserID,
		Status: OrderStatusPending,
		Total:  decimal.Zero,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		for _, item := range input.Items {
			var product Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "unknown product "+item.ProductID)
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
			}

			order.Items = append(order.Items, OrderItem{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  item.Quantity,
			})
			order.Total = order.Total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(ctx, "checkout created")
	}

	return &CheckoutResultDTO{
		OrderID:    orderID.String(),
		PaymentURL: s.paymentsCfg.BaseURL + "/" + orderID.String(),
	}, nil
}
