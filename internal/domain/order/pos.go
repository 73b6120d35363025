package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshplate/storefront/internal/domain/delivery"
	"github.com/freshplate/storefront/internal/domain/pricing"
	"github.com/freshplate/storefront/internal/domain/user"
	"github.com/freshplate/storefront/pkg/phone"
)

// walkInName is the display name of the shared walk-in sentinel user.
const walkInName = "Walk-in Customer"

// POSCustomer identifies the customer for an in-store sale. All fields are
// optional; resolution falls back to the walk-in sentinel.
type POSCustomer struct {
	UserID string
	Phone  string
	Name   string
}

// POSSaleRequest holds the input for an in-store point-of-sale transaction.
type POSSaleRequest struct {
	Items         []ItemRequest
	Customer      POSCustomer
	PaymentMethod PaymentMethod
	PromoCodeID   string
}

// POSSaleResult is the receipt summary returned to the terminal.
type POSSaleResult struct {
	OrderID       string
	OrderNumber   string
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Timestamp     time.Time
}

// CreatePOSSale processes a walk-in sale: resolves the customer, then runs
// the same pricing/stock/promo core as online orders with pickup semantics.
// Only cash and card are accepted in store.
func (s *Service) CreatePOSSale(ctx context.Context, req POSSaleRequest) (*POSSaleResult, error) {
	if req.PaymentMethod != PaymentCash && req.PaymentMethod != PaymentCard {
		return nil, ErrInvalidPaymentMethod
	}

	userID, err := s.resolveCustomer(ctx, req.Customer)
	if err != nil {
		return nil, err
	}

	o, err := s.CreateOrder(ctx, CreateOrderRequest{
		UserID:        userID,
		Items:         req.Items,
		PromoCodeID:   req.PromoCodeID,
		DeliveryType:  delivery.TypePickup,
		PaymentMethod: req.PaymentMethod,
		Channel:       pricing.ChannelPOS,
	})
	if err != nil {
		return nil, err
	}

	return &POSSaleResult{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		Timestamp:     o.CreatedAt,
	}, nil
}

// resolveCustomer finds or creates the user a POS sale belongs to, in
// priority order: explicit user id, phone number (canonicalized, matched
// against known format variations), then the shared walk-in sentinel.
func (s *Service) resolveCustomer(ctx context.Context, c POSCustomer) (string, error) {
	if c.UserID != "" {
		u, err := s.users.GetByID(ctx, c.UserID)
		if err == nil {
			return u.ID, nil
		}
		if !errors.Is(err, user.ErrNotFound) {
			return "", errors.Wrap(err, "lookup customer")
		}
		// Stale id from the terminal; fall through to phone resolution.
	}

	if c.Phone != "" {
		return s.resolveByPhone(ctx, c)
	}

	return s.walkInID(ctx)
}

func (s *Service) resolveByPhone(ctx context.Context, c POSCustomer) (string, error) {
	canonical := phone.Format(c.Phone)

	u, err := s.users.FindByPhones(ctx, phone.Variations(c.Phone))
	switch {
	case err == nil:
		// Migrate legacy formats to the canonical one as we touch them.
		if u.Phone != canonical {
			if err := s.users.UpdatePhone(ctx, u.ID, canonical); err != nil {
				return "", errors.Wrap(err, "update customer phone")
			}
		}
		return u.ID, nil

	case errors.Is(err, user.ErrNotFound):
		nu := &user.User{ID: uuid.New().String(), Name: c.Name, Phone: canonical}
		if err := s.users.Create(ctx, nu); err != nil {
			return "", errors.Wrap(err, "create customer")
		}
		return nu.ID, nil

	default:
		return "", errors.Wrap(err, "find customer by phone")
	}
}

// walkInID returns the walk-in sentinel user, creating it on first use.
// A sale that cannot attach to any user is a configuration failure.
func (s *Service) walkInID(ctx context.Context) (string, error) {
	u, err := s.users.WalkIn(ctx)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return "", errors.Wrapf(ErrWalkInNotConfigured, "lookup: %v", err)
	}

	wu := &user.User{ID: uuid.New().String(), Name: walkInName, WalkIn: true}
	if err := s.users.CreateWalkIn(ctx, wu); err != nil {
		return "", errors.Wrapf(ErrWalkInNotConfigured, "create: %v", err)
	}
	return wu.ID, nil
}
