package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshplate/storefront/internal/domain/delivery"
	"github.com/freshplate/storefront/internal/domain/pricing"
	"github.com/freshplate/storefront/internal/domain/product"
	"github.com/freshplate/storefront/internal/domain/promo"
	"github.com/freshplate/storefront/internal/domain/settings"
	"github.com/freshplate/storefront/internal/domain/user"
)

// ItemRequest is a requested line item. Price is the unit price the client
// was quoted; the orchestrator verifies it against the live price inside the
// transaction before committing.
type ItemRequest struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// CreateOrderRequest holds the input for placing an order.
type CreateOrderRequest struct {
	UserID        string
	AddressID     string
	Items         []ItemRequest
	PromoCodeID   string
	DeliveryDate  *time.Time
	DeliveryType  delivery.Type
	PaymentMethod PaymentMethod
	Channel       pricing.Channel
}

// Service is the order creation orchestrator.
type Service struct {
	store     Store
	users     user.Repository
	addresses user.AddressRepository
	settings  settings.Source
	promos    *promo.Validator
	now       func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(
	store Store,
	users user.Repository,
	addresses user.AddressRepository,
	src settings.Source,
	promos *promo.Validator,
) *Service {
	return &Service{
		store:     store,
		users:     users,
		addresses: addresses,
		settings:  src,
		promos:    promos,
		now:       time.Now,
	}
}

// CreateOrder validates the request, prices the cart, and persists the order
// atomically: stock and price are re-validated under row locks inside the
// transaction, the order number is allocated inside the same transaction,
// stock is decremented with a guarded relative update, and promo usage is
// recorded last. Any failure rolls back every effect.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	// Pre-transaction reads: the ordering user, charge policy, free-delivery
	// schedule, and the destination (or configured pickup) address.
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, errors.Wrap(err, "load user")
	}
	rows, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	cfg, err := settings.ParseChargeConfig(rows)
	if err != nil {
		return nil, err
	}
	sched, err := settings.ParseFreeDeliverySchedule(rows)
	if err != nil {
		return nil, err
	}

	addressID := req.AddressID
	city := ""
	if req.DeliveryType == delivery.TypeDelivery {
		addr, err := s.addresses.GetByID(ctx, req.AddressID)
		if err != nil {
			return nil, errors.Wrap(err, "load delivery address")
		}
		city = addr.City
		if !sched.Available(*req.DeliveryDate, city) {
			return nil, &DeliveryNotAvailableError{City: city, Date: *req.DeliveryDate}
		}
	} else {
		pickupID, err := settings.PickupAddressID(rows)
		if err != nil {
			return nil, err
		}
		if pickupID == "" {
			return nil, ErrPickupNotConfigured
		}
		addressID = pickupID
	}

	// Pricing: pure computation over the quoted prices. Price integrity
	// against the live catalog is enforced inside the transaction.
	subtotal := decimal.Zero
	for _, item := range req.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !subtotal.IsPositive() {
		return nil, ErrInvalidTotal
	}

	channel := req.Channel
	if channel == "" {
		channel = pricing.ChannelOnline
	}

	freeDelivery := false
	if req.DeliveryType == delivery.TypeDelivery {
		freeDelivery = sched.FreeEligible(*req.DeliveryDate, city, req.DeliveryType)
	}
	charges := pricing.CalculateCharges(subtotal, cfg, freeDelivery, req.DeliveryType, channel)

	discount := decimal.Zero
	promoID := ""
	if req.PromoCodeID != "" {
		result, err := s.promos.ValidateByID(ctx, req.PromoCodeID, subtotal)
		if err != nil {
			return nil, err
		}
		discount = result.Discount
		promoID = result.Promo.ID
	}

	totals := pricing.CalculateTotals(subtotal, charges, discount, cfg.TaxPercent.Percent)

	items := make([]Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = Item{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.Price}
	}

	now := s.now()
	o := &Order{
		ID:                uuid.New().String(),
		UserID:            req.UserID,
		AddressID:         addressID,
		Items:             items,
		Subtotal:          totals.Subtotal,
		TaxRate:           totals.TaxRate,
		Tax:               totals.Tax,
		ConvenienceCharge: totals.ConvenienceCharge,
		DeliveryCharge:    totals.DeliveryCharge,
		Discount:          totals.Discount,
		Total:             totals.Total,
		Status:            StatusPending,
		DeliveryType:      req.DeliveryType,
		PaymentMethod:     req.PaymentMethod,
		DeliveryDate:      req.DeliveryDate,
		PromoCodeID:       promoID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.store.WithinTx(ctx, func(tx Tx) error {
		names, err := s.revalidateItems(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		number, err := GenerateNumber(ctx, tx)
		if err != nil {
			return err
		}
		o.Number = number

		if err := tx.Insert(ctx, o); err != nil {
			return errors.Wrap(err, "insert order")
		}

		for _, item := range req.Items {
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, ErrStockConflict) {
					return &InsufficientStockError{
						ProductID: item.ProductID,
						Name:      names[item.ProductID],
						Requested: item.Quantity,
					}
				}
				return errors.Wrapf(err, "decrement stock for %s", item.ProductID)
			}
		}

		if promoID != "" && discount.IsPositive() {
			if err := tx.IncrementPromoUses(ctx, promoID); err != nil {
				if errors.Is(err, promo.ErrUsageExhausted) {
					return &promo.InvalidError{Code: req.PromoCodeID, Reason: promo.ReasonUsageLimit}
				}
				return errors.Wrap(err, "record promo usage")
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return o, nil
}

// revalidateItems re-checks every line item under row locks: the product must
// still be sellable, have sufficient stock, and its live price must match the
// quoted price. This is the only race-condition-safe validation; any earlier
// pre-check is advisory. Returns product names keyed by ID for error detail.
func (s *Service) revalidateItems(ctx context.Context, tx Tx, items []ItemRequest) (map[string]string, error) {
	names := make(map[string]string, len(items))
	for _, item := range items {
		p, err := tx.ProductForUpdate(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &ProductUnavailableError{ProductID: item.ProductID}
			}
			return nil, errors.Wrapf(err, "load product %s", item.ProductID)
		}
		if !p.Sellable() {
			return nil, &ProductUnavailableError{ProductID: item.ProductID}
		}
		if p.Stock < item.Quantity {
			return nil, &InsufficientStockError{
				ProductID: item.ProductID,
				Name:      p.Name,
				Requested: item.Quantity,
				Available: p.Stock,
			}
		}
		if !p.Price.Equal(item.Price) {
			return nil, &PriceMismatchError{ProductID: item.ProductID, Quoted: item.Price, Live: p.Price}
		}
		names[item.ProductID] = p.Name
	}
	return names, nil
}

// validate performs the cheap, non-IO input checks.
func (s *Service) validate(req CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return &InvalidQuantityError{ProductID: item.ProductID}
		}
	}
	if !req.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if !req.DeliveryType.Valid() {
		return ErrInvalidDeliveryType
	}
	if req.DeliveryType == delivery.TypeDelivery {
		if req.DeliveryDate == nil {
			return ErrDeliveryDateRequired
		}
		// Day-granularity comparison in the caller's local time.
		today := dayOf(s.now())
		if dayOf(*req.DeliveryDate).Before(today) {
			return ErrDeliveryDateInPast
		}
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
