package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshplate/storefront/internal/domain/user"
)

func posRequest(items ...ItemRequest) POSSaleRequest {
	return POSSaleRequest{
		Items:         items,
		PaymentMethod: PaymentCash,
	}
}

func TestCreatePOSSale_OnlinePaymentRejected(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))

	req := posRequest(ItemRequest{ProductID: "p1", Quantity: 1, Price: dec("12.99")})
	req.PaymentMethod = PaymentOnline

	_, err := f.svc.CreatePOSSale(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestCreatePOSSale_PickupSemantics(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))
	f.users.walkIn = &user.User{ID: "walkin-1", Name: "Walk-in Customer", WalkIn: true}
	f.users.byID["walkin-1"] = f.users.walkIn

	res, err := f.svc.CreatePOSSale(context.Background(),
		posRequest(ItemRequest{ProductID: "p1", Quantity: 2, Price: dec("12.99")}))
	require.NoError(t, err)

	// In-store sale: no convenience charge, no delivery charge.
	// 25.98 + 3.3774 tax = 29.3574 → 29.36.
	assert.True(t, dec("29.36").Equal(res.Total), "got %s", res.Total)
	assert.Equal(t, PaymentCash, res.PaymentMethod)
	assert.Len(t, res.OrderNumber, 5)
	assert.Equal(t, fixedNow, res.Timestamp)

	require.Len(t, f.store.inserted, 1)
	o := f.store.inserted[0]
	assert.Equal(t, "walkin-1", o.UserID)
	assert.Equal(t, "store-addr", o.AddressID)
	assert.True(t, o.ConvenienceCharge.IsZero())
	assert.True(t, o.DeliveryCharge.IsZero())
}

func TestCreatePOSSale_KnownUserID(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))
	f.users.byID["u-7"] = &user.User{ID: "u-7", Name: "Priya"}

	req := posRequest(ItemRequest{ProductID: "p1", Quantity: 1, Price: dec("12.99")})
	req.Customer = POSCustomer{UserID: "u-7"}

	_, err := f.svc.CreatePOSSale(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "u-7", f.store.inserted[0].UserID)
	assert.Empty(t, f.users.created)
}

func TestCreatePOSSale_StaleUserIDFallsBackToPhone(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))
	existing := &user.User{ID: "u-9", Name: "Priya", Phone: "+15551234567"}
	f.users.byID["u-9"] = existing
	f.users.byPhone["+15551234567"] = existing

	req := posRequest(ItemRequest{ProductID: "p1", Quantity: 1, Price: dec("12.99")})
	req.Customer = POSCustomer{UserID: "deleted-id", Phone: "5551234567"}

	_, err := f.svc.CreatePOSSale(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "u-9", f.store.inserted[0].UserID)
	assert.Empty(t, f.users.created)
}

func TestCreatePOSSale_LegacyPhoneFormatMigrated(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))
	existing := &user.User{ID: "u-9", Name: "Priya", Phone: "(555) 123-4567"}
	f.users.byID["u-9"] = existing
	f.users.byPhone["(555) 123-4567"] = existing

	req := posRequest(ItemRequest{ProductID: "p1", Quantity: 1, Price: dec("12.99")})
	req.Customer = POSCustomer{Phone: "5551234567"}

	_, err := f.svc.CreatePOSSale(context.Background(), req)
	require.NoError(t, err)

	// Stored legacy format rewritten to canonical on the way through.
	assert.Equal(t, "+15551234567", f.users.phoneUpdate["u-9"])
}

func TestCreatePOSSale_NewPhoneCreatesCustomer(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))

	req := posRequest(ItemRequest{ProductID: "p1", Quantity: 1, Price: dec("12.99")})
	req.Customer = POSCustomer{Phone: "5551234567", Name: "Arun"}

	_, err := f.svc.CreatePOSSale(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.users.created, 1)
	created := f.users.created[0]
	assert.Equal(t, "Arun", created.Name)
	assert.Equal(t, "+15551234567", created.Phone)
	assert.Equal(t, created.ID, f.store.inserted[0].UserID)
}

func TestCreatePOSSale_WalkInCreatedOnFirstUse(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))

	_, err := f.svc.CreatePOSSale(context.Background(),
		posRequest(ItemRequest{ProductID: "p1", Quantity: 1, Price: dec("12.99")}))
	require.NoError(t, err)

	require.NotNil(t, f.users.walkIn)
	assert.Equal(t, "Walk-in Customer", f.users.walkIn.Name)
	assert.True(t, f.users.walkIn.WalkIn)
	assert.Equal(t, f.users.walkIn.ID, f.store.inserted[0].UserID)
}

func TestCreatePOSSale_WalkInLookupFailure(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))
	f.users.walkInErr = errors.New("db down")

	_, err := f.svc.CreatePOSSale(context.Background(),
		posRequest(ItemRequest{ProductID: "p1", Quantity: 1, Price: dec("12.99")}))
	require.ErrorIs(t, err, ErrWalkInNotConfigured)
}

func TestCreatePOSSale_WalkInCreateFailure(t *testing.T) {
	f := newFixture(testProduct("p1", "Dosa Batter", "12.99", 10))
	f.users.createErr = errors.New("db down")

	_, err := f.svc.CreatePOSSale(context.Background(),
		posRequest(ItemRequest{ProductID: "p1", Quantity: 1, Price: dec("12.99")}))
	require.ErrorIs(t, err, ErrWalkInNotConfigured)
}
