package service

import (
	"context"
	"testing"
	"time"

	"parlor/internal/models"
	"parlor/internal/payment"
	"parlor/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSubscriptionService(t *testing.T, gateway payment.Gateway) (*SubscriptionService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewSubscriptionService(gateway, testConfig(), repository.NewUserRepository(db))
	return svc, db
}

func subscriptionSession(user *models.User, tier string) *payment.CheckoutSession {
	return &payment.CheckoutSession{
		ID:                 "cs_sub_1",
		Mode:               payment.ModeSubscription,
		PaymentStatus:      payment.StatusPaid,
		CustomerID:         "cus_test_1",
		SubscriptionID:     "sub_test_1",
		SubscriptionStatus: models.SubscriptionStatusActive,
		CurrentPeriodEnd:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Metadata: map[string]string{
			"user_id": uintStr(user.ID),
			"tier":    tier,
		},
	}
}

func TestSubscriptionCreateSession(t *testing.T) {
	t.Parallel()

	var captured payment.SubscriptionParams
	gateway := &gatewayStub{
		subFn: func(_ context.Context, params payment.SubscriptionParams) (*payment.CheckoutSession, error) {
			captured = params
			return &payment.CheckoutSession{ID: "cs_sub_1", URL: "https://pay.example/cs_sub_1"}, nil
		},
	}
	svc, db := newSubscriptionService(t, gateway)
	user := createTestUser(t, db, "subscriber")

	result, err := svc.CreateSession(context.Background(), user.ID, models.SubscriptionTierPro)
	require.NoError(t, err)
	assert.Equal(t, "cs_sub_1", result.SessionID)

	assert.Equal(t, "price_pro_test", captured.PriceID)
	assert.Equal(t, user.Email, captured.CustomerEmail)
	assert.Equal(t, models.SubscriptionTierPro, captured.Metadata["tier"])
	assert.Equal(t, uintStr(user.ID), captured.Metadata["user_id"])
}

func TestSubscriptionCreateSessionUnknownTier(t *testing.T) {
	t.Parallel()
	svc, db := newSubscriptionService(t, &gatewayStub{})
	user := createTestUser(t, db, "subscriber")

	_, err := svc.CreateSession(context.Background(), user.ID, "platinum")
	assertValidationError(t, err)
}

func TestSubscriptionVerify(t *testing.T) {
	t.Parallel()

	var session *payment.CheckoutSession
	gateway := &gatewayStub{
		getFn: func(context.Context, string) (*payment.CheckoutSession, error) {
			return session, nil
		},
	}
	svc, db := newSubscriptionService(t, gateway)
	user := createTestUser(t, db, "subscriber")
	session = subscriptionSession(user, models.SubscriptionTierBasic)

	ctx := context.Background()

	updated, err := svc.Verify(ctx, user.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionTierBasic, updated.SubscriptionTier)
	assert.Equal(t, models.SubscriptionStatusActive, updated.SubscriptionStatus)
	require.NotNil(t, updated.SubscriptionPeriodEnd)
	assert.Equal(t, session.CurrentPeriodEnd.Unix(), updated.SubscriptionPeriodEnd.Unix())

	// The gateway ids land on the stored row but never in API payloads.
	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "cus_test_1", stored.GatewayCustomerID)
	assert.Equal(t, "sub_test_1", stored.GatewaySubscriptionID)

	// Verifying again writes the same state.
	again, err := svc.Verify(ctx, user.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.SubscriptionTier, again.SubscriptionTier)
	assert.Equal(t, updated.SubscriptionStatus, again.SubscriptionStatus)
}

func TestSubscriptionVerifyErrors(t *testing.T) {
	t.Parallel()

	var session *payment.CheckoutSession
	gateway := &gatewayStub{
		getFn: func(context.Context, string) (*payment.CheckoutSession, error) {
			return session, nil
		},
	}
	svc, db := newSubscriptionService(t, gateway)
	user := createTestUser(t, db, "subscriber")
	other := createTestUser(t, db, "other")

	ctx := context.Background()

	t.Run("payment mode session rejected", func(t *testing.T) {
		session = subscriptionSession(user, models.SubscriptionTierBasic)
		session.Mode = payment.ModePayment
		_, err := svc.Verify(ctx, user.ID, session.ID)
		assertAppErrorCode(t, err, "INVALID_SESSION")
	})

	t.Run("unpaid session", func(t *testing.T) {
		session = subscriptionSession(user, models.SubscriptionTierBasic)
		session.PaymentStatus = payment.StatusUnpaid
		_, err := svc.Verify(ctx, user.ID, session.ID)
		assertAppErrorCode(t, err, "PAYMENT_INCOMPLETE")
	})

	t.Run("unknown tier in metadata", func(t *testing.T) {
		session = subscriptionSession(user, "platinum")
		_, err := svc.Verify(ctx, user.ID, session.ID)
		assertAppErrorCode(t, err, "INVALID_SESSION")
	})

	t.Run("someone else's session", func(t *testing.T) {
		session = subscriptionSession(user, models.SubscriptionTierBasic)
		_, err := svc.Verify(ctx, other.ID, session.ID)
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	// The failed verifies above must not have touched the user.
	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, models.SubscriptionTierFree, stored.SubscriptionTier)
}
