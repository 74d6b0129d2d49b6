package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"parlor/internal/config"
	"parlor/internal/models"
	"parlor/internal/payment"
	"parlor/internal/repository"

	"github.com/google/uuid"
)

// SubscriptionService manages billing-tier subscriptions through hosted
// checkout sessions.
type SubscriptionService struct {
	gateway  payment.Gateway
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewSubscriptionService returns a new SubscriptionService.
func NewSubscriptionService(gateway payment.Gateway, cfg *config.Config, userRepo repository.UserRepository) *SubscriptionService {
	return &SubscriptionService{
		gateway:  gateway,
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// priceForTier maps a tier name to its configured gateway price id.
func (s *SubscriptionService) priceForTier(tier string) (string, error) {
	switch tier {
	case models.SubscriptionTierBasic:
		if s.cfg.StripePriceBasic == "" {
			return "", models.NewInternalError(errors.New("basic tier price is not configured"))
		}
		return s.cfg.StripePriceBasic, nil
	case models.SubscriptionTierPro:
		if s.cfg.StripePricePro == "" {
			return "", models.NewInternalError(errors.New("pro tier price is not configured"))
		}
		return s.cfg.StripePricePro, nil
	default:
		return "", models.NewValidationError("unknown subscription tier")
	}
}

// CreateSession opens a subscription-mode checkout session for the tier.
func (s *SubscriptionService) CreateSession(ctx context.Context, userID uint, tier string) (*CheckoutResult, error) {
	priceID, err := s.priceForTier(tier)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	session, err := s.gateway.CreateSubscriptionSession(gctx, payment.SubscriptionParams{
		PriceID:       priceID,
		CustomerEmail: user.Email,
		Metadata: map[string]string{
			"user_id": strconv.FormatUint(uint64(userID), 10),
			"tier":    tier,
		},
		IdempotencyKey: uuid.NewString(),
		SuccessURL:     s.cfg.CheckoutSuccessURL + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      s.cfg.CheckoutCancelURL,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

// Verify reconciles the user's subscription state from the gateway session.
// Re-verifying writes the same values, so the call is idempotent.
func (s *SubscriptionService) Verify(ctx context.Context, userID uint, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, models.NewValidationError("session_id is required")
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	session, err := s.gateway.GetCheckoutSession(gctx, sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return nil, models.NewInvalidSessionError("checkout session not found")
		}
		return nil, models.NewInternalError(err)
	}
	if session.Mode != payment.ModeSubscription {
		return nil, models.NewInvalidSessionError("session is not a subscription session")
	}
	if !session.Paid() {
		return nil, models.NewPaymentIncompleteError()
	}

	metaUserID, err := strconv.ParseUint(session.Metadata["user_id"], 10, 64)
	if err != nil {
		return nil, models.NewInvalidSessionError("session metadata is malformed")
	}
	if uint(metaUserID) != userID {
		return nil, models.NewUnauthorizedError("This checkout session belongs to another user")
	}
	tier := session.Metadata["tier"]
	if tier != models.SubscriptionTierBasic && tier != models.SubscriptionTierPro {
		return nil, models.NewInvalidSessionError("session metadata is malformed")
	}

	status := session.SubscriptionStatus
	if status == "" {
		status = models.SubscriptionStatusActive
	}
	var periodEnd *time.Time
	if !session.CurrentPeriodEnd.IsZero() {
		end := session.CurrentPeriodEnd
		periodEnd = &end
	}

	update := &models.User{
		SubscriptionTier:      tier,
		SubscriptionStatus:    status,
		SubscriptionPeriodEnd: periodEnd,
		GatewayCustomerID:     session.CustomerID,
		GatewaySubscriptionID: session.SubscriptionID,
	}
	if err := s.userRepo.UpdateSubscription(ctx, userID, update); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}
