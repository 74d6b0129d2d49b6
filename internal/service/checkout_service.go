package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"parlor/internal/config"
	"parlor/internal/models"
	"parlor/internal/payment"
	"parlor/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gatewayTimeout bounds every outbound payment-gateway call.
const gatewayTimeout = 15 * time.Second

// CheckoutResult is the response of a created checkout session.
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CheckoutService drives reservation payment via hosted checkout sessions.
type CheckoutService struct {
	gateway      payment.Gateway
	cfg          *config.Config
	reservations *ReservationService
	resRepo      repository.ReservationRepository
	listingRepo  repository.ListingRepository
	userRepo     repository.UserRepository
}

// NewCheckoutService returns a new CheckoutService.
func NewCheckoutService(
	gateway payment.Gateway,
	cfg *config.Config,
	reservations *ReservationService,
	resRepo repository.ReservationRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
) *CheckoutService {
	return &CheckoutService{
		gateway:      gateway,
		cfg:          cfg,
		reservations: reservations,
		resRepo:      resRepo,
		listingRepo:  listingRepo,
		userRepo:     userRepo,
	}
}

// CreateCheckoutSession validates the booking like a direct reservation,
// then opens a hosted payment session carrying every booking field as
// metadata. Nothing is persisted until the session is verified.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID uint, input *ReservationInput) (*CheckoutResult, error) {
	prepared, err := s.reservations.prepare(ctx, input)
	if err != nil {
		return nil, err
	}
	if prepared.price <= 0 {
		return nil, models.NewValidationError("totalPrice must be positive for checkout")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"user_id":     strconv.FormatUint(uint64(userID), 10),
		"listing_id":  strconv.FormatUint(uint64(input.ListingID), 10),
		"date":        input.Date,
		"time":        input.TimeSlot,
		"total_price": strconv.FormatFloat(prepared.price, 'f', 2, 64),
	}
	if input.ServiceID != nil {
		metadata["service_id"] = strconv.FormatUint(uint64(*input.ServiceID), 10)
	}
	if input.EmployeeID != nil {
		metadata["employee_id"] = strconv.FormatUint(uint64(*input.EmployeeID), 10)
	}
	if input.Note != "" {
		metadata["note"] = input.Note
	}

	productName := prepared.listing.Title
	if prepared.service != nil {
		productName = fmt.Sprintf("%s - %s", prepared.listing.Title, prepared.service.Name)
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	session, err := s.gateway.CreateCheckoutSession(gctx, payment.CheckoutParams{
		AmountMinor:    int64(math.Round(prepared.price * 100)),
		Currency:       "usd",
		ProductName:    productName,
		CustomerEmail:  user.Email,
		Metadata:       metadata,
		IdempotencyKey: uuid.NewString(),
		SuccessURL:     s.cfg.CheckoutSuccessURL + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      s.cfg.CheckoutCancelURL,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

// VerifyCheckoutSession reconciles a completed checkout into a persisted
// reservation. Safe to call any number of times for the same session: the
// unique payment-intent index guarantees at most one row ever exists, and
// every verified call converges on that row.
func (s *CheckoutService) VerifyCheckoutSession(ctx context.Context, userID uint, sessionID string) (*models.CheckoutVerification, error) {
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
	if session.Mode != payment.ModePayment {
		return nil, models.NewInvalidSessionError("session is not a payment session")
	}
	if !session.Paid() {
		return nil, models.NewPaymentIncompleteError()
	}
	if session.PaymentIntentID == "" {
		return nil, models.NewInvalidSessionError("session has no payment intent")
	}

	meta, err := parseBookingMetadata(session.Metadata)
	if err != nil {
		return nil, models.NewInvalidSessionError("session metadata is malformed")
	}
	if meta.UserID != userID {
		return nil, models.NewUnauthorizedError("This checkout session belongs to another user")
	}

	// Idempotent fast path: someone already reconciled this intent.
	existing, err := s.resRepo.GetByPaymentIntent(ctx, session.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &models.CheckoutVerification{Reservation: models.ToReservationView(existing)}, nil
	}

	listing, err := s.listingRepo.GetByID(ctx, meta.ListingID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			// The listing vanished between checkout and verify; hand back a
			// provisional view instead of failing the paid session.
			return &models.CheckoutVerification{Pending: meta.pendingView(session)}, nil
		}
		return nil, err
	}

	intentID := session.PaymentIntentID
	reservation := &models.Reservation{
		UserID:          meta.UserID,
		ListingID:       meta.ListingID,
		ServiceID:       meta.ServiceID,
		EmployeeID:      meta.EmployeeID,
		Date:            meta.Date,
		TimeSlot:        meta.TimeSlot,
		TotalPrice:      meta.TotalPrice,
		Status:          models.ReservationStatusConfirmed,
		Note:            meta.Note,
		PaymentIntentID: &intentID,
		PaymentStatus:   session.PaymentStatus,
	}

	notification, err := s.reservations.persistWithNotification(ctx, reservation, listing)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent verify; the winner's row is the
			// reservation.
			winner, lookupErr := s.resRepo.GetByPaymentIntent(ctx, session.PaymentIntentID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if winner != nil {
				return &models.CheckoutVerification{Reservation: models.ToReservationView(winner)}, nil
			}
		}
		return nil, models.NewInternalError(err)
	}
	s.reservations.publish(ctx, notification)

	view, err := s.reservations.view(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	return &models.CheckoutVerification{Reservation: view}, nil
}

// bookingMetadata is the booking payload round-tripped through the gateway.
type bookingMetadata struct {
	UserID     uint
	ListingID  uint
	ServiceID  *uint
	EmployeeID *uint
	Date       time.Time
	TimeSlot   string
	TotalPrice float64
	Note       string
}

func parseBookingMetadata(m map[string]string) (*bookingMetadata, error) {
	userID, err := strconv.ParseUint(m["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("user_id: %w", err)
	}
	listingID, err := strconv.ParseUint(m["listing_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("listing_id: %w", err)
	}
	date, err := time.Parse("2006-01-02", m["date"])
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	if m["time"] == "" {
		return nil, fmt.Errorf("time missing")
	}
	price, err := strconv.ParseFloat(m["total_price"], 64)
	if err != nil {
		return nil, fmt.Errorf("total_price: %w", err)
	}

	meta := &bookingMetadata{
		UserID:     uint(userID),
		ListingID:  uint(listingID),
		Date:       date,
		TimeSlot:   m["time"],
		TotalPrice: price,
		Note:       m["note"],
	}
	if raw := m["service_id"]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("service_id: %w", err)
		}
		sid := uint(id)
		meta.ServiceID = &sid
	}
	if raw := m["employee_id"]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("employee_id: %w", err)
		}
		eid := uint(id)
		meta.EmployeeID = &eid
	}
	return meta, nil
}

// pendingView synthesizes the provisional reservation shown while the
// persisted row is still unavailable.
func (m *bookingMetadata) pendingView(session *payment.CheckoutSession) *models.PendingReservationView {
	return &models.PendingReservationView{
		UserID:        m.UserID,
		ListingID:     m.ListingID,
		ServiceID:     m.ServiceID,
		EmployeeID:    m.EmployeeID,
		Date:          m.Date.Format("2006-01-02"),
		TimeSlot:      m.TimeSlot,
		TotalPrice:    m.TotalPrice,
		Status:        string(models.ReservationStatusConfirmed),
		PaymentStatus: session.PaymentStatus,
	}
}
