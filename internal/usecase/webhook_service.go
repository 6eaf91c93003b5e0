package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	"github.com/Brunohvg/bibpay/internal/domain/provider"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

// GatewayResolver returns the gateway registered under a provider name.
// An empty name selects the configured default.
type GatewayResolver interface {
	GetGatewayFromString(name string) (provider.PaymentGateway, error)
}

// DeliveryStatus is what the webhook endpoint reports back to the gateway
type DeliveryStatus string

const (
	DeliveryProcessed DeliveryStatus = "ok"
	DeliveryIgnored   DeliveryStatus = "ignored"
)

// ReplayReport summarizes a replay run
type ReplayReport struct {
	Attempted int
	Succeeded int
	Failed    int
}

// WebhookService turns gateway deliveries into payment, link and order state
type WebhookService struct {
	gateways   GatewayResolver
	linkRepo   domainRepo.PaymentLinkRepository
	reconciler domainRepo.ReconciliationRepository
	eventRepo  domainRepo.WebhookEventRepository
	sellerRepo domainRepo.SellerRepository
	notifier   Notifier
	logger     *zap.Logger
	clock      func() time.Time
}

// NewWebhookService creates a new webhook service instance
func NewWebhookService(
	gateways GatewayResolver,
	linkRepo domainRepo.PaymentLinkRepository,
	reconciler domainRepo.ReconciliationRepository,
	eventRepo domainRepo.WebhookEventRepository,
	sellerRepo domainRepo.SellerRepository,
	notifier Notifier,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		gateways:   gateways,
		linkRepo:   linkRepo,
		reconciler: reconciler,
		eventRepo:  eventRepo,
		sellerRepo: sellerRepo,
		notifier:   notifier,
		logger:     logger,
		clock:      time.Now,
	}
}

// HandleDelivery verifies, records and processes one raw delivery.
// Event types that carry no payment status are recorded and ignored.
func (s *WebhookService) HandleDelivery(ctx context.Context, providerName string, payload []byte, header http.Header) (DeliveryStatus, error) {
	gateway, err := s.gateways.GetGatewayFromString(providerName)
	if err != nil {
		return "", domainerrors.NewValidationError("provider", err.Error())
	}

	event, err := gateway.ParseWebhook(payload, header)
	if err != nil {
		var perr *provider.ProviderError
		if errors.As(err, &perr) && perr.Code == provider.ErrCodeInvalidSignature {
			s.logger.Warn("Rejected webhook with invalid signature", zap.String("provider", gateway.Name()))
			return "", domainerrors.ErrInvalidSignature
		}
		s.logger.Warn("Rejected malformed webhook",
			zap.String("provider", gateway.Name()),
			zap.Error(err))
		return "", domainerrors.NewValidationError("payload", "malformed webhook payload")
	}

	record := s.newRecord(event)
	created, err := s.eventRepo.SaveEvent(ctx, record)
	if err != nil {
		return "", err
	}
	if !created {
		existing, err := s.eventRepo.GetByDeliveryID(ctx, event.DeliveryID)
		if err != nil {
			return "", err
		}
		if existing != nil && existing.ProcessingStatus == model.WebhookStatusIgnored {
			return DeliveryIgnored, nil
		}
		if existing != nil && existing.ProcessingStatus == model.WebhookStatusCompleted {
			s.logger.Info("Duplicate webhook delivery", zap.String("delivery_id", event.DeliveryID))
			return DeliveryProcessed, nil
		}
	}

	if !event.IsPaymentEvent() || event.Ignore {
		s.logger.Info("Ignoring webhook without payment status change",
			zap.String("delivery_id", event.DeliveryID),
			zap.String("event_type", event.Type))
		if err := s.eventRepo.MarkIgnored(ctx, event.DeliveryID); err != nil {
			s.logger.Warn("Failed to mark webhook ignored", zap.Error(err))
		}
		return DeliveryIgnored, nil
	}

	if _, err := s.ProcessEvent(ctx, event); err != nil {
		if markErr := s.eventRepo.MarkFailed(ctx, event.DeliveryID, err.Error()); markErr != nil {
			s.logger.Warn("Failed to mark webhook failed", zap.Error(markErr))
		}
		return "", err
	}

	if err := s.eventRepo.MarkProcessed(ctx, event.DeliveryID); err != nil {
		s.logger.Warn("Failed to mark webhook processed", zap.Error(err))
	}
	return DeliveryProcessed, nil
}

// ProcessEvent applies a normalized payment event. Unknown links and unknown
// statuses are rejected before anything is written.
func (s *WebhookService) ProcessEvent(ctx context.Context, event *provider.WebhookEvent) (*model.Payment, error) {
	link, err := s.linkRepo.GetByExternalID(ctx, event.ExternalLinkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		s.logger.Warn("Webhook for unknown payment link",
			zap.String("external_id", event.ExternalLinkID),
			zap.String("event_type", event.Type))
		return nil, domainerrors.ErrPaymentLinkNotFound
	}

	status, err := entity.ParsePaymentStatus(event.Status)
	if err != nil {
		s.logger.Warn("Webhook with unknown payment status",
			zap.String("external_id", event.ExternalLinkID),
			zap.String("status", event.Status))
		return nil, err
	}

	update := domainRepo.PaymentUpdate{
		Status:     status,
		Amount:     entity.FromMinorUnits(event.AmountMinor),
		PaidAt:     normalizeTimePtr(event.PaidAt),
		OccurredAt: normalizeTime(event.OccurredAt),
	}
	if update.OccurredAt.IsZero() {
		update.OccurredAt = normalizeTime(s.clock())
	}

	result, err := s.reconciler.Apply(ctx, link.ID, update)
	if err != nil {
		return nil, err
	}

	if result.StatusChanged() && result.Payment.Status.IsTerminal() {
		s.notifyPayment(ctx, result)
	}

	return result.Payment, nil
}

// Replay reprocesses failed deliveries from their stored normalized fields
func (s *WebhookService) Replay(ctx context.Context, maxRetries, limit int) (ReplayReport, error) {
	var report ReplayReport

	events, err := s.eventRepo.GetFailedEvents(ctx, maxRetries, limit)
	if err != nil {
		return report, err
	}

	for _, record := range events {
		report.Attempted++
		if _, err := s.ProcessEvent(ctx, recordToEvent(record)); err != nil {
			report.Failed++
			s.logger.Warn("Webhook replay failed",
				zap.String("delivery_id", record.DeliveryID),
				zap.Error(err))
			if markErr := s.eventRepo.MarkFailed(ctx, record.DeliveryID, err.Error()); markErr != nil {
				return report, markErr
			}
			continue
		}

		report.Succeeded++
		if err := s.eventRepo.MarkProcessed(ctx, record.DeliveryID); err != nil {
			return report, err
		}
	}

	s.logger.Info("Webhook replay finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *WebhookService) notifyPayment(ctx context.Context, result *domainRepo.ReconcileResult) {
	kind := NotificationPaymentRefused
	if result.Payment.Status.IsApproved() {
		kind = NotificationPaymentApproved
	}

	seller, err := s.sellerRepo.GetByID(ctx, result.Order.SellerID)
	if err != nil || seller == nil {
		s.logger.Warn("No seller to notify",
			zap.Int64("order_id", result.Order.ID),
			zap.Int64("seller_id", result.Order.SellerID),
			zap.Error(err))
		return
	}

	s.notifier.Notify(ctx, Notification{
		Kind:         kind,
		Phone:        seller.Phone,
		OrderID:      result.Order.ID,
		CustomerName: result.Order.Name,
		Amount:       result.Payment.Amount,
		URL:          result.Link.URL,
		Status:       result.Payment.Status,
	})
}

func (s *WebhookService) newRecord(event *provider.WebhookEvent) *model.WebhookEvent {
	record := &model.WebhookEvent{
		DeliveryID:  event.DeliveryID,
		Provider:    event.Provider,
		EventType:   event.Type,
		AmountMinor: event.AmountMinor,
		PaidAt:      normalizeTimePtr(event.PaidAt),
		OccurredAt:  normalizeTime(event.OccurredAt),
		Payload:     event.Payload,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = normalizeTime(s.clock())
		event.OccurredAt = record.OccurredAt
	}
	if event.ExternalLinkID != "" {
		record.ExternalLinkID = &event.ExternalLinkID
	}
	if event.Status != "" {
		record.EventStatus = &event.Status
	}
	if len(record.Payload) == 0 || !json.Valid(record.Payload) {
		record.Payload = []byte(fmt.Sprintf("%q", string(event.Payload)))
	}
	return record
}

func recordToEvent(record *model.WebhookEvent) *provider.WebhookEvent {
	event := &provider.WebhookEvent{
		DeliveryID:  record.DeliveryID,
		Provider:    record.Provider,
		Type:        record.EventType,
		AmountMinor: record.AmountMinor,
		PaidAt:      record.PaidAt,
		OccurredAt:  record.OccurredAt,
		Payload:     record.Payload,
	}
	if record.ExternalLinkID != nil {
		event.ExternalLinkID = *record.ExternalLinkID
	}
	if record.EventStatus != nil {
		event.Status = *record.EventStatus
	}
	return event
}

// normalizeTime drops precision the database cannot store so staleness
// comparisons agree with what was persisted
func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Microsecond)
}

func normalizeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := normalizeTime(*t)
	return &n
}
