package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/Brunohvg/bibpay/internal/config"
	"github.com/Brunohvg/bibpay/internal/domain/entity"
	"github.com/Brunohvg/bibpay/internal/domain/provider"
	"github.com/Brunohvg/bibpay/pkg/messaging"
)

// NotificationTopic is the queue topic seller notifications travel on
const NotificationTopic = "notifications"

const (
	publishTimeout = 2 * time.Second
	maxBackoff     = time.Minute
	// minConsumeDelay bounds the retry rate while the queue backend is down
	minConsumeDelay = 500 * time.Millisecond
)

//go:embed templates/notifications.yaml
var notificationTemplates []byte

// NotificationKind selects the message template
type NotificationKind string

const (
	NotificationLinkCreated     NotificationKind = "link_created"
	NotificationLinkFailed      NotificationKind = "link_failed"
	NotificationPaymentApproved NotificationKind = "payment_approved"
	NotificationPaymentRefused  NotificationKind = "payment_refused"
)

// Notification is one message for a seller
type Notification struct {
	Kind         NotificationKind
	Phone        string
	OrderID      int64
	CustomerName string
	Amount       decimal.Decimal
	URL          string
	Status       entity.PaymentStatus
}

// Notifier enqueues seller notifications. Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// notificationJob is the queued, already rendered message
type notificationJob struct {
	Kind   NotificationKind `json:"kind"`
	Number string           `json:"number"`
	Text   string           `json:"text"`
}

// NotificationService renders notifications, queues them and delivers them
// from background workers
type NotificationService struct {
	queue         messaging.Queue
	messenger     provider.Messenger
	templates     map[NotificationKind]*template.Template
	limiter       *rate.Limiter
	enabled       bool
	countryPrefix string
	workers       int
	maxRetries    int
	baseDelay     time.Duration
	logger        *zap.Logger
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(
	cfg config.NotificationConfig,
	queue messaging.Queue,
	messenger provider.Messenger,
	logger *zap.Logger,
) (*NotificationService, error) {
	templates, err := parseTemplates(notificationTemplates)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &NotificationService{
		queue:         queue,
		messenger:     messenger,
		templates:     templates,
		limiter:       rate.NewLimiter(limit, 1),
		enabled:       cfg.Enabled,
		countryPrefix: cfg.CountryPrefix,
		workers:       workers,
		maxRetries:    cfg.MaxRetries,
		baseDelay:     cfg.BaseDelay,
		logger:        logger,
	}, nil
}

func parseTemplates(raw []byte) (map[NotificationKind]*template.Template, error) {
	var texts map[string]string
	if err := yaml.Unmarshal(raw, &texts); err != nil {
		return nil, fmt.Errorf("failed to parse notification templates: %w", err)
	}

	templates := make(map[NotificationKind]*template.Template, len(texts))
	for name, text := range texts {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[NotificationKind(name)] = tmpl
	}

	for _, kind := range []NotificationKind{NotificationLinkCreated, NotificationLinkFailed, NotificationPaymentApproved, NotificationPaymentRefused} {
		if templates[kind] == nil {
			return nil, fmt.Errorf("missing notification template %s", kind)
		}
	}
	return templates, nil
}

// Render returns the message text for n
func (s *NotificationService) Render(n Notification) (string, error) {
	tmpl, ok := s.templates[n.Kind]
	if !ok {
		return "", fmt.Errorf("unknown notification kind %q", n.Kind)
	}

	data := struct {
		OrderID      int64
		CustomerName string
		Amount       string
		URL          string
		Status       entity.PaymentStatus
	}{
		OrderID:      n.OrderID,
		CustomerName: n.CustomerName,
		Amount:       entity.FormatMoney(n.Amount),
		URL:          n.URL,
		Status:       n.Status,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", n.Kind, err)
	}
	return buf.String(), nil
}

// Recipient prefixes a local phone number with the country code
func (s *NotificationService) Recipient(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" || s.countryPrefix == "" || strings.HasPrefix(digits, s.countryPrefix) && len(digits) > 11 {
		return digits
	}
	return s.countryPrefix + digits
}

// Notify renders and enqueues n. Errors are logged, never returned.
func (s *NotificationService) Notify(ctx context.Context, n Notification) {
	if !s.enabled {
		s.logger.Debug("Notifications disabled, skipping",
			zap.String("kind", string(n.Kind)),
			zap.Int64("order_id", n.OrderID))
		return
	}

	number := s.Recipient(n.Phone)
	if number == "" {
		s.logger.Warn("Seller has no phone, skipping notification",
			zap.String("kind", string(n.Kind)),
			zap.Int64("order_id", n.OrderID))
		return
	}

	text, err := s.Render(n)
	if err != nil {
		s.logger.Error("Failed to render notification", zap.Int64("order_id", n.OrderID), zap.Error(err))
		return
	}

	payload, err := json.Marshal(notificationJob{Kind: n.Kind, Number: number, Text: text})
	if err != nil {
		s.logger.Error("Failed to encode notification", zap.Int64("order_id", n.OrderID), zap.Error(err))
		return
	}

	// The request context may end right after the response is written
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.queue.Publish(publishCtx, NotificationTopic, payload); err != nil {
		s.logger.Error("Failed to enqueue notification",
			zap.String("kind", string(n.Kind)),
			zap.Int64("order_id", n.OrderID),
			zap.Error(err))
		return
	}

	s.logger.Info("Notification enqueued",
		zap.String("kind", string(n.Kind)),
		zap.Int64("order_id", n.OrderID))
}

// Run drains the queue with the configured number of workers until ctx is
// canceled or the queue is closed
func (s *NotificationService) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			s.work(ctx, worker)
		}(i)
	}
	wg.Wait()
	return nil
}

func (s *NotificationService) work(ctx context.Context, worker int) {
	logger := s.logger.With(zap.Int("worker", worker))
	logger.Info("Notification worker started")
	defer logger.Info("Notification worker stopped")

	for {
		msg, err := s.queue.Consume(ctx, NotificationTopic)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, messaging.ErrQueueClosed) {
				return
			}
			logger.Error("Failed to consume notification", zap.Error(err))
			if !sleep(ctx, consumeDelay(s.baseDelay)) {
				return
			}
			continue
		}

		var job notificationJob
		if err := json.Unmarshal(msg.Payload, &job); err != nil {
			logger.Error("Dropping malformed notification", zap.Error(err))
			continue
		}

		s.deliver(ctx, logger, job)
	}
}

// deliver sends job with exponential backoff. Failures after the last retry are dropped.
func (s *NotificationService) deliver(ctx context.Context, logger *zap.Logger, job notificationJob) {
	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		err := s.messenger.SendText(ctx, job.Number, job.Text)
		if err == nil {
			logger.Info("Notification delivered",
				zap.String("kind", string(job.Kind)),
				zap.Int("attempt", attempt+1))
			return
		}

		if attempt >= s.maxRetries {
			logger.Error("Dropping notification after retries",
				zap.String("kind", string(job.Kind)),
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return
		}

		logger.Warn("Notification delivery failed, retrying",
			zap.String("kind", string(job.Kind)),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if pingErr := s.messenger.Ping(ctx); pingErr != nil {
			logger.Warn("Messenger is not connected", zap.Error(pingErr))
		}

		if !sleep(ctx, backoff(s.baseDelay, attempt)) {
			return
		}
	}
}

func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base << attempt
	if delay > maxBackoff || delay <= 0 {
		return maxBackoff
	}
	return delay
}

func consumeDelay(base time.Duration) time.Duration {
	if base < minConsumeDelay {
		return minConsumeDelay
	}
	return base
}

// sleep waits for d and reports false when ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
