package service

import (
	"context"
	"errors"
	"fmt"

	"lilo/internal/notifications/repository"
	"lilo/internal/notifications/templates"
	"lilo/pkg/email"
	"lilo/pkg/kafka"
	"lilo/pkg/logger"
	"lilo/pkg/model"
)

const HeaderBookingID = "X-Booking-ID"

type delivery struct {
	kind    string
	to      string
	replyTo string
}

// Notifier turns booking events into emails. Every attempt is written to the
// email log, and an email already sent for an event is not sent again on redelivery.
type Notifier struct {
	sender   email.Sender
	logs     repository.EmailLogRepository
	renderer *templates.Renderer
	cfg      email.Config
	log      *logger.Logger
}

func NewNotifier(sender email.Sender, logs repository.EmailLogRepository, renderer *templates.Renderer, cfg email.Config, log *logger.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		logs:     logs,
		renderer: renderer,
		cfg:      cfg,
		log:      log,
	}
}

// HandleMessage is the kafka.MessageHandler for the booking events topic.
func (n *Notifier) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.Booking.ID == "" {
		return kafka.NewPermanentError("booking event without booking id", nil)
	}

	deliveries := n.plan(event)
	if len(deliveries) == 0 {
		n.log.Debug("No email for booking event",
			"event_type", event.Type,
			"booking_id", event.Booking.ID,
			"status", event.Booking.Status,
		)
		return nil
	}

	var failures []error
	for _, d := range deliveries {
		if err := n.deliver(ctx, msg.EventID(), event.Booking, d); err != nil {
			failures = append(failures, err)
		}
	}
	return firstRetryable(failures)
}

func (n *Notifier) plan(event model.BookingEvent) []delivery {
	b := event.Booking

	switch event.Type {
	case model.EventBookingCreated:
		out := []delivery{{kind: model.EmailBookingConfirmation, to: b.Email}}
		if n.cfg.Admin != "" {
			out = append(out, delivery{kind: model.EmailAdminNotification, to: n.cfg.Admin, replyTo: b.Email})
		} else {
			n.log.Warn("Admin email not configured, skipping admin notification", "booking_id", b.ID)
		}
		return out
	case model.EventBookingStatusChanged:
		if b.Status == model.StatusConfirmed || b.Status == model.StatusCancelled {
			return []delivery{{kind: model.EmailStatusUpdate, to: b.Email}}
		}
	}
	return nil
}

func (n *Notifier) deliver(ctx context.Context, eventID string, b model.Booking, d delivery) error {
	sent, err := n.logs.WasSent(ctx, eventID, d.kind)
	if err != nil {
		return kafka.NewTransientError("failed to read email log", err)
	}
	if sent {
		n.log.Info("Email already sent for event, skipping", "event_id", eventID, "email_type", d.kind, "booking_id", b.ID)
		return nil
	}

	rendered, err := n.renderer.Render(d.kind, templates.VarsFor(b, n.cfg.CompanyName, n.cfg.LogoURL))
	if err != nil {
		return kafka.NewPermanentError("failed to render email", err)
	}

	sendErr := n.sender.Send(ctx, email.Message{
		To:       []string{d.to},
		ReplyTo:  d.replyTo,
		Subject:  rendered.Subject,
		TextBody: rendered.Text,
		HTMLBody: rendered.HTML,
		Headers:  map[string]string{HeaderBookingID: b.ID},
	})

	entry := &model.EmailLog{
		BookingID: b.ID,
		EmailType: d.kind,
		Recipient: d.to,
		Subject:   rendered.Subject,
		Status:    model.EmailStatusSent,
		EventID:   eventID,
	}
	if sendErr != nil {
		entry.Status = model.EmailStatusFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := n.logs.Create(ctx, entry); err != nil {
		n.log.Warn("Failed to record email log", "booking_id", b.ID, "email_type", d.kind, "error", err)
	}

	if sendErr != nil {
		n.log.Error("Failed to send email",
			"booking_id", b.ID,
			"email_type", d.kind,
			"recipient", d.to,
			"error", sendErr,
		)
		return classifySendError(sendErr)
	}

	n.log.Info("Email sent",
		"booking_id", b.ID,
		"email_type", d.kind,
		"recipient", d.to,
	)
	return nil
}

func classifySendError(err error) error {
	var invalid email.ErrInvalidMessage
	var disabled email.ErrDisabled
	if errors.As(err, &invalid) || errors.As(err, &disabled) {
		return kafka.NewPermanentError("email cannot be delivered", err)
	}
	return kafka.NewTransientError("email delivery failed", err)
}

// firstRetryable prefers a transient failure so the consumer retries the event.
func firstRetryable(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		if kafka.ClassifyError(err) == kafka.ErrorTypeTransient {
			return err
		}
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return fmt.Errorf("%d deliveries failed: %w", len(errs), errs[0])
}
