package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lilo/internal/notifications/templates"
	"lilo/pkg/email"
	"lilo/pkg/kafka"
	"lilo/pkg/logger"
	"lilo/pkg/model"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, m email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m)
	return nil
}

type fakeLogs struct {
	mu      sync.Mutex
	entries []*model.EmailLog
	readErr error
}

func (l *fakeLogs) Create(_ context.Context, entry *model.EmailLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *fakeLogs) WasSent(_ context.Context, eventID, emailType string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readErr != nil {
		return false, l.readErr
	}
	for _, e := range l.entries {
		if e.EventID == eventID && e.EmailType == emailType && e.Status == model.EmailStatusSent {
			return true, nil
		}
	}
	return false, nil
}

func newTestNotifier(t *testing.T, sender email.Sender, logs *fakeLogs, admin string) *Notifier {
	t.Helper()
	renderer, err := templates.NewRenderer()
	require.NoError(t, err)
	cfg := email.DefaultConfig()
	cfg.Enabled = true
	cfg.Admin = admin
	log := logger.New(logger.Config{Output: io.Discard})
	return NewNotifier(sender, logs, renderer, cfg, log)
}

func testBooking(status model.BookingStatus) model.Booking {
	return model.Booking{
		ID:                "65a1b2c3d4e5f6a7b8c9d0e1",
		FullName:          "Ada Lovelace",
		Email:             "ada@example.com",
		Phone:             "+16502530000",
		RequestedDate:     "2025-01-06",
		RequestedTime:     "14:30",
		DurationMinutes:   30,
		ServicesRequested: []string{"consultation"},
		Status:            status,
	}
}

func eventMessage(t *testing.T, eventID string, event model.BookingEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{
		Key:   event.Booking.ID,
		Value: value,
		Headers: map[string]string{
			kafka.HeaderEventID:   eventID,
			kafka.HeaderEventType: event.Type,
		},
	}
}

func TestHandleMessage_CreatedSendsConfirmationAndAdmin(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogs{}
	n := newTestNotifier(t, sender, logs, "admin@example.com")

	msg := eventMessage(t, "evt-1", model.BookingEvent{
		Type:       model.EventBookingCreated,
		Booking:    testBooking(model.StatusPending),
		OccurredAt: time.Now(),
	})
	require.NoError(t, n.HandleMessage(context.Background(), msg))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"ada@example.com"}, sender.sent[0].To)
	assert.Empty(t, sender.sent[0].ReplyTo)
	assert.Equal(t, []string{"admin@example.com"}, sender.sent[1].To)
	assert.Equal(t, "ada@example.com", sender.sent[1].ReplyTo)
	assert.Equal(t, "New booking: Ada Lovelace on Monday, January 6, 2025 at 2:30 PM", sender.sent[1].Subject)
	assert.Equal(t, "65a1b2c3d4e5f6a7b8c9d0e1", sender.sent[0].Headers[HeaderBookingID])

	require.Len(t, logs.entries, 2)
	for _, e := range logs.entries {
		assert.Equal(t, model.EmailStatusSent, e.Status)
		assert.Equal(t, "evt-1", e.EventID)
	}
}

func TestHandleMessage_NoAdminSkipsAdminEmail(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(t, sender, &fakeLogs{}, "")

	msg := eventMessage(t, "evt-2", model.BookingEvent{Type: model.EventBookingCreated, Booking: testBooking(model.StatusPending)})
	require.NoError(t, n.HandleMessage(context.Background(), msg))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, sender.sent[0].To)
}

func TestHandleMessage_StatusChanged(t *testing.T) {
	tests := []struct {
		status   model.BookingStatus
		wantSent int
	}{
		{model.StatusConfirmed, 1},
		{model.StatusCancelled, 1},
		{model.StatusCompleted, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			sender := &fakeSender{}
			n := newTestNotifier(t, sender, &fakeLogs{}, "admin@example.com")

			b := testBooking(tt.status)
			if tt.status == model.StatusCancelled {
				b.CancellationReason = "Client request"
			}
			msg := eventMessage(t, "evt-"+string(tt.status), model.BookingEvent{
				Type:           model.EventBookingStatusChanged,
				Booking:        b,
				PreviousStatus: model.StatusPending,
			})
			require.NoError(t, n.HandleMessage(context.Background(), msg))
			assert.Len(t, sender.sent, tt.wantSent)
			if tt.wantSent == 1 {
				assert.Equal(t, []string{"ada@example.com"}, sender.sent[0].To)
			}
		})
	}
}

func TestHandleMessage_RedeliveryIsSkipped(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogs{}
	n := newTestNotifier(t, sender, logs, "admin@example.com")

	msg := eventMessage(t, "evt-3", model.BookingEvent{Type: model.EventBookingCreated, Booking: testBooking(model.StatusPending)})
	require.NoError(t, n.HandleMessage(context.Background(), msg))
	require.NoError(t, n.HandleMessage(context.Background(), msg))

	assert.Len(t, sender.sent, 2)
	assert.Len(t, logs.entries, 2)
}

func TestHandleMessage_UndecodableIsPermanent(t *testing.T) {
	n := newTestNotifier(t, &fakeSender{}, &fakeLogs{}, "")

	err := n.HandleMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}

func TestHandleMessage_MissingBookingIDIsPermanent(t *testing.T) {
	n := newTestNotifier(t, &fakeSender{}, &fakeLogs{}, "")

	b := testBooking(model.StatusPending)
	b.ID = ""
	err := n.HandleMessage(context.Background(), eventMessage(t, "evt-4", model.BookingEvent{Type: model.EventBookingCreated, Booking: b}))
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}

func TestHandleMessage_SendFailures(t *testing.T) {
	tests := []struct {
		name     string
		sendErr  error
		wantType kafka.ErrorType
	}{
		{"smtp outage is retried", email.ErrSend{Provider: "smtp", Err: errors.New("connection refused")}, kafka.ErrorTypeTransient},
		{"invalid message is dropped", email.ErrInvalidMessage{Reason: "no recipients"}, kafka.ErrorTypePermanent},
		{"disabled is dropped", email.ErrDisabled{}, kafka.ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := &fakeLogs{}
			n := newTestNotifier(t, &fakeSender{err: tt.sendErr}, logs, "admin@example.com")

			msg := eventMessage(t, "evt-5", model.BookingEvent{Type: model.EventBookingCreated, Booking: testBooking(model.StatusPending)})
			err := n.HandleMessage(context.Background(), msg)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, kafka.ClassifyError(err))

			require.Len(t, logs.entries, 2)
			for _, e := range logs.entries {
				assert.Equal(t, model.EmailStatusFailed, e.Status)
				assert.NotEmpty(t, e.ErrorMessage)
			}
		})
	}
}

func TestHandleMessage_LogReadFailureIsTransient(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(t, sender, &fakeLogs{readErr: errors.New("mongo down")}, "")

	msg := eventMessage(t, "evt-6", model.BookingEvent{Type: model.EventBookingCreated, Booking: testBooking(model.StatusPending)})
	err := n.HandleMessage(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
	assert.Empty(t, sender.sent)
}

func TestUnknownEventTypeIsIgnored(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(t, sender, &fakeLogs{}, "admin@example.com")

	msg := eventMessage(t, "evt-7", model.BookingEvent{Type: "booking.archived", Booking: testBooking(model.StatusPending)})
	require.NoError(t, n.HandleMessage(context.Background(), msg))
	assert.Empty(t, sender.sent)
}
