package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
)

type sentMail struct {
	to, subject, plain string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, plain, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, plain: plain})
	return nil
}

func breachEvent() events.Event {
	overdue := 1.5
	return events.Event{
		ID:        "e1",
		Type:      events.EventSLABreached,
		TicketID:  "t1",
		CompanyID: "acme",
		Payload: events.SLAAlertPayload{Alert: domain.SLAAlert{
			TicketID:     "t1",
			TicketTitle:  "VPN down",
			CompanyID:    "acme",
			ContractID:   "acme-sla",
			SLAHours:     24,
			Deadline:     t0,
			Status:       domain.SLAAlertBreached,
			HoursOverdue: &overdue,
		}},
	}
}

func TestNotificationService_MailsSLAAlerts(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	mailer := &fakeMailer{}
	svc := NewNotificationService(dispatcher, nil, config.NotificationConfig{AlertRecipient: "ops@itsm.io"}, mailer)
	svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), breachEvent()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ops@itsm.io", mailer.sent[0].to)
	assert.Equal(t, "[SLA BREACHED] VPN down", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].plain, "1.50 hours overdue")
}

func TestNotificationService_PostsWebhook(t *testing.T) {
	var (
		mu       sync.Mutex
		received []events.Event
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var e events.Event
		if json.Unmarshal(body, &e) == nil {
			mu.Lock()
			received = append(received, e)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, nil, config.NotificationConfig{WebhookURL: server.URL}, nil)
	svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		ID:       "e2",
		Type:     events.EventTicketStatusChanged,
		TicketID: "t1",
		Payload:  events.TicketStatusChangedPayload{OldStatus: domain.TicketStatusOpen, NewStatus: domain.TicketStatusResolved},
	}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, events.EventTicketStatusChanged, received[0].Type)
	assert.Equal(t, "t1", received[0].TicketID)
}

func TestNotificationService_ReportsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	mailer := &fakeMailer{err: errors.New("relay refused")}
	svc := NewNotificationService(dispatcher, nil, config.NotificationConfig{
		AlertRecipient: "ops@itsm.io",
		WebhookURL:     server.URL,
	}, mailer)
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), breachEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay refused")
	assert.Contains(t, err.Error(), "status 502")
}

func TestNewSMTPMailer_DisabledWithoutHost(t *testing.T) {
	assert.Nil(t, NewSMTPMailer(config.NotificationConfig{}))
	assert.NotNil(t, NewSMTPMailer(config.NotificationConfig{SMTPHost: "smtp.example.io", SMTPPort: 587}))
}
