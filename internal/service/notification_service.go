package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/events"
)

// Mailer sends one e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, plainBody, htmlBody string) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPMailer returns nil when no SMTP host is configured.
func NewSMTPMailer(cfg config.NotificationConfig) *SMTPMailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil
	}
	return &SMTPMailer{
		from:   cfg.EmailFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, plainBody, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NotificationService fans domain events out to e-mail and a webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	mailer     Mailer
	httpClient *http.Client
}

// NewNotificationService creates the service. mailer may be nil to disable e-mail.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, mailer Mailer) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		mailer:     mailer,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketUpdate)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketUpdate)
	n.dispatcher.Subscribe(events.EventTicketNoteAdded, n.handleTicketUpdate)
	n.dispatcher.Subscribe(events.EventSLAWarning, n.handleSLAAlert)
	n.dispatcher.Subscribe(events.EventSLABreached, n.handleSLAAlert)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket created", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleTicketUpdate(ctx context.Context, event events.Event) error {
	n.logger.Debug("ticket updated",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleSLAAlert(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLAAlertPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Warn("sla alert",
		zap.String("status", string(payload.Alert.Status)),
		zap.String("ticket_id", event.TicketID),
		zap.String("company_id", event.CompanyID),
		zap.Time("deadline", payload.Alert.Deadline))

	return errors.Join(n.sendAlertEmail(ctx, payload), n.sendWebhook(ctx, event))
}

func (n *NotificationService) sendAlertEmail(ctx context.Context, payload events.SLAAlertPayload) error {
	to := strings.TrimSpace(n.cfg.AlertRecipient)
	if n.mailer == nil || to == "" {
		return nil
	}
	alert := payload.Alert
	subject := fmt.Sprintf("[SLA %s] %s", strings.ToUpper(string(alert.Status)), alert.TicketTitle)

	var detail string
	switch {
	case alert.HoursOverdue != nil:
		detail = fmt.Sprintf("%.2f hours overdue", *alert.HoursOverdue)
	case alert.HoursRemaining != nil:
		detail = fmt.Sprintf("%.2f hours remaining", *alert.HoursRemaining)
	}
	plain := fmt.Sprintf("Ticket %s (%s)\nContract %s, SLA %d hours\nDeadline %s\n%s\n",
		alert.TicketID, alert.TicketTitle, alert.ContractID, alert.SLAHours,
		alert.Deadline.UTC().Format(time.RFC3339), detail)
	html := fmt.Sprintf("<p>Ticket <b>%s</b> (%s)</p><p>Contract %s, SLA %d hours</p><p>Deadline %s<br/>%s</p>",
		alert.TicketID, alert.TicketTitle, alert.ContractID, alert.SLAHours,
		alert.Deadline.UTC().Format(time.RFC3339), detail)

	if err := n.mailer.Send(ctx, to, subject, plain, html); err != nil {
		return err
	}
	n.logger.Info("sla alert mailed", zap.String("ticket_id", alert.TicketID), zap.String("to", to))
	return nil
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
