package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/service"
)

// StartNotificationWorker wires outbound notifications to the dispatcher. E-mail is
// enabled only when an SMTP host is configured.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *service.NotificationService {
	var mailer service.Mailer
	if smtp := service.NewSMTPMailer(cfg); smtp != nil {
		mailer = smtp
	}
	notifications := service.NewNotificationService(dispatcher, logger, cfg, mailer)
	notifications.RegisterHandlers()

	logger.Info("notification worker started",
		zap.Bool("email", mailer != nil),
		zap.Bool("webhook", cfg.WebhookURL != ""))
	return notifications
}
