package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/notification"
	"github.com/spec-kit/complaint-desk/internal/service"
)

// StartNotificationWorker wires the outbound SMS/email handlers and an
// activity log that records every notification shown to the user.
func StartNotificationWorker(outbound *service.NotificationService, center *notification.Center, logger *zap.Logger) {
	if outbound != nil {
		outbound.RegisterHandlers()
	}
	if center == nil || logger == nil {
		return
	}
	center.Subscribe(func(current *domain.Notification) {
		if current == nil {
			logger.Debug("notification cleared")
			return
		}
		logger.Info("notification shown",
			zap.String("notification_id", current.ID),
			zap.String("kind", string(current.Kind)),
			zap.String("message", current.Message),
			zap.Duration("ttl", current.TTL))
	})
}
