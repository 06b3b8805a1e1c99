// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/clearledger/vigil/api/logging"
	"github.com/clearledger/vigil/api/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a message queue client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyClientChange(ctx context.Context, changeType string, client model.Client) error {
	// In a real implementation, you might send this to a message queue or external notification service
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: New client onboarded",
			zap.String("clientID", client.ID),
			zap.String("riskLevel", client.RiskLevel))
	case "updated":
		logger.Info("NOTIFICATION: Client updated",
			zap.String("clientID", client.ID),
			zap.String("riskLevel", client.RiskLevel))
	case "deleted":
		logger.Info("NOTIFICATION: Client offboarded",
			zap.String("clientID", client.ID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}

// NotifyChainInvalid alerts compliance officers that a verification run found
// a broken chain. A tampered audit trail is an incident, not a log line.
func (n *NotificationService) NotifyChainInvalid(ctx context.Context, organizationID string, sequenceNumber int64, reason string) error {
	logger.Error("NOTIFICATION: Audit chain integrity failure",
		zap.String("organizationID", organizationID),
		zap.Int64("sequenceNumber", sequenceNumber),
		zap.String("reason", reason))
	return nil
}

func (n *NotificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	// Mock email sending
	logger.Info("Sending email",
		zap.String("recipient", recipient),
		zap.String("subject", subject))

	return nil
}
