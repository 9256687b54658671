// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/mintgate/logging"
	"github.com/dev-mohitbeniwal/mintgate/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a message queue client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyWhitelistChange emits the observable "whitelisted"/"removed"
// notification carrying the four key fields. Best-effort: failures are the
// caller's to ignore, they never abort the producing operation.
func (n *NotificationService) NotifyWhitelistChange(ctx context.Context, changeType string, entry model.WhitelistEntry) error {
	switch changeType {
	case "whitelisted":
		logger.Info("NOTIFICATION: Minter whitelisted",
			zap.String("licensorAssetID", entry.LicensorAssetID),
			zap.String("licenseTemplateID", entry.LicenseTemplateID),
			zap.Uint64("licenseTermsID", entry.LicenseTermsID),
			zap.String("minterID", entry.MinterID))
	case "removed":
		logger.Info("NOTIFICATION: Minter removed from whitelist",
			zap.String("licensorAssetID", entry.LicensorAssetID),
			zap.String("licenseTemplateID", entry.LicenseTemplateID),
			zap.Uint64("licenseTermsID", entry.LicenseTermsID),
			zap.String("minterID", entry.MinterID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	// Here you would implement the actual notification logic
	// This could involve sending messages to a queue, calling an external API, etc.

	return nil
}

// NotifyMintRejected flags a denied mint or derivative-registration attempt
// for security monitoring.
func (n *NotificationService) NotifyMintRejected(ctx context.Context, caller string, entry model.WhitelistEntry) error {
	logger.Warn("NOTIFICATION: Mint attempt by non-whitelisted caller",
		zap.String("caller", caller),
		zap.String("licensorAssetID", entry.LicensorAssetID),
		zap.String("licenseTemplateID", entry.LicenseTemplateID),
		zap.Uint64("licenseTermsID", entry.LicenseTermsID))
	return nil
}

func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	// Logic to notify all system administrators
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}
