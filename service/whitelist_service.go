// service/whitelist_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dev-mohitbeniwal/mintgate/audit"
	"github.com/dev-mohitbeniwal/mintgate/authority"
	mintgate_errors "github.com/dev-mohitbeniwal/mintgate/errors"
	logger "github.com/dev-mohitbeniwal/mintgate/logging"
	"github.com/dev-mohitbeniwal/mintgate/model"
	"github.com/dev-mohitbeniwal/mintgate/terms"
	"github.com/dev-mohitbeniwal/mintgate/util"
)

// WhitelistService owns the caller whitelist and the minting fee formula.
// Mutations are permission-gated through the access-control authority; the
// add/remove preconditions are enforced atomically by the store, so
// concurrent adds of one key cannot both succeed, even across replicas.
type WhitelistService struct {
	store            WhitelistStore
	authorityService authority.Service
	termsService     terms.Service
	auditService     audit.Service
	validationUtil   *util.ValidationUtil
	cache            StatusCache
	notificationSvc  *util.NotificationService
	eventBus         *util.EventBus
}

// NewWhitelistService creates a new instance of WhitelistService
func NewWhitelistService(
	store WhitelistStore,
	authorityService authority.Service,
	termsService terms.Service,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cache StatusCache,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *WhitelistService {
	service := &WhitelistService{
		store:            store,
		authorityService: authorityService,
		termsService:     termsService,
		auditService:     auditService,
		validationUtil:   validationUtil,
		cache:            cache,
		notificationSvc:  notificationSvc,
		eventBus:         eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe("whitelist.added", service.handleWhitelistAdded)
	eventBus.Subscribe("whitelist.removed", service.handleWhitelistRemoved)

	return service
}

func (s *WhitelistService) handleWhitelistAdded(ctx context.Context, event util.Event) error {
	entry, ok := event.Payload.(model.WhitelistEntry)
	if !ok {
		logger.Error("Invalid event payload type", zap.Any("payload", event.Payload))
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}

	logger.Info("Whitelist added event received",
		zap.String("minterID", entry.MinterID),
		zap.String("licensorAssetID", entry.LicensorAssetID))

	if err := s.notificationSvc.NotifyWhitelistChange(ctx, "whitelisted", entry); err != nil {
		logger.Warn("Failed to send whitelist notification", zap.Error(err), zap.String("minterID", entry.MinterID))
	}

	return nil
}

func (s *WhitelistService) handleWhitelistRemoved(ctx context.Context, event util.Event) error {
	entry, ok := event.Payload.(model.WhitelistEntry)
	if !ok {
		logger.Error("Invalid event payload type", zap.Any("payload", event.Payload))
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}

	logger.Info("Whitelist removed event received",
		zap.String("minterID", entry.MinterID),
		zap.String("licensorAssetID", entry.LicensorAssetID))

	if err := s.notificationSvc.NotifyWhitelistChange(ctx, "removed", entry); err != nil {
		logger.Warn("Failed to send whitelist notification", zap.Error(err), zap.String("minterID", entry.MinterID))
	}

	return nil
}

// AddToWhitelist whitelists a minter for a (asset, template, terms) triple.
// A repeat add without an intervening remove is rejected, not silently
// accepted: redundant adds surface caller bugs.
func (s *WhitelistService) AddToWhitelist(ctx context.Context, entry model.WhitelistEntry, callerID string) error {
	if err := s.validationUtil.ValidateWhitelistEntry(entry); err != nil {
		return fmt.Errorf("%w: %v", mintgate_errors.ErrInvalidEntryData, err)
	}

	if err := s.checkAuthority(ctx, callerID, entry.LicensorAssetID); err != nil {
		return err
	}

	changed, err := s.store.SetStatus(ctx, entry, true, callerID)
	if err != nil {
		logger.Error("Error adding to whitelist", zap.Error(err), zap.String("callerID", callerID))
		return fmt.Errorf("failed to add to whitelist: %w", err)
	}
	if !changed {
		return fmt.Errorf("%w: %s", mintgate_errors.ErrAlreadyWhitelisted, entry.MinterID)
	}

	// Update cache
	if err := s.cache.SetWhitelistStatus(ctx, entry.AuthorizationKey(), true); err != nil {
		logger.Warn("Failed to cache whitelist status", zap.Error(err), zap.String("minterID", entry.MinterID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "whitelist.added", entry)

	logger.Info("Minter added to whitelist",
		zap.String("minterID", entry.MinterID),
		zap.String("licensorAssetID", entry.LicensorAssetID),
		zap.Uint64("licenseTermsID", entry.LicenseTermsID),
		zap.String("callerID", callerID))
	return nil
}

// BulkAddToWhitelist adds multiple entries in parallel
func (s *WhitelistService) BulkAddToWhitelist(ctx context.Context, entries []model.WhitelistEntry, callerID string) error {
	g, ctx := errgroup.WithContext(ctx)

	// Limit concurrency to avoid overwhelming the system
	semaphore := make(chan struct{}, 10)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			return s.AddToWhitelist(ctx, entry, callerID)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Error in bulk whitelist add", zap.Error(err), zap.String("callerID", callerID))
		return fmt.Errorf("failed to bulk add to whitelist: %w", err)
	}

	logger.Info("Bulk whitelist add completed", zap.Int("count", len(entries)), zap.String("callerID", callerID))
	return nil
}

// RemoveFromWhitelist removes a minter from the whitelist. Removing an
// entry that is not currently whitelisted is rejected.
func (s *WhitelistService) RemoveFromWhitelist(ctx context.Context, entry model.WhitelistEntry, callerID string) error {
	if err := s.validationUtil.ValidateWhitelistEntry(entry); err != nil {
		return fmt.Errorf("%w: %v", mintgate_errors.ErrInvalidEntryData, err)
	}

	if err := s.checkAuthority(ctx, callerID, entry.LicensorAssetID); err != nil {
		return err
	}

	changed, err := s.store.SetStatus(ctx, entry, false, callerID)
	if err != nil {
		logger.Error("Error removing from whitelist", zap.Error(err), zap.String("callerID", callerID))
		return fmt.Errorf("failed to remove from whitelist: %w", err)
	}
	if !changed {
		return fmt.Errorf("%w: %s", mintgate_errors.ErrNotInWhitelist, entry.MinterID)
	}

	// Update cache
	if err := s.cache.DeleteWhitelistStatus(ctx, entry.AuthorizationKey()); err != nil {
		logger.Warn("Failed to invalidate whitelist status cache", zap.Error(err), zap.String("minterID", entry.MinterID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "whitelist.removed", entry)

	logger.Info("Minter removed from whitelist",
		zap.String("minterID", entry.MinterID),
		zap.String("licensorAssetID", entry.LicensorAssetID),
		zap.Uint64("licenseTermsID", entry.LicenseTermsID),
		zap.String("callerID", callerID))
	return nil
}

// IsWhitelisted reports the allowed flag for an entry. Publicly queryable,
// no permission gate; never-added and removed entries read as false.
func (s *WhitelistService) IsWhitelisted(ctx context.Context, entry model.WhitelistEntry) (bool, error) {
	authKey := entry.AuthorizationKey()

	// Try to get from cache first
	cached, err := s.cache.GetWhitelistStatus(ctx, authKey)
	if err == nil && cached != nil {
		return *cached, nil
	}

	allowed, err := s.store.GetStatus(ctx, entry)
	if err != nil {
		logger.Error("Error reading whitelist status", zap.Error(err), zap.String("minterID", entry.MinterID))
		return false, mintgate_errors.ErrInternalServer
	}

	// Update cache
	if err := s.cache.SetWhitelistStatus(ctx, authKey, allowed); err != nil {
		logger.Warn("Failed to cache whitelist status", zap.Error(err), zap.String("minterID", entry.MinterID))
	}

	return allowed, nil
}

// ListWhitelistEntries retrieves stored entries for a licensor asset, with pagination
func (s *WhitelistService) ListWhitelistEntries(ctx context.Context, licensorAssetID string, limit, offset int) ([]*model.WhitelistRecord, error) {
	records, err := s.store.ListEntries(ctx, licensorAssetID, limit, offset)
	if err != nil {
		logger.Error("Error listing whitelist entries",
			zap.Error(err),
			zap.String("licensorAssetID", licensorAssetID),
			zap.Int("limit", limit),
			zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list whitelist entries: %w", err)
	}

	return records, nil
}

// BeforeMintLicenseTokens gates a mint attempt and returns the fee owed.
// The whitelist check is on the caller, never the receiver: a whitelisted
// caller may mint to any receiver.
func (s *WhitelistService) BeforeMintLicenseTokens(ctx context.Context, mc model.MintingContext) (*model.FeeQuote, error) {
	if mc.Amount < 0 {
		return nil, fmt.Errorf("%w: %d", mintgate_errors.ErrInvalidMintAmount, mc.Amount)
	}
	if err := s.validationUtil.ValidateMintingContext(mc); err != nil {
		return nil, fmt.Errorf("%w: %v", mintgate_errors.ErrInvalidEntryData, err)
	}

	entry := mc.WhitelistEntry()
	allowed, err := s.IsWhitelisted(ctx, entry)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.auditDecision(ctx, audit.ActionMintAuthorization, entry, false)
		if err := s.notificationSvc.NotifyMintRejected(ctx, mc.Caller, entry); err != nil {
			logger.Warn("Failed to send mint rejection notification", zap.Error(err), zap.String("caller", mc.Caller))
		}
		return nil, fmt.Errorf("%w: %s", mintgate_errors.ErrNotWhitelisted, mc.Caller)
	}

	quote, err := s.quoteFee(ctx, mc.LicenseTemplateID, mc.LicenseTermsID, mc.Amount)
	if err != nil {
		return nil, err
	}

	s.auditDecision(ctx, audit.ActionMintAuthorization, entry, true)

	logger.Info("Mint authorized",
		zap.String("caller", mc.Caller),
		zap.String("licensorAssetID", mc.LicensorAssetID),
		zap.Int64("amount", mc.Amount),
		zap.String("totalFee", quote.TotalFee.String()))
	return quote, nil
}

// BeforeRegisterDerivative gates linking a child asset to a parent under
// specific license terms. The whitelist slot is the parent's; the fee is
// for exactly one unit.
func (s *WhitelistService) BeforeRegisterDerivative(ctx context.Context, dc model.DerivativeContext) (*model.FeeQuote, error) {
	if err := s.validationUtil.ValidateDerivativeContext(dc); err != nil {
		return nil, fmt.Errorf("%w: %v", mintgate_errors.ErrInvalidEntryData, err)
	}

	entry := dc.WhitelistEntry()
	allowed, err := s.IsWhitelisted(ctx, entry)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.auditDecision(ctx, audit.ActionDerivativeAuthorize, entry, false)
		if err := s.notificationSvc.NotifyMintRejected(ctx, dc.Caller, entry); err != nil {
			logger.Warn("Failed to send rejection notification", zap.Error(err), zap.String("caller", dc.Caller))
		}
		return nil, fmt.Errorf("%w: %s", mintgate_errors.ErrNotWhitelisted, dc.Caller)
	}

	quote, err := s.quoteFee(ctx, dc.LicenseTemplateID, dc.LicenseTermsID, 1)
	if err != nil {
		return nil, err
	}

	s.auditDecision(ctx, audit.ActionDerivativeAuthorize, entry, true)

	logger.Info("Derivative registration authorized",
		zap.String("caller", dc.Caller),
		zap.String("childAssetID", dc.ChildAssetID),
		zap.String("parentAssetID", dc.ParentAssetID),
		zap.String("totalFee", quote.TotalFee.String()))
	return quote, nil
}

// CalculateMintingFee predicts the fee BeforeMintLicenseTokens would charge
// for the same arguments. No whitelist check, no state change: the quote is
// identical even for a caller that is not whitelisted.
func (s *WhitelistService) CalculateMintingFee(ctx context.Context, mc model.MintingContext) (*model.FeeQuote, error) {
	if mc.Amount < 0 {
		return nil, fmt.Errorf("%w: %d", mintgate_errors.ErrInvalidMintAmount, mc.Amount)
	}
	if err := s.validationUtil.ValidateMintingContext(mc); err != nil {
		return nil, fmt.Errorf("%w: %v", mintgate_errors.ErrInvalidEntryData, err)
	}

	return s.quoteFee(ctx, mc.LicenseTemplateID, mc.LicenseTermsID, mc.Amount)
}

// quoteFee is the single fee formula shared by the mint hook, the derivative
// hook and the predictor, so charged and predicted fees cannot drift.
func (s *WhitelistService) quoteFee(ctx context.Context, templateID string, termsID uint64, amount int64) (*model.FeeQuote, error) {
	perUnit, err := s.perUnitFee(ctx, templateID, termsID)
	if err != nil {
		return nil, err
	}

	return &model.FeeQuote{
		LicenseTemplateID: templateID,
		LicenseTermsID:    termsID,
		Amount:            amount,
		PerUnitFee:        perUnit,
		TotalFee:          perUnit.Mul(decimal.NewFromInt(amount)),
	}, nil
}

// perUnitFee always asks the provider first: quotes must reflect the
// provider's current fee at call time, so a fee change is visible on the
// very next quote. The Redis copy is a last-known-good fallback consulted
// only when the provider is unreachable, bounded by its TTL.
func (s *WhitelistService) perUnitFee(ctx context.Context, templateID string, termsID uint64) (decimal.Decimal, error) {
	fee, err := s.termsService.GetPerUnitMintingFee(ctx, templateID, termsID)
	if err != nil {
		if errors.Is(err, mintgate_errors.ErrTermsUnavailable) {
			cached, cacheErr := s.cache.GetPerUnitFee(ctx, templateID, termsID)
			if cacheErr == nil && cached != nil {
				logger.Warn("License terms provider unreachable, quoting last known per-unit fee",
					zap.Error(err),
					zap.String("templateID", templateID),
					zap.Uint64("termsID", termsID),
					zap.String("fee", cached.String()))
				return *cached, nil
			}
		}
		logger.Error("Error fetching per-unit minting fee",
			zap.Error(err),
			zap.String("templateID", templateID),
			zap.Uint64("termsID", termsID))
		return decimal.Zero, err
	}

	if err := s.cache.SetPerUnitFee(ctx, templateID, termsID, fee); err != nil {
		logger.Warn("Failed to cache per-unit fee", zap.Error(err), zap.String("templateID", templateID))
	}

	return fee, nil
}

func (s *WhitelistService) checkAuthority(ctx context.Context, callerID, licensorAssetID string) error {
	granted, err := s.authorityService.CheckPermission(ctx, callerID, licensorAssetID)
	if err != nil {
		logger.Error("Permission check failed",
			zap.Error(err),
			zap.String("callerID", callerID),
			zap.String("licensorAssetID", licensorAssetID))
		return err
	}
	if !granted {
		return fmt.Errorf("%w: %s has no delegated authority over asset %s",
			mintgate_errors.ErrPermissionDenied, callerID, licensorAssetID)
	}
	return nil
}

func (s *WhitelistService) auditDecision(ctx context.Context, action string, entry model.WhitelistEntry, granted bool) {
	details, _ := json.Marshal(entry)
	auditLog := audit.AuditLog{
		Timestamp:        time.Now(),
		ActorID:          entry.MinterID,
		Action:           action,
		LicensorAssetID:  entry.LicensorAssetID,
		MinterID:         entry.MinterID,
		AuthorizationKey: entry.AuthorizationKey(),
		AccessGranted:    granted,
		ChangeDetails:    details,
	}
	if err := s.auditService.LogAccess(ctx, auditLog); err != nil {
		logger.Warn("Failed to audit authorization decision",
			zap.Error(err),
			zap.String("action", action),
			zap.String("minterID", entry.MinterID))
	}
}
