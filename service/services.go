// service/services.go
package service

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/shopspring/decimal"

	"github.com/dev-mohitbeniwal/mintgate/audit"
	"github.com/dev-mohitbeniwal/mintgate/authority"
	"github.com/dev-mohitbeniwal/mintgate/dao"
	"github.com/dev-mohitbeniwal/mintgate/model"
	"github.com/dev-mohitbeniwal/mintgate/terms"
	"github.com/dev-mohitbeniwal/mintgate/util"
)

// IWhitelistService is the full surface exposed to the controllers: the
// allow-list management operations plus the licensing hook entry points.
type IWhitelistService interface {
	AddToWhitelist(ctx context.Context, entry model.WhitelistEntry, callerID string) error
	BulkAddToWhitelist(ctx context.Context, entries []model.WhitelistEntry, callerID string) error
	RemoveFromWhitelist(ctx context.Context, entry model.WhitelistEntry, callerID string) error
	IsWhitelisted(ctx context.Context, entry model.WhitelistEntry) (bool, error)
	ListWhitelistEntries(ctx context.Context, licensorAssetID string, limit, offset int) ([]*model.WhitelistRecord, error)
	BeforeMintLicenseTokens(ctx context.Context, mc model.MintingContext) (*model.FeeQuote, error)
	BeforeRegisterDerivative(ctx context.Context, dc model.DerivativeContext) (*model.FeeQuote, error)
	CalculateMintingFee(ctx context.Context, mc model.MintingContext) (*model.FeeQuote, error)
}

// WhitelistStore is the persistence contract the service depends on,
// implemented by dao.WhitelistDAO. SetStatus must apply its precondition
// atomically and report whether the flag flipped, so that exactly one of
// two concurrent adds of a key observes changed=true.
type WhitelistStore interface {
	GetStatus(ctx context.Context, entry model.WhitelistEntry) (bool, error)
	SetStatus(ctx context.Context, entry model.WhitelistEntry, allowed bool, actorID string) (changed bool, err error)
	ListEntries(ctx context.Context, licensorAssetID string, limit, offset int) ([]*model.WhitelistRecord, error)
}

// StatusCache is the read-through cache contract, implemented by
// util.CacheService on top of Redis.
type StatusCache interface {
	GetWhitelistStatus(ctx context.Context, authKey string) (*bool, error)
	SetWhitelistStatus(ctx context.Context, authKey string, allowed bool) error
	DeleteWhitelistStatus(ctx context.Context, authKey string) error
	GetPerUnitFee(ctx context.Context, templateID string, termsID uint64) (*decimal.Decimal, error)
	SetPerUnitFee(ctx context.Context, templateID string, termsID uint64, fee decimal.Decimal) error
}

type Services struct {
	Whitelist IWhitelistService
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	authorityService authority.Service,
	termsService terms.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	whitelistDAO := dao.NewWhitelistDAO(driver, auditService)

	services := &Services{
		Whitelist: NewWhitelistService(
			whitelistDAO,
			authorityService,
			termsService,
			auditService,
			validationUtil,
			cacheService,
			notificationSvc,
			eventBus,
		),
	}

	return services, nil
}
