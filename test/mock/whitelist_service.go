// test/mock/whitelist_service.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/mintgate/model"
)

// MockWhitelistService is a mock implementation of service.IWhitelistService
type MockWhitelistService struct {
	mock.Mock
}

func (m *MockWhitelistService) AddToWhitelist(ctx context.Context, entry model.WhitelistEntry, callerID string) error {
	args := m.Called(ctx, entry, callerID)
	return args.Error(0)
}

func (m *MockWhitelistService) BulkAddToWhitelist(ctx context.Context, entries []model.WhitelistEntry, callerID string) error {
	args := m.Called(ctx, entries, callerID)
	return args.Error(0)
}

func (m *MockWhitelistService) RemoveFromWhitelist(ctx context.Context, entry model.WhitelistEntry, callerID string) error {
	args := m.Called(ctx, entry, callerID)
	return args.Error(0)
}

func (m *MockWhitelistService) IsWhitelisted(ctx context.Context, entry model.WhitelistEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockWhitelistService) ListWhitelistEntries(ctx context.Context, licensorAssetID string, limit, offset int) ([]*model.WhitelistRecord, error) {
	args := m.Called(ctx, licensorAssetID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WhitelistRecord), args.Error(1)
}

func (m *MockWhitelistService) BeforeMintLicenseTokens(ctx context.Context, mc model.MintingContext) (*model.FeeQuote, error) {
	args := m.Called(ctx, mc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeeQuote), args.Error(1)
}

func (m *MockWhitelistService) BeforeRegisterDerivative(ctx context.Context, dc model.DerivativeContext) (*model.FeeQuote, error) {
	args := m.Called(ctx, dc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeeQuote), args.Error(1)
}

func (m *MockWhitelistService) CalculateMintingFee(ctx context.Context, mc model.MintingContext) (*model.FeeQuote, error) {
	args := m.Called(ctx, mc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeeQuote), args.Error(1)
}
