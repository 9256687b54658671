// test/mock/collaborators.go
package mock

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAuthorityService is a mock implementation of authority.Service
type MockAuthorityService struct {
	mock.Mock
}

func (m *MockAuthorityService) CheckPermission(ctx context.Context, identity, licensorAssetID string) (bool, error) {
	args := m.Called(ctx, identity, licensorAssetID)
	return args.Bool(0), args.Error(1)
}

// MockTermsService is a mock implementation of terms.Service
type MockTermsService struct {
	mock.Mock
}

func (m *MockTermsService) GetPerUnitMintingFee(ctx context.Context, licenseTemplateID string, licenseTermsID uint64) (decimal.Decimal, error) {
	args := m.Called(ctx, licenseTemplateID, licenseTermsID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
