package service_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testify_mock "github.com/stretchr/testify/mock"

	mintgate_errors "github.com/dev-mohitbeniwal/mintgate/errors"
	logger "github.com/dev-mohitbeniwal/mintgate/logging"
	"github.com/dev-mohitbeniwal/mintgate/model"
	"github.com/dev-mohitbeniwal/mintgate/service"
	"github.com/dev-mohitbeniwal/mintgate/test/mock"
	"github.com/dev-mohitbeniwal/mintgate/util"
)

const (
	ownerID    = "owner-O"
	strangerID = "stranger-S"
	minterID   = "minter-B"
	assetID    = "asset-A"
	templateID = "template-T"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	os.Exit(m.Run())
}

type serviceFixture struct {
	svc       *service.WhitelistService
	store     *mock.InMemoryWhitelistStore
	authority *mock.MockAuthorityService
	terms     *mock.MockTermsService
	audit     *mock.MockAuditService
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	termsSvc := new(mock.MockTermsService)
	termsSvc.On("GetPerUnitMintingFee", testify_mock.Anything, templateID, testify_mock.Anything).
		Return(decimal.NewFromInt(100), nil).Maybe()

	return newFixtureWithTerms(t, termsSvc, mock.NewInMemoryWhitelistStore())
}

func newFixtureWithTerms(t *testing.T, termsSvc *mock.MockTermsService, store *mock.InMemoryWhitelistStore) *serviceFixture {
	t.Helper()

	authoritySvc := new(mock.MockAuthorityService)
	authoritySvc.On("CheckPermission", testify_mock.Anything, ownerID, testify_mock.Anything).Return(true, nil).Maybe()
	authoritySvc.On("CheckPermission", testify_mock.Anything, strangerID, testify_mock.Anything).Return(false, nil).Maybe()

	auditSvc := new(mock.MockAuditService)
	auditSvc.On("LogAccess", testify_mock.Anything, testify_mock.Anything).Return(nil).Maybe()

	svc := service.NewWhitelistService(
		store,
		authoritySvc,
		termsSvc,
		auditSvc,
		util.NewValidationUtil(),
		mock.NewInMemoryStatusCache(),
		util.NewNotificationService(),
		util.NewEventBus(),
	)

	return &serviceFixture{
		svc:       svc,
		store:     store,
		authority: authoritySvc,
		terms:     termsSvc,
		audit:     auditSvc,
	}
}

func entry(termsID uint64, minterID string) model.WhitelistEntry {
	return model.WhitelistEntry{
		LicensorAssetID:   assetID,
		LicenseTemplateID: templateID,
		LicenseTermsID:    termsID,
		MinterID:          minterID,
	}
}

func TestWhitelistDefaultDeny(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	allowed, err := f.svc.IsWhitelisted(ctx, entry(1, minterID))
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAddToWhitelist(t *testing.T) {
	ctx := context.Background()

	t.Run("AddThenCheck", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		allowed, err := f.svc.IsWhitelisted(ctx, entry(1, minterID))
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("RepeatAddRejected", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		err := f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID)
		assert.ErrorIs(t, err, mintgate_errors.ErrAlreadyWhitelisted)
	})

	t.Run("PermissionGated", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.AddToWhitelist(ctx, entry(1, minterID), strangerID)
		assert.ErrorIs(t, err, mintgate_errors.ErrPermissionDenied)

		allowed, err := f.svc.IsWhitelisted(ctx, entry(1, minterID))
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("InvalidEntryRejected", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.AddToWhitelist(ctx, model.WhitelistEntry{MinterID: minterID}, ownerID)
		assert.ErrorIs(t, err, mintgate_errors.ErrInvalidEntryData)
	})

	t.Run("TermsIsolation", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		allowed, err := f.svc.IsWhitelisted(ctx, entry(2, minterID))
		require.NoError(t, err)
		assert.False(t, allowed, "whitelisting for terms 1 must not whitelist for terms 2")

		allowed, err = f.svc.IsWhitelisted(ctx, entry(1, "minter-other"))
		require.NoError(t, err)
		assert.False(t, allowed, "whitelisting one minter must not whitelist another")
	})
}

func TestRemoveFromWhitelist(t *testing.T) {
	ctx := context.Background()

	t.Run("RemoveThenCheck", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))
		require.NoError(t, f.svc.RemoveFromWhitelist(ctx, entry(1, minterID), ownerID))

		allowed, err := f.svc.IsWhitelisted(ctx, entry(1, minterID))
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("RemoveAbsentRejected", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.RemoveFromWhitelist(ctx, entry(1, minterID), ownerID)
		assert.ErrorIs(t, err, mintgate_errors.ErrNotInWhitelist)
	})

	t.Run("RemoveRemovedRejected", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))
		require.NoError(t, f.svc.RemoveFromWhitelist(ctx, entry(1, minterID), ownerID))

		err := f.svc.RemoveFromWhitelist(ctx, entry(1, minterID), ownerID)
		assert.ErrorIs(t, err, mintgate_errors.ErrNotInWhitelist)
	})

	t.Run("PermissionGated", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		err := f.svc.RemoveFromWhitelist(ctx, entry(1, minterID), strangerID)
		assert.ErrorIs(t, err, mintgate_errors.ErrPermissionDenied)
	})
}

func TestBeforeMintLicenseTokens(t *testing.T) {
	ctx := context.Background()

	mintCtx := func(caller string, amount int64) model.MintingContext {
		return model.MintingContext{
			Caller:            caller,
			LicensorAssetID:   assetID,
			LicenseTemplateID: templateID,
			LicenseTermsID:    1,
			Amount:            amount,
			Receiver:          "receiver-R",
		}
	}

	t.Run("FeeFormula", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		quote, err := f.svc.BeforeMintLicenseTokens(ctx, mintCtx(minterID, 5))
		require.NoError(t, err)
		assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(500)))
		assert.True(t, quote.PerUnitFee.Equal(decimal.NewFromInt(100)))

		quote, err = f.svc.BeforeMintLicenseTokens(ctx, mintCtx(minterID, 1))
		require.NoError(t, err)
		assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(100)))
	})

	t.Run("ZeroAmountPermitted", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		quote, err := f.svc.BeforeMintLicenseTokens(ctx, mintCtx(minterID, 0))
		require.NoError(t, err)
		assert.True(t, quote.TotalFee.IsZero())
	})

	t.Run("NegativeAmountRejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.BeforeMintLicenseTokens(ctx, mintCtx(minterID, -1))
		assert.ErrorIs(t, err, mintgate_errors.ErrInvalidMintAmount)
	})

	t.Run("NotWhitelistedRejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.BeforeMintLicenseTokens(ctx, mintCtx(minterID, 5))
		assert.ErrorIs(t, err, mintgate_errors.ErrNotWhitelisted)
	})

	t.Run("CheckIsOnCallerNotReceiver", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		// A non-whitelisted caller is rejected even when the receiver is whitelisted
		mc := mintCtx("caller-unknown", 5)
		mc.Receiver = minterID
		_, err := f.svc.BeforeMintLicenseTokens(ctx, mc)
		assert.ErrorIs(t, err, mintgate_errors.ErrNotWhitelisted)

		// A whitelisted caller may mint to an arbitrary receiver
		mc = mintCtx(minterID, 5)
		mc.Receiver = "receiver-arbitrary"
		quote, err := f.svc.BeforeMintLicenseTokens(ctx, mc)
		require.NoError(t, err)
		assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(500)))
	})

	t.Run("AuxDataIgnored", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		plain := mintCtx(minterID, 5)
		withAux := mintCtx(minterID, 5)
		withAux.AuxData = []byte{0xde, 0xad, 0xbe, 0xef}

		a, err := f.svc.BeforeMintLicenseTokens(ctx, plain)
		require.NoError(t, err)
		b, err := f.svc.BeforeMintLicenseTokens(ctx, withAux)
		require.NoError(t, err)
		assert.True(t, a.TotalFee.Equal(b.TotalFee))
	})
}

func TestBeforeRegisterDerivative(t *testing.T) {
	ctx := context.Background()

	derivCtx := func(caller string) model.DerivativeContext {
		return model.DerivativeContext{
			Caller:            caller,
			ChildAssetID:      "asset-child",
			ParentAssetID:     assetID,
			LicenseTemplateID: templateID,
			LicenseTermsID:    1,
		}
	}

	t.Run("ChargesExactlyOneUnit", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		quote, err := f.svc.BeforeRegisterDerivative(ctx, derivCtx(minterID))
		require.NoError(t, err)
		assert.Equal(t, int64(1), quote.Amount)
		assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(100)))
	})

	t.Run("NotWhitelistedRejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.BeforeRegisterDerivative(ctx, derivCtx(minterID))
		assert.ErrorIs(t, err, mintgate_errors.ErrNotWhitelisted)
	})
}

func TestCalculateMintingFee(t *testing.T) {
	ctx := context.Background()

	mintCtx := func(caller string, amount int64) model.MintingContext {
		return model.MintingContext{
			Caller:            caller,
			LicensorAssetID:   assetID,
			LicenseTemplateID: templateID,
			LicenseTermsID:    1,
			Amount:            amount,
		}
	}

	t.Run("MatchesBeforeMint", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		predicted, err := f.svc.CalculateMintingFee(ctx, mintCtx(minterID, 5))
		require.NoError(t, err)
		charged, err := f.svc.BeforeMintLicenseTokens(ctx, mintCtx(minterID, 5))
		require.NoError(t, err)

		assert.True(t, predicted.TotalFee.Equal(charged.TotalFee))
		assert.True(t, predicted.PerUnitFee.Equal(charged.PerUnitFee))
	})

	t.Run("NoWhitelistCheck", func(t *testing.T) {
		f := newFixture(t)

		// caller is not whitelisted; the predictor still quotes the fee
		quote, err := f.svc.CalculateMintingFee(ctx, mintCtx("caller-unknown", 5))
		require.NoError(t, err)
		assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(500)))
	})

	t.Run("NegativeAmountRejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CalculateMintingFee(ctx, mintCtx(minterID, -3))
		assert.ErrorIs(t, err, mintgate_errors.ErrInvalidMintAmount)
	})

	t.Run("MalformedContextRejected", func(t *testing.T) {
		f := newFixture(t)

		// same validation as BeforeMintLicenseTokens, so the two entry
		// points reject malformed contexts identically
		mc := mintCtx(minterID, 5)
		mc.LicenseTemplateID = ""
		_, err := f.svc.CalculateMintingFee(ctx, mc)
		assert.ErrorIs(t, err, mintgate_errors.ErrInvalidEntryData)

		_, mintErr := f.svc.BeforeMintLicenseTokens(ctx, mc)
		assert.ErrorIs(t, mintErr, mintgate_errors.ErrInvalidEntryData)
	})
}

func TestFeeQuotesTrackProviderState(t *testing.T) {
	ctx := context.Background()

	mc := model.MintingContext{
		Caller:            minterID,
		LicensorAssetID:   assetID,
		LicenseTemplateID: templateID,
		LicenseTermsID:    1,
		Amount:            5,
		Receiver:          "receiver-R",
	}

	t.Run("FeeChangeVisibleOnNextQuote", func(t *testing.T) {
		termsSvc := new(mock.MockTermsService)
		termsSvc.On("GetPerUnitMintingFee", testify_mock.Anything, templateID, testify_mock.Anything).
			Return(decimal.NewFromInt(100), nil).Once()
		termsSvc.On("GetPerUnitMintingFee", testify_mock.Anything, templateID, testify_mock.Anything).
			Return(decimal.NewFromInt(200), nil)
		f := newFixtureWithTerms(t, termsSvc, mock.NewInMemoryWhitelistStore())
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		quote, err := f.svc.BeforeMintLicenseTokens(ctx, mc)
		require.NoError(t, err)
		require.True(t, quote.TotalFee.Equal(decimal.NewFromInt(500)))

		// provider raised the fee; the very next quote must charge it
		quote, err = f.svc.BeforeMintLicenseTokens(ctx, mc)
		require.NoError(t, err)
		assert.True(t, quote.PerUnitFee.Equal(decimal.NewFromInt(200)))
		assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("ProviderOutageQuotesLastKnownFee", func(t *testing.T) {
		termsSvc := new(mock.MockTermsService)
		termsSvc.On("GetPerUnitMintingFee", testify_mock.Anything, templateID, testify_mock.Anything).
			Return(decimal.NewFromInt(100), nil).Once()
		termsSvc.On("GetPerUnitMintingFee", testify_mock.Anything, templateID, testify_mock.Anything).
			Return(decimal.Zero, fmt.Errorf("%w: connection refused", mintgate_errors.ErrTermsUnavailable))
		f := newFixtureWithTerms(t, termsSvc, mock.NewInMemoryWhitelistStore())
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		quote, err := f.svc.BeforeMintLicenseTokens(ctx, mc)
		require.NoError(t, err)
		require.True(t, quote.TotalFee.Equal(decimal.NewFromInt(500)))

		quote, err = f.svc.BeforeMintLicenseTokens(ctx, mc)
		require.NoError(t, err)
		assert.True(t, quote.TotalFee.Equal(decimal.NewFromInt(500)), "outage falls back to the last fee the provider served")
	})

	t.Run("OutageWithNoHistoryFails", func(t *testing.T) {
		termsSvc := new(mock.MockTermsService)
		termsSvc.On("GetPerUnitMintingFee", testify_mock.Anything, templateID, testify_mock.Anything).
			Return(decimal.Zero, fmt.Errorf("%w: connection refused", mintgate_errors.ErrTermsUnavailable))
		f := newFixtureWithTerms(t, termsSvc, mock.NewInMemoryWhitelistStore())
		require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))

		_, err := f.svc.BeforeMintLicenseTokens(ctx, mc)
		assert.ErrorIs(t, err, mintgate_errors.ErrTermsUnavailable)
	})
}

func TestConcurrentAddsSingleWinner(t *testing.T) {
	ctx := context.Background()

	// two service instances sharing one store, as replicas would
	store := mock.NewInMemoryWhitelistStore()
	fixtures := make([]*serviceFixture, 2)
	for i := range fixtures {
		termsSvc := new(mock.MockTermsService)
		termsSvc.On("GetPerUnitMintingFee", testify_mock.Anything, templateID, testify_mock.Anything).
			Return(decimal.NewFromInt(100), nil).Maybe()
		fixtures[i] = newFixtureWithTerms(t, termsSvc, store)
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, 2)
	for i, f := range fixtures {
		wg.Add(1)
		go func(i int, f *serviceFixture) {
			defer wg.Done()
			<-start
			errs[i] = f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID)
		}(i, f)
	}
	close(start)
	wg.Wait()

	rejected := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, mintgate_errors.ErrAlreadyWhitelisted)
			rejected++
		}
	}
	assert.Equal(t, 1, rejected, "exactly one of two concurrent adds must observe AlreadyWhitelisted")

	allowed, err := fixtures[0].svc.IsWhitelisted(ctx, entry(1, minterID))
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestWhitelistEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// add minter B for (asset A, template T, terms 1)
	require.NoError(t, f.svc.AddToWhitelist(ctx, entry(1, minterID), ownerID))
	allowed, err := f.svc.IsWhitelisted(ctx, entry(1, minterID))
	require.NoError(t, err)
	require.True(t, allowed)

	// mint 5 units at per-unit fee 100
	quote, err := f.svc.BeforeMintLicenseTokens(ctx, model.MintingContext{
		Caller:            minterID,
		LicensorAssetID:   assetID,
		LicenseTemplateID: templateID,
		LicenseTermsID:    1,
		Amount:            5,
		Receiver:          "receiver-R",
	})
	require.NoError(t, err)
	require.True(t, quote.TotalFee.Equal(decimal.NewFromInt(500)))

	// remove B, then the same mint attempt is rejected
	require.NoError(t, f.svc.RemoveFromWhitelist(ctx, entry(1, minterID), ownerID))
	allowed, err = f.svc.IsWhitelisted(ctx, entry(1, minterID))
	require.NoError(t, err)
	require.False(t, allowed)

	_, err = f.svc.BeforeMintLicenseTokens(ctx, model.MintingContext{
		Caller:            minterID,
		LicensorAssetID:   assetID,
		LicenseTemplateID: templateID,
		LicenseTermsID:    1,
		Amount:            5,
		Receiver:          "receiver-R",
	})
	assert.ErrorIs(t, err, mintgate_errors.ErrNotWhitelisted)
}

func TestBulkAddToWhitelist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entries := []model.WhitelistEntry{
		entry(1, "minter-1"),
		entry(1, "minter-2"),
		entry(2, "minter-1"),
	}
	require.NoError(t, f.svc.BulkAddToWhitelist(ctx, entries, ownerID))

	for _, e := range entries {
		allowed, err := f.svc.IsWhitelisted(ctx, e)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}
