package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/mintgate/controller"
	mintgate_errors "github.com/dev-mohitbeniwal/mintgate/errors"
	"github.com/dev-mohitbeniwal/mintgate/model"
	"github.com/dev-mohitbeniwal/mintgate/test/mock"
)

func newHookRouter(svc *mock.MockWhitelistService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	hc := controller.NewHookController(svc)
	hc.RegisterRoutes(r.Group("/api/v1"))
	return r
}

const mintBody = `{
	"caller": "minter-B",
	"licensor_asset_id": "asset-A",
	"license_template_id": "template-T",
	"license_terms_id": 1,
	"amount": 5,
	"receiver": "receiver-R"
}`

const derivativeBody = `{
	"caller": "minter-B",
	"child_asset_id": "asset-child",
	"parent_asset_id": "asset-A",
	"license_template_id": "template-T",
	"license_terms_id": 1
}`

func quoteFor(amount int64) *model.FeeQuote {
	perUnit := decimal.NewFromInt(100)
	return &model.FeeQuote{
		LicenseTemplateID: "template-T",
		LicenseTermsID:    1,
		Amount:            amount,
		PerUnitFee:        perUnit,
		TotalFee:          perUnit.Mul(decimal.NewFromInt(amount)),
	}
}

func TestBeforeMintEndpoint(t *testing.T) {
	t.Run("Authorized", func(t *testing.T) {
		svc := new(mock.MockWhitelistService)
		svc.On("BeforeMintLicenseTokens", testify_mock.Anything, testify_mock.Anything).Return(quoteFor(5), nil)
		router := newHookRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/hooks/before-mint", strings.NewReader(mintBody))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_fee":"500"`)
	})

	t.Run("NotWhitelisted", func(t *testing.T) {
		svc := new(mock.MockWhitelistService)
		svc.On("BeforeMintLicenseTokens", testify_mock.Anything, testify_mock.Anything).
			Return(nil, mintgate_errors.ErrNotWhitelisted)
		router := newHookRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/hooks/before-mint", strings.NewReader(mintBody))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		svc := new(mock.MockWhitelistService)
		svc.On("BeforeMintLicenseTokens", testify_mock.Anything, testify_mock.Anything).
			Return(nil, mintgate_errors.ErrInvalidMintAmount)
		router := newHookRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/hooks/before-mint", strings.NewReader(mintBody))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("TermsProviderDown", func(t *testing.T) {
		svc := new(mock.MockWhitelistService)
		svc.On("BeforeMintLicenseTokens", testify_mock.Anything, testify_mock.Anything).
			Return(nil, mintgate_errors.ErrTermsUnavailable)
		router := newHookRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/hooks/before-mint", strings.NewReader(mintBody))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("MissingCaller", func(t *testing.T) {
		svc := new(mock.MockWhitelistService)
		router := newHookRouter(svc)

		w := httptest.NewRecorder()
		body := `{"licensor_asset_id": "asset-A", "license_template_id": "template-T"}`
		req, _ := http.NewRequest("POST", "/api/v1/hooks/before-mint", strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "BeforeMintLicenseTokens")
	})
}

func TestBeforeRegisterDerivativeEndpoint(t *testing.T) {
	t.Run("Authorized", func(t *testing.T) {
		svc := new(mock.MockWhitelistService)
		svc.On("BeforeRegisterDerivative", testify_mock.Anything, testify_mock.Anything).Return(quoteFor(1), nil)
		router := newHookRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/hooks/before-register-derivative", strings.NewReader(derivativeBody))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_fee":"100"`)
	})

	t.Run("NotWhitelisted", func(t *testing.T) {
		svc := new(mock.MockWhitelistService)
		svc.On("BeforeRegisterDerivative", testify_mock.Anything, testify_mock.Anything).
			Return(nil, mintgate_errors.ErrNotWhitelisted)
		router := newHookRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/hooks/before-register-derivative", strings.NewReader(derivativeBody))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCalculateMintingFeeEndpoint(t *testing.T) {
	svc := new(mock.MockWhitelistService)
	svc.On("CalculateMintingFee", testify_mock.Anything, testify_mock.Anything).Return(quoteFor(5), nil)
	router := newHookRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/hooks/minting-fee", strings.NewReader(mintBody))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"per_unit_fee":"100"`)
	assert.Contains(t, w.Body.String(), `"total_fee":"500"`)
}

func TestCapabilitiesEndpoint(t *testing.T) {
	svc := new(mock.MockWhitelistService)
	router := newHookRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/hooks/capabilities", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "caller-whitelist-hook")
	assert.Contains(t, w.Body.String(), "beforeMintLicenseTokens")
}
