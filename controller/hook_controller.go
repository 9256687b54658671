// controller/hook_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mintgate_errors "github.com/dev-mohitbeniwal/mintgate/errors"
	"github.com/dev-mohitbeniwal/mintgate/model"
	"github.com/dev-mohitbeniwal/mintgate/service"
	"github.com/dev-mohitbeniwal/mintgate/util"
)

// HookController exposes the extension points the external licensing module
// invokes around minting and derivative registration.
type HookController struct {
	whitelistService service.IWhitelistService
}

func NewHookController(whitelistService service.IWhitelistService) *HookController {
	return &HookController{
		whitelistService: whitelistService,
	}
}

// hookCapability is the static capability descriptor advertised to the
// licensing module.
var hookCapability = model.Capability{
	Name:       "caller-whitelist-hook",
	Version:    "1.0.0",
	Interfaces: []string{"LicensingHook"},
	Operations: []string{
		"beforeMintLicenseTokens",
		"beforeRegisterDerivative",
		"calculateMintingFee",
	},
}

// RegisterRoutes registers the API routes
func (hc *HookController) RegisterRoutes(r *gin.RouterGroup) {
	hooks := r.Group("/hooks")
	{
		hooks.POST("/before-mint", hc.BeforeMintLicenseTokens)
		hooks.POST("/before-register-derivative", hc.BeforeRegisterDerivative)
		hooks.POST("/minting-fee", hc.CalculateMintingFee)
		hooks.GET("/capabilities", hc.Capabilities)
	}
}

// BeforeMintLicenseTokens endpoint
func (hc *HookController) BeforeMintLicenseTokens(c *gin.Context) {
	var mc model.MintingContext
	if err := c.ShouldBindJSON(&mc); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid minting context", mintgate_errors.ErrInvalidEntryData)
		return
	}

	quote, err := hc.whitelistService.BeforeMintLicenseTokens(c, mc)
	if err != nil {
		hc.respondHookError(c, err, "Failed to authorize mint")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// BeforeRegisterDerivative endpoint
func (hc *HookController) BeforeRegisterDerivative(c *gin.Context) {
	var dc model.DerivativeContext
	if err := c.ShouldBindJSON(&dc); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid derivative context", mintgate_errors.ErrInvalidEntryData)
		return
	}

	quote, err := hc.whitelistService.BeforeRegisterDerivative(c, dc)
	if err != nil {
		hc.respondHookError(c, err, "Failed to authorize derivative registration")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// CalculateMintingFee endpoint
func (hc *HookController) CalculateMintingFee(c *gin.Context) {
	var mc model.MintingContext
	if err := c.ShouldBindJSON(&mc); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid minting context", mintgate_errors.ErrInvalidEntryData)
		return
	}

	quote, err := hc.whitelistService.CalculateMintingFee(c, mc)
	if err != nil {
		hc.respondHookError(c, err, "Failed to calculate minting fee")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// Capabilities endpoint
func (hc *HookController) Capabilities(c *gin.Context) {
	c.JSON(http.StatusOK, hookCapability)
}

func (hc *HookController) respondHookError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, mintgate_errors.ErrNotWhitelisted):
		util.RespondWithError(c, http.StatusForbidden, "Caller not whitelisted for license", err)
	case errors.Is(err, mintgate_errors.ErrInvalidMintAmount):
		util.RespondWithError(c, http.StatusBadRequest, "Mint amount must be non-negative", err)
	case errors.Is(err, mintgate_errors.ErrInvalidEntryData):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid hook context data", err)
	case errors.Is(err, mintgate_errors.ErrTermsUnavailable):
		util.RespondWithError(c, http.StatusBadGateway, "License terms provider unavailable", err)
	case errors.Is(err, mintgate_errors.ErrInvalidFeeAmount):
		util.RespondWithError(c, http.StatusBadGateway, "License terms provider returned an invalid fee", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, err)
	}
}
