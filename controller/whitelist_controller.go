// controller/whitelist_controller.go
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mintgate_errors "github.com/dev-mohitbeniwal/mintgate/errors"
	"github.com/dev-mohitbeniwal/mintgate/model"
	"github.com/dev-mohitbeniwal/mintgate/service"
	"github.com/dev-mohitbeniwal/mintgate/util"
	helper_util "github.com/dev-mohitbeniwal/mintgate/util/helper"
)

type WhitelistController struct {
	whitelistService service.IWhitelistService
}

func NewWhitelistController(whitelistService service.IWhitelistService) *WhitelistController {
	return &WhitelistController{
		whitelistService: whitelistService,
	}
}

type bulkWhitelistRequest struct {
	Entries []model.WhitelistEntry `json:"entries" binding:"required"`
}

// RegisterRoutes registers the API routes
func (wc *WhitelistController) RegisterRoutes(r *gin.RouterGroup) {
	whitelist := r.Group("/whitelist")
	{
		whitelist.POST("", wc.AddToWhitelist)
		whitelist.POST("/bulk", wc.BulkAddToWhitelist)
		whitelist.DELETE("", wc.RemoveFromWhitelist)
		whitelist.GET("/check", wc.IsWhitelisted)
		whitelist.GET("", wc.ListWhitelistEntries)
	}
}

// AddToWhitelist endpoint
func (wc *WhitelistController) AddToWhitelist(c *gin.Context) {
	var entry model.WhitelistEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid whitelist entry data", mintgate_errors.ErrInvalidEntryData)
		return
	}
	callerID, err := util.GetCallerIDFromContext(c)
	if err != nil || callerID == "" {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", mintgate_errors.ErrUnauthorized)
		return
	}

	if err := wc.whitelistService.AddToWhitelist(c, entry, callerID); err != nil {
		switch {
		case errors.Is(err, mintgate_errors.ErrPermissionDenied):
			util.RespondWithError(c, http.StatusForbidden, "No delegated authority over licensor asset", err)
		case errors.Is(err, mintgate_errors.ErrAlreadyWhitelisted):
			util.RespondWithError(c, http.StatusConflict, "Minter already whitelisted", err)
		case errors.Is(err, mintgate_errors.ErrInvalidEntryData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid whitelist entry data", err)
		case errors.Is(err, mintgate_errors.ErrAuthorityUnavailable):
			util.RespondWithError(c, http.StatusBadGateway, "Access control authority unavailable", err)
		case errors.Is(err, mintgate_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to add to whitelist", mintgate_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "whitelisted", "entry": entry})
}

// BulkAddToWhitelist endpoint
func (wc *WhitelistController) BulkAddToWhitelist(c *gin.Context) {
	var req bulkWhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid whitelist entry data", mintgate_errors.ErrInvalidEntryData)
		return
	}
	callerID, err := util.GetCallerIDFromContext(c)
	if err != nil || callerID == "" {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", mintgate_errors.ErrUnauthorized)
		return
	}

	if err := wc.whitelistService.BulkAddToWhitelist(c, req.Entries, callerID); err != nil {
		switch {
		case errors.Is(err, mintgate_errors.ErrPermissionDenied):
			util.RespondWithError(c, http.StatusForbidden, "No delegated authority over licensor asset", err)
		case errors.Is(err, mintgate_errors.ErrAlreadyWhitelisted):
			util.RespondWithError(c, http.StatusConflict, "Minter already whitelisted", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to bulk add to whitelist", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "whitelisted", "count": len(req.Entries)})
}

// RemoveFromWhitelist endpoint
func (wc *WhitelistController) RemoveFromWhitelist(c *gin.Context) {
	var entry model.WhitelistEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid whitelist entry data", mintgate_errors.ErrInvalidEntryData)
		return
	}
	callerID, err := util.GetCallerIDFromContext(c)
	if err != nil || callerID == "" {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", mintgate_errors.ErrUnauthorized)
		return
	}

	if err := wc.whitelistService.RemoveFromWhitelist(c, entry, callerID); err != nil {
		switch {
		case errors.Is(err, mintgate_errors.ErrPermissionDenied):
			util.RespondWithError(c, http.StatusForbidden, "No delegated authority over licensor asset", err)
		case errors.Is(err, mintgate_errors.ErrNotInWhitelist):
			util.RespondWithError(c, http.StatusNotFound, "Minter not in whitelist", err)
		case errors.Is(err, mintgate_errors.ErrInvalidEntryData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid whitelist entry data", err)
		case errors.Is(err, mintgate_errors.ErrAuthorityUnavailable):
			util.RespondWithError(c, http.StatusBadGateway, "Access control authority unavailable", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to remove from whitelist", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// IsWhitelisted endpoint
func (wc *WhitelistController) IsWhitelisted(c *gin.Context) {
	entry, ok := entryFromQuery(c)
	if !ok {
		return
	}

	allowed, err := wc.whitelistService.IsWhitelisted(c, entry)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to check whitelist", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"whitelisted": allowed})
}

// ListWhitelistEntries endpoint
func (wc *WhitelistController) ListWhitelistEntries(c *gin.Context) {
	licensorAssetID := c.Query("licensor_asset_id")
	if licensorAssetID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "licensor_asset_id is required", mintgate_errors.ErrInvalidEntryData)
		return
	}

	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", mintgate_errors.ErrInvalidPagination)
		return
	}

	records, err := wc.whitelistService.ListWhitelistEntries(c, licensorAssetID, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list whitelist entries", err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func entryFromQuery(c *gin.Context) (model.WhitelistEntry, bool) {
	termsID, err := strconv.ParseUint(c.DefaultQuery("license_terms_id", "0"), 10, 64)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid license_terms_id", mintgate_errors.ErrInvalidEntryData)
		return model.WhitelistEntry{}, false
	}

	entry := model.WhitelistEntry{
		LicensorAssetID:   c.Query("licensor_asset_id"),
		LicenseTemplateID: c.Query("license_template_id"),
		LicenseTermsID:    termsID,
		MinterID:          c.Query("minter_id"),
	}
	if entry.LicensorAssetID == "" || entry.LicenseTemplateID == "" || entry.MinterID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "Missing whitelist key fields", mintgate_errors.ErrInvalidEntryData)
		return model.WhitelistEntry{}, false
	}

	return entry, true
}
