// model/hook.go
package model

import (
	"github.com/shopspring/decimal"
)

// MintingContext carries the arguments the licensing module passes to the
// hook before minting license tokens. Caller is the identity invoking the
// mint; Receiver is where the tokens land. Authorization is decided on
// Caller only; a whitelisted caller may mint to any receiver.
type MintingContext struct {
	Caller            string `json:"caller" binding:"required"`
	LicensorAssetID   string `json:"licensor_asset_id" binding:"required"`
	LicenseTemplateID string `json:"license_template_id" binding:"required"`
	LicenseTermsID    uint64 `json:"license_terms_id"`
	Amount            int64  `json:"amount"`
	Receiver          string `json:"receiver"`
	AuxData           []byte `json:"aux_data,omitempty"`
}

// WhitelistEntry returns the allow-list slot this mint attempt is gated on.
func (mc MintingContext) WhitelistEntry() WhitelistEntry {
	return WhitelistEntry{
		LicensorAssetID:   mc.LicensorAssetID,
		LicenseTemplateID: mc.LicenseTemplateID,
		LicenseTermsID:    mc.LicenseTermsID,
		MinterID:          mc.Caller,
	}
}

// DerivativeContext carries the arguments passed before registering a child
// IP asset as a derivative of a parent under specific license terms. The
// whitelist slot is keyed on the parent (the licensor), not the child.
type DerivativeContext struct {
	Caller            string `json:"caller" binding:"required"`
	ChildAssetID      string `json:"child_asset_id" binding:"required"`
	ParentAssetID     string `json:"parent_asset_id" binding:"required"`
	LicenseTemplateID string `json:"license_template_id" binding:"required"`
	LicenseTermsID    uint64 `json:"license_terms_id"`
	AuxData           []byte `json:"aux_data,omitempty"`
}

func (dc DerivativeContext) WhitelistEntry() WhitelistEntry {
	return WhitelistEntry{
		LicensorAssetID:   dc.ParentAssetID,
		LicenseTemplateID: dc.LicenseTemplateID,
		LicenseTermsID:    dc.LicenseTermsID,
		MinterID:          dc.Caller,
	}
}

// FeeQuote is the fee owed for a mint: per-unit fee from the license terms
// provider multiplied by the requested amount.
type FeeQuote struct {
	LicenseTemplateID string          `json:"license_template_id"`
	LicenseTermsID    uint64          `json:"license_terms_id"`
	Amount            int64           `json:"amount"`
	PerUnitFee        decimal.Decimal `json:"per_unit_fee"`
	TotalFee          decimal.Decimal `json:"total_fee"`
}

// Capability describes the extension-point surface this hook implements,
// advertised to the licensing module at the boundary.
type Capability struct {
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Interfaces []string `json:"interfaces"`
	Operations []string `json:"operations"`
}
