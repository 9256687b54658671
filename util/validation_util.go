// util/validation_util.go

package util

import (
	"fmt"

	"github.com/dev-mohitbeniwal/mintgate/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateWhitelistEntry(entry model.WhitelistEntry) error {
	if entry.LicensorAssetID == "" {
		return fmt.Errorf("licensor asset ID cannot be empty")
	}
	if entry.LicenseTemplateID == "" {
		return fmt.Errorf("license template ID cannot be empty")
	}
	if entry.MinterID == "" {
		return fmt.Errorf("minter ID cannot be empty")
	}
	// Add more validation rules as needed
	return nil
}

func (v *ValidationUtil) ValidateMintingContext(mc model.MintingContext) error {
	if mc.Caller == "" {
		return fmt.Errorf("caller cannot be empty")
	}
	if mc.LicensorAssetID == "" {
		return fmt.Errorf("licensor asset ID cannot be empty")
	}
	if mc.LicenseTemplateID == "" {
		return fmt.Errorf("license template ID cannot be empty")
	}
	if mc.Amount < 0 {
		return fmt.Errorf("amount cannot be negative")
	}
	// Receiver is intentionally unvalidated here: it never affects authorization
	return nil
}

func (v *ValidationUtil) ValidateDerivativeContext(dc model.DerivativeContext) error {
	if dc.Caller == "" {
		return fmt.Errorf("caller cannot be empty")
	}
	if dc.ChildAssetID == "" {
		return fmt.Errorf("child asset ID cannot be empty")
	}
	if dc.ParentAssetID == "" {
		return fmt.Errorf("parent asset ID cannot be empty")
	}
	if dc.LicenseTemplateID == "" {
		return fmt.Errorf("license template ID cannot be empty")
	}
	return nil
}
