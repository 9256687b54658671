// terms/terms.go
package terms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	mintgate_errors "github.com/dev-mohitbeniwal/mintgate/errors"
	logger "github.com/dev-mohitbeniwal/mintgate/logging"
)

// Service answers fee queries against the external license-terms provider:
// the per-unit minting fee for a terms instance under a template.
type Service interface {
	GetPerUnitMintingFee(ctx context.Context, licenseTemplateID string, licenseTermsID uint64) (decimal.Decimal, error)
}

type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type feeResponse struct {
	MintingFee string `json:"minting_fee"`
}

// GetPerUnitMintingFee fetches the fee and validates it is a non-negative
// integer amount; anything else from the provider is rejected.
func (p *HTTPProvider) GetPerUnitMintingFee(ctx context.Context, licenseTemplateID string, licenseTermsID uint64) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/api/v1/license-terms/%s/%d/minting-fee",
		p.baseURL, url.PathEscape(licenseTemplateID), licenseTermsID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", mintgate_errors.ErrTermsUnavailable, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		logger.Error("License terms provider request failed",
			zap.Error(err),
			zap.String("templateID", licenseTemplateID),
			zap.Uint64("termsID", licenseTermsID))
		return decimal.Zero, fmt.Errorf("%w: %v", mintgate_errors.ErrTermsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: unexpected status %d", mintgate_errors.ErrTermsUnavailable, resp.StatusCode)
	}

	var body feeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", mintgate_errors.ErrTermsUnavailable, err)
	}

	fee, err := decimal.NewFromString(body.MintingFee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", mintgate_errors.ErrInvalidFeeAmount, body.MintingFee)
	}
	if fee.IsNegative() || !fee.IsInteger() {
		return decimal.Zero, fmt.Errorf("%w: %s", mintgate_errors.ErrInvalidFeeAmount, fee.String())
	}

	logger.Debug("Per-unit minting fee fetched",
		zap.String("templateID", licenseTemplateID),
		zap.Uint64("termsID", licenseTermsID),
		zap.String("fee", fee.String()))
	return fee, nil
}
