// authority/authority.go
package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	mintgate_errors "github.com/dev-mohitbeniwal/mintgate/errors"
	logger "github.com/dev-mohitbeniwal/mintgate/logging"
)

// Service answers delegated-permission queries against the external
// access-control authority: may identity act on behalf of the asset.
type Service interface {
	CheckPermission(ctx context.Context, identity, licensorAssetID string) (bool, error)
}

type HTTPAuthority struct {
	baseURL string
	client  *http.Client
}

func NewHTTPAuthority(baseURL string) *HTTPAuthority {
	return &HTTPAuthority{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type permissionResponse struct {
	Granted bool `json:"granted"`
}

// CheckPermission queries the authority synchronously. The result reflects
// the authority's current state; nothing is cached here.
func (a *HTTPAuthority) CheckPermission(ctx context.Context, identity, licensorAssetID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/permissions/check?identity=%s&asset_id=%s",
		a.baseURL, url.QueryEscape(identity), url.QueryEscape(licensorAssetID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", mintgate_errors.ErrAuthorityUnavailable, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		logger.Error("Access control authority request failed",
			zap.Error(err),
			zap.String("identity", identity),
			zap.String("assetID", licensorAssetID))
		return false, fmt.Errorf("%w: %v", mintgate_errors.ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: unexpected status %d", mintgate_errors.ErrAuthorityUnavailable, resp.StatusCode)
	}

	var body permissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("%w: %v", mintgate_errors.ErrAuthorityUnavailable, err)
	}

	logger.Debug("Permission check completed",
		zap.String("identity", identity),
		zap.String("assetID", licensorAssetID),
		zap.Bool("granted", body.Granted))
	return body.Granted, nil
}
