// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	Timestamp        time.Time       `json:"timestamp"`
	ActorID          string          `json:"actor_id"`
	Action           string          `json:"action"`
	LicensorAssetID  string          `json:"licensor_asset_id"`
	MinterID         string          `json:"minter_id"`
	AuthorizationKey string          `json:"authorization_key"`
	AccessGranted    bool            `json:"access_granted"`
	ChangeDetails    json.RawMessage `json:"change_details,omitempty"`
}

// Audit actions recorded by the hook
const (
	ActionWhitelistAdd        = "WHITELIST_ADD"
	ActionWhitelistRemove     = "WHITELIST_REMOVE"
	ActionMintAuthorization   = "MINT_AUTHORIZATION"
	ActionDerivativeAuthorize = "DERIVATIVE_AUTHORIZATION"
)
