// model/whitelist.go
package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// WhitelistEntry identifies a single allow-list slot: one candidate minter
// for one (IP asset, license template, license terms) triple.
type WhitelistEntry struct {
	LicensorAssetID   string `json:"licensor_asset_id" binding:"required"`
	LicenseTemplateID string `json:"license_template_id" binding:"required"`
	LicenseTermsID    uint64 `json:"license_terms_id"`
	MinterID          string `json:"minter_id" binding:"required"`
}

// AuthorizationKey derives the scalar storage key for the entry.
//
// Encoding contract (fixed, portable across deployments): for each field in
// order (asset, template, terms, minter) append a 4-byte big-endian length
// followed by the field bytes; string fields contribute their UTF-8 bytes,
// the terms ID contributes 8 bytes big-endian. The key is the hex-encoded
// SHA-256 of that buffer. Two entries share a key iff all four fields match.
func (e WhitelistEntry) AuthorizationKey() string {
	h := sha256.New()

	writeField := func(b []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(b)))
		h.Write(n[:])
		h.Write(b)
	}

	var terms [8]byte
	binary.BigEndian.PutUint64(terms[:], e.LicenseTermsID)

	writeField([]byte(e.LicensorAssetID))
	writeField([]byte(e.LicenseTemplateID))
	writeField(terms[:])
	writeField([]byte(e.MinterID))

	return hex.EncodeToString(h.Sum(nil))
}

// WhitelistRecord is a stored entry together with its status and bookkeeping
// fields as persisted in Neo4j.
type WhitelistRecord struct {
	ID        string         `json:"id"`
	Entry     WhitelistEntry `json:"entry"`
	Allowed   bool           `json:"allowed"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type WhitelistSearchCriteria struct {
	LicensorAssetID string `form:"licensor_asset_id"`
	Limit           int    `form:"limit"`
	Offset          int    `form:"offset"`
}
