// model/neo4j/schema.go
package mintgate_neo4j

// Node Labels
const (
	// LabelWhitelistEntry represents one allow-list slot: a candidate minter
	// for a specific (asset, template, terms) triple
	LabelWhitelistEntry = "WHITELIST_ENTRY"
)

// WHITELIST_ENTRY properties
const (
	PropKey               = "key"
	PropID                = "id"
	PropLicensorAssetID   = "licensorAssetId"
	PropLicenseTemplateID = "licenseTemplateId"
	PropLicenseTermsID    = "licenseTermsId"
	PropMinterID          = "minterId"
	PropAllowed           = "allowed"
	PropCreatedAt         = "createdAt"
	PropUpdatedAt         = "updatedAt"
)
