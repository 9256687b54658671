// dao/whitelist_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/mintgate/audit"
	mintgate_errors "github.com/dev-mohitbeniwal/mintgate/errors"
	logger "github.com/dev-mohitbeniwal/mintgate/logging"
	"github.com/dev-mohitbeniwal/mintgate/model"
	mintgate_neo4j "github.com/dev-mohitbeniwal/mintgate/model/neo4j"
	helper_util "github.com/dev-mohitbeniwal/mintgate/util/helper"
)

// WhitelistDAO owns the key -> allowed mapping. No other component touches
// the WHITELIST_ENTRY nodes directly.
type WhitelistDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewWhitelistDAO(driver neo4j.Driver, auditService audit.Service) *WhitelistDAO {
	dao := &WhitelistDAO{Driver: driver, AuditService: auditService}
	// Ensure unique constraint on the derived authorization key
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint", zap.Error(err))
	}
	return dao
}

// EnsureUniqueConstraint ensures the unique constraint on the authorization key
func (dao *WhitelistDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on whitelist entry key")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close Neo4j session", zap.Error(err))
		}
	}()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := fmt.Sprintf(`
        CREATE CONSTRAINT unique_whitelist_key IF NOT EXISTS
        FOR (e:%s) REQUIRE e.%s IS UNIQUE
        `, mintgate_neo4j.LabelWhitelistEntry, mintgate_neo4j.PropKey)
		_, err := transaction.Run(query, nil)
		if err != nil {
			logger.Error("Failed to create unique constraint", zap.Error(err))
			return nil, fmt.Errorf("failed to create unique constraint: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on whitelist entry key", zap.Error(err))
		return err
	}

	logger.Info("Successfully ensured unique constraint on whitelist entry key")
	return nil
}

// GetStatus returns the allowed flag for the entry's authorization key.
// An absent key reads as false: the store is default-deny.
func (dao *WhitelistDAO) GetStatus(ctx context.Context, entry model.WhitelistEntry) (bool, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := fmt.Sprintf(`
        MATCH (e:%s {%s: $key})
        RETURN e.%s as allowed
        `, mintgate_neo4j.LabelWhitelistEntry, mintgate_neo4j.PropKey, mintgate_neo4j.PropAllowed)
		queryResult, err := transaction.Run(query, map[string]interface{}{"key": entry.AuthorizationKey()})
		if err != nil {
			return nil, mintgate_errors.ErrDatabaseOperation
		}
		if queryResult.Next() {
			allowed, found := queryResult.Record().Get("allowed")
			if !found {
				return false, nil
			}
			return allowed, nil
		}
		return false, nil
	})
	if err != nil {
		logger.Error("Failed to read whitelist status",
			zap.Error(err),
			zap.String("minterID", entry.MinterID),
			zap.String("licensorAssetID", entry.LicensorAssetID))
		return false, err
	}

	allowed, ok := result.(bool)
	if !ok {
		return false, nil
	}
	return allowed, nil
}

// SetStatus flips the allowed flag for the entry's authorization key and
// reports whether the flag actually changed. The precondition lives inside
// the write transaction: a repeat add or a remove of an absent entry returns
// changed=false, and two concurrent adds of one key cannot both flip it,
// even across service replicas sharing the store. Changes are audit-logged.
func (dao *WhitelistDAO) SetStatus(ctx context.Context, entry model.WhitelistEntry, allowed bool, actorID string) (bool, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	key := entry.AuthorizationKey()
	now := time.Now().Format(time.RFC3339)

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		var query string
		parameters := map[string]interface{}{
			"key": key,
			"now": now,
		}

		if allowed {
			// MERGE creates the node with allowed=false, then the WHERE
			// clause flips it only when it is not already true. The node
			// write lock serializes concurrent adds of the same key.
			query = fmt.Sprintf(`
        MERGE (e:%s {%s: $key})
        ON CREATE SET e.%s = $id,
            e.%s = $assetId,
            e.%s = $templateId,
            e.%s = $termsId,
            e.%s = $minterId,
            e.%s = false,
            e.%s = $now
        WITH e, e.%s AS wasAllowed
        WHERE wasAllowed = false
        SET e.%s = true, e.%s = $now
        RETURN wasAllowed
        `,
				mintgate_neo4j.LabelWhitelistEntry, mintgate_neo4j.PropKey,
				mintgate_neo4j.PropID,
				mintgate_neo4j.PropLicensorAssetID,
				mintgate_neo4j.PropLicenseTemplateID,
				mintgate_neo4j.PropLicenseTermsID,
				mintgate_neo4j.PropMinterID,
				mintgate_neo4j.PropAllowed,
				mintgate_neo4j.PropCreatedAt,
				mintgate_neo4j.PropAllowed,
				mintgate_neo4j.PropAllowed, mintgate_neo4j.PropUpdatedAt)
			parameters["id"] = uuid.New().String()
			parameters["assetId"] = entry.LicensorAssetID
			parameters["templateId"] = entry.LicenseTemplateID
			parameters["termsId"] = int64(entry.LicenseTermsID)
			parameters["minterId"] = entry.MinterID
		} else {
			// MATCH, not MERGE: a remove of a never-added entry must not
			// leave a node behind.
			query = fmt.Sprintf(`
        MATCH (e:%s {%s: $key})
        WITH e, e.%s AS wasAllowed
        WHERE wasAllowed = true
        SET e.%s = false, e.%s = $now
        RETURN wasAllowed
        `,
				mintgate_neo4j.LabelWhitelistEntry, mintgate_neo4j.PropKey,
				mintgate_neo4j.PropAllowed,
				mintgate_neo4j.PropAllowed, mintgate_neo4j.PropUpdatedAt)
		}

		queryResult, err := transaction.Run(query, parameters)
		if err != nil {
			return nil, mintgate_errors.ErrDatabaseOperation
		}
		// A returned row means the WHERE clause passed and the flag flipped.
		if queryResult.Next() {
			return true, nil
		}
		return false, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to set whitelist status",
			zap.Error(err),
			zap.String("minterID", entry.MinterID),
			zap.String("licensorAssetID", entry.LicensorAssetID),
			zap.Duration("duration", duration))
		return false, err
	}

	changed, _ := result.(bool)
	if !changed {
		return false, nil
	}

	action := audit.ActionWhitelistAdd
	if !allowed {
		action = audit.ActionWhitelistRemove
	}
	details, _ := json.Marshal(entry)
	auditLog := audit.AuditLog{
		Timestamp:        time.Now(),
		ActorID:          actorID,
		Action:           action,
		LicensorAssetID:  entry.LicensorAssetID,
		MinterID:         entry.MinterID,
		AuthorizationKey: key,
		AccessGranted:    true,
		ChangeDetails:    details,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Warn("Failed to audit whitelist mutation",
			zap.Error(err),
			zap.String("minterID", entry.MinterID))
	}

	logger.Info("Whitelist status set",
		zap.String("minterID", entry.MinterID),
		zap.String("licensorAssetID", entry.LicensorAssetID),
		zap.Bool("allowed", allowed),
		zap.Duration("duration", duration))
	return true, nil
}

// ListEntries returns the stored entries for a licensor asset, newest first.
func (dao *WhitelistDAO) ListEntries(ctx context.Context, licensorAssetID string, limit, offset int) ([]*model.WhitelistRecord, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := fmt.Sprintf(`
        MATCH (e:%s {%s: $assetId})
        RETURN e
        ORDER BY e.%s DESC
        SKIP $offset
        LIMIT $limit
        `, mintgate_neo4j.LabelWhitelistEntry, mintgate_neo4j.PropLicensorAssetID, mintgate_neo4j.PropCreatedAt)

		queryResult, err := transaction.Run(query, map[string]interface{}{
			"assetId": licensorAssetID,
			"offset":  offset,
			"limit":   limit,
		})
		if err != nil {
			return nil, mintgate_errors.ErrDatabaseOperation
		}

		var records []*model.WhitelistRecord
		for queryResult.Next() {
			node, found := queryResult.Record().Get("e")
			if !found {
				continue
			}
			record, err := mapNodeToRecord(node.(neo4j.Node))
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		return records, nil
	})
	if err != nil {
		logger.Error("Failed to list whitelist entries",
			zap.Error(err),
			zap.String("licensorAssetID", licensorAssetID))
		return nil, err
	}

	return result.([]*model.WhitelistRecord), nil
}

func mapNodeToRecord(node neo4j.Node) (*model.WhitelistRecord, error) {
	props := node.Props

	record := &model.WhitelistRecord{
		ID: fmt.Sprintf("%v", props[mintgate_neo4j.PropID]),
		Entry: model.WhitelistEntry{
			LicensorAssetID:   fmt.Sprintf("%v", props[mintgate_neo4j.PropLicensorAssetID]),
			LicenseTemplateID: fmt.Sprintf("%v", props[mintgate_neo4j.PropLicenseTemplateID]),
			MinterID:          fmt.Sprintf("%v", props[mintgate_neo4j.PropMinterID]),
		},
	}

	if termsID, ok := props[mintgate_neo4j.PropLicenseTermsID].(int64); ok {
		record.Entry.LicenseTermsID = uint64(termsID)
	}
	if allowed, ok := props[mintgate_neo4j.PropAllowed].(bool); ok {
		record.Allowed = allowed
	}
	if createdAt, ok := props[mintgate_neo4j.PropCreatedAt].(string); ok {
		t, err := helper_util.ParseTime(createdAt)
		if err == nil {
			record.CreatedAt = t
		}
	}
	if updatedAt, ok := props[mintgate_neo4j.PropUpdatedAt].(string); ok {
		t, err := helper_util.ParseTime(updatedAt)
		if err == nil {
			record.UpdatedAt = t
		}
	}

	return record, nil
}
