// test/mock/store.go
package mock

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dev-mohitbeniwal/mintgate/model"
)

// InMemoryWhitelistStore implements service.WhitelistStore on a plain map,
// standing in for the Neo4j-backed DAO in service tests.
type InMemoryWhitelistStore struct {
	mu      sync.Mutex
	entries map[string]*model.WhitelistRecord
}

func NewInMemoryWhitelistStore() *InMemoryWhitelistStore {
	return &InMemoryWhitelistStore{
		entries: make(map[string]*model.WhitelistRecord),
	}
}

func (s *InMemoryWhitelistStore) GetStatus(ctx context.Context, entry model.WhitelistEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.entries[entry.AuthorizationKey()]
	if !ok {
		return false, nil
	}
	return record.Allowed, nil
}

// SetStatus applies the same atomic precondition as the Neo4j DAO: the flag
// only flips when it is not already in the requested state, and a remove of
// a never-added entry leaves no record behind.
func (s *InMemoryWhitelistStore) SetStatus(ctx context.Context, entry model.WhitelistEntry, allowed bool, actorID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.entries[entry.AuthorizationKey()]
	if allowed {
		if ok && record.Allowed {
			return false, nil
		}
		s.entries[entry.AuthorizationKey()] = &model.WhitelistRecord{
			Entry:   entry,
			Allowed: true,
		}
		return true, nil
	}

	if !ok || !record.Allowed {
		return false, nil
	}
	record.Allowed = false
	return true, nil
}

func (s *InMemoryWhitelistStore) ListEntries(ctx context.Context, licensorAssetID string, limit, offset int) ([]*model.WhitelistRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*model.WhitelistRecord
	for _, record := range s.entries {
		if record.Entry.LicensorAssetID == licensorAssetID {
			records = append(records, record)
		}
	}
	if offset >= len(records) {
		return nil, nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

// InMemoryStatusCache implements service.StatusCache on plain maps.
type InMemoryStatusCache struct {
	mu       sync.Mutex
	statuses map[string]bool
	fees     map[string]decimal.Decimal
}

func NewInMemoryStatusCache() *InMemoryStatusCache {
	return &InMemoryStatusCache{
		statuses: make(map[string]bool),
		fees:     make(map[string]decimal.Decimal),
	}
}

func (c *InMemoryStatusCache) GetWhitelistStatus(ctx context.Context, authKey string) (*bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	allowed, ok := c.statuses[authKey]
	if !ok {
		return nil, nil
	}
	return &allowed, nil
}

func (c *InMemoryStatusCache) SetWhitelistStatus(ctx context.Context, authKey string, allowed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.statuses[authKey] = allowed
	return nil
}

func (c *InMemoryStatusCache) DeleteWhitelistStatus(ctx context.Context, authKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.statuses, authKey)
	return nil
}

func (c *InMemoryStatusCache) GetPerUnitFee(ctx context.Context, templateID string, termsID uint64) (*decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fee, ok := c.fees[feeKey(templateID, termsID)]
	if !ok {
		return nil, nil
	}
	return &fee, nil
}

func (c *InMemoryStatusCache) SetPerUnitFee(ctx context.Context, templateID string, termsID uint64, fee decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fees[feeKey(templateID, termsID)] = fee
	return nil
}

func feeKey(templateID string, termsID uint64) string {
	return templateID + ":" + strconv.FormatUint(termsID, 10)
}
