// Package exports はエクスポートの受領記録（監査証跡）を管理します。
package exports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const receiptKeyPrefix = "export:"

// Receipt は配信済みエクスポート1件の受領記録です。
// パスフレーズそのものは記録しません。
type Receipt struct {
	ExportID   string    `json:"exportId"`
	ModelLabel string    `json:"modelLabel"`
	Filename   string    `json:"filename"`
	Records    int       `json:"records"`
	Pages      int       `json:"pages"`
	Encrypted  bool      `json:"encrypted"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Store は受領記録を Redis に保存します。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
	}
}

// Put は受領記録を保存します。
func (s *Store) Put(ctx context.Context, receipt *Receipt) error {
	if receipt == nil {
		return fmt.Errorf("receipt is nil")
	}
	if receipt.ExportID == "" {
		return fmt.Errorf("receipt.ExportID is required")
	}

	now := time.Now().UTC()
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = now
	}
	if receipt.ExpiresAt.IsZero() && s.ttl > 0 {
		receipt.ExpiresAt = receipt.CreatedAt.Add(s.ttl)
	}

	payload, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, receiptKey(receipt.ExportID), payload, s.ttl).Err()
}

// Get は受領記録を取得します。存在しない場合は nil を返します。
func (s *Store) Get(ctx context.Context, exportID string) (*Receipt, error) {
	if exportID == "" {
		return nil, fmt.Errorf("exportID is required")
	}
	data, err := s.rdb.Get(ctx, receiptKey(exportID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var receipt Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func receiptKey(id string) string {
	return receiptKeyPrefix + id
}
