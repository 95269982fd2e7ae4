// Package records は臨床レコードのモデルと永続ストアへの検索を提供します。
package records

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound は主キーに対応するレコードが存在しない場合に返されます。
var ErrNotFound = errors.New("record not found")

// Record はPDFレポートを生成できる臨床レコードが実装します。
type Record interface {
	// PK はレコードの主キーを返します。
	PK() string
	// SubjectIdentifier は被験者識別子を返します。
	SubjectIdentifier() string
	// ModelLabel は "app.model" 形式のモデルラベルを返します。
	ModelLabel() string
}

// Fetcher はモデルラベルごとの主キー検索処理です。
type Fetcher func(ctx context.Context, pool *pgxpool.Pool, pk string) (Record, error)

// Store はモデルラベルから Fetcher を引いてレコードを解決します。
type Store struct {
	pool     *pgxpool.Pool
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

// NewStore は Store を作成します。
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		fetchers: make(map[string]Fetcher),
	}
}

// Register はモデルラベルに対する Fetcher を登録します。
func (s *Store) Register(label string, fetcher Fetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchers[label] = fetcher
}

// Get はモデルラベルと主キーからレコードを解決します。
// レコードが存在しない場合は ErrNotFound を返します。
func (s *Store) Get(ctx context.Context, label, pk string) (Record, error) {
	s.mu.RLock()
	fetcher, ok := s.fetchers[label]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown model label: %s", label)
	}
	return fetcher(ctx, s.pool, pk)
}
