package report

import (
	"fmt"
	"sync"

	"github.com/yourusername/trial-reports/internal/records"
)

// Factory はレコードから対応するレポートを作成します。
type Factory func(rec records.Record) (Report, error)

// Descriptor はモデルラベルとレポート生成処理の対応を宣言します。
type Descriptor struct {
	// VerboseName はモデルの表示名です。
	VerboseName string
	// GenericFilename は複数レコードをまとめた場合のファイル名です。
	GenericFilename string
	// New はレコードからレポートを作成します。
	New Factory
}

// Registry はモデルラベルから Descriptor を引くためのレジストリです。
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
}

// NewRegistry は空の Registry を作成します。
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Descriptor),
	}
}

// Register はモデルラベルに対する Descriptor を登録します。
// 同一ラベルの二重登録は設定ミスとしてエラーになります。
func (r *Registry) Register(label string, desc Descriptor) error {
	if label == "" {
		return fmt.Errorf("model label is required")
	}
	if desc.New == nil {
		return fmt.Errorf("descriptor for %s has no factory", label)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[label]; exists {
		return fmt.Errorf("model label already registered: %s", label)
	}
	r.entries[label] = desc
	return nil
}

// Lookup はモデルラベルに対応する Descriptor を返します。
func (r *Registry) Lookup(label string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.entries[label]
	return desc, ok
}
