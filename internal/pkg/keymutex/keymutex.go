// Package keymutex は文字列キー単位の排他制御を提供する
// 公演回キーごとにロックすることで、無関係な公演回同士が競合しないようにする
package keymutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyMutex はキー単位のミューテックス
// 使われていないキーのエントリは参照カウントで回収されるため、
// キー空間が増えてもメモリは保持中のロック数に比例する
type KeyMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New は新しいKeyMutexを作成する
func New() *KeyMutex {
	return &KeyMutex{entries: make(map[string]*entry)}
}

// Lock はキーのロックを取得する
func (m *KeyMutex) Lock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
}

// Unlock はキーのロックを解放する
// 取得していないキーを解放した場合はパニックする（sync.Mutexと同じ扱い）
func (m *KeyMutex) Unlock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		panic("keymutex: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()

	e.mu.Unlock()
}
