// Copyright 2025 The jcc-moac-abi Authors
// This file is part of the jcc-moac-abi library.
//
// The jcc-moac-abi library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The jcc-moac-abi library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the jcc-moac-abi library. If not, see <http://www.gnu.org/licenses/>.

// Package selector contains the selector table mapping 4-byte method ids and
// 32-byte event topics to the ABI items that produced them.
package selector

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/JCCDex/jcc-moac-abi/schema"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// ErrNotFound is returned by lookups of unknown selectors.
var ErrNotFound = errors.New("selector not found")

// entry is a registered method or event together with the fingerprints of
// every contract that registered it.
// entry 是已注册的方法或事件，以及注册过它的所有合约指纹。
type entry struct {
	method *schema.Method
	event  *schema.Event
	owners mapset.Set[string]
}

func (e *entry) item() *schema.Item {
	if e.method != nil {
		return &e.method.Item
	}
	return &e.event.Item
}

// Table maps selectors to ABI items across any number of registered
// contracts. Selectors are keyed as lowercase hex without the 0x prefix: 8
// characters for methods, 64 for events.
//
// A table is owned by whoever creates it. Codecs sharing one table must
// unregister their ABI when discarded, otherwise entries accumulate for the
// lifetime of the table.
//
// Structurally different items colliding on one selector are kept as
// variants, each with its own owners. The first registered variant still
// present is the one lookups return.
//
// Table 将选择器映射到 ABI 条目。表由创建者拥有，共享同一张表的编解码器在丢弃时
// 必须注销其 ABI，否则条目会在表的生命周期内不断累积。
type Table struct {
	mu         sync.RWMutex
	entries    map[string][]*entry // variants in registration order
	registered mapset.Set[string] // fingerprints of registered contracts
	methods    int
	events     int
}

// New creates an empty selector table.
func New() *Table {
	return &Table{
		entries:    make(map[string][]*entry),
		registered: mapset.NewThreadUnsafeSet[string](),
	}
}

// Register inserts every method and event of the contract. Registering a
// contract whose fingerprint is already known is a no-op.
//
// A selector which is already present keeps its first entry. If the new item
// differs structurally from the stored one the collision is logged and the
// new item is queued behind it, owned by this contract only.
//
// Register 插入合约的每个方法和事件。重复注册同一指纹的合约不做任何操作。
func (t *Table) Register(c *schema.Contract) error {
	if c == nil {
		return errors.New("selector: nil contract")
	}
	fp := c.Fingerprint()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.registered.Contains(fp) {
		return nil
	}
	for _, m := range c.Methods {
		t.insert(m.Selector(), &entry{method: m}, fp)
	}
	for _, e := range c.Events {
		if e.Anonymous {
			continue
		}
		t.insert(e.Selector(), &entry{event: e}, fp)
	}
	t.registered.Add(fp)
	log.Debug("Registered contract abi", "fingerprint", fp, "methods", len(c.Methods), "events", len(c.Events))
	return nil
}

func (t *Table) insert(key string, fresh *entry, owner string) {
	variants := t.entries[key]
	for _, known := range variants {
		if reflect.DeepEqual(known.item(), fresh.item()) {
			known.owners.Add(owner)
			return
		}
	}
	fresh.owners = mapset.NewThreadUnsafeSet(owner)
	if len(variants) > 0 {
		log.Warn("Selector collision, keeping first entry", "selector", key,
			"kept", variants[0].item().Name, "shadowed", fresh.item().Name)
	} else if fresh.method != nil {
		t.methods++
	} else {
		t.events++
	}
	t.entries[key] = append(variants, fresh)
}

// Unregister removes the contract as owner of its selectors. Entries left
// without any owner are dropped.
func (t *Table) Unregister(c *schema.Contract) {
	if c == nil {
		return
	}
	fp := c.Fingerprint()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.registered.Contains(fp) {
		return
	}
	for _, m := range c.Methods {
		t.release(m.Selector(), fp)
	}
	for _, e := range c.Events {
		t.release(e.Selector(), fp)
	}
	t.registered.Remove(fp)
	log.Debug("Unregistered contract abi", "fingerprint", fp)
}

func (t *Table) release(key string, owner string) {
	variants, ok := t.entries[key]
	if !ok {
		return
	}
	kept := variants[:0]
	for _, known := range variants {
		known.owners.Remove(owner)
		if known.owners.Cardinality() > 0 {
			kept = append(kept, known)
		}
	}
	if len(kept) > 0 {
		t.entries[key] = kept
		return
	}
	delete(t.entries, key)
	if variants[0].method != nil {
		t.methods--
	} else {
		t.events--
	}
}

// Clear drops every entry and registration.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[string][]*entry)
	t.registered.Clear()
	t.methods, t.events = 0, 0
}

// Registered reports whether the contract has been registered.
func (t *Table) Registered(c *schema.Contract) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.registered.Contains(c.Fingerprint())
}

// Size returns the number of method and event entries.
// Size 返回方法条目和事件条目的数量。
func (t *Table) Size() (int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.methods, t.events
}

// Lookup returns the item registered under a hex selector. Both 8 character
// method ids and 64 character event topics are accepted, with or without the
// 0x prefix.
func (t *Table) Lookup(selector string) (*schema.Item, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	variants, ok := t.entries[key(selector)]
	if !ok {
		return nil, false
	}
	return variants[0].item(), true
}

// Method checks the leading 4 bytes of id against the registered methods.
func (t *Table) Method(id []byte) (*schema.Method, error) {
	if len(id) < 4 {
		return nil, fmt.Errorf("expected 4-byte id, got %d", len(id))
	}
	sig := common.Bytes2Hex(id[:4])

	t.mu.RLock()
	defer t.mu.RUnlock()

	if variants, ok := t.entries[sig]; ok && variants[0].method != nil {
		return variants[0].method, nil
	}
	return nil, fmt.Errorf("%w: method %s", ErrNotFound, sig)
}

// Event looks an event up by the topic carried in topics[0] of a log.
func (t *Table) Event(topic common.Hash) (*schema.Event, error) {
	sig := common.Bytes2Hex(topic[:])

	t.mu.RLock()
	defer t.mu.RUnlock()

	if variants, ok := t.entries[sig]; ok && variants[0].event != nil {
		return variants[0].event, nil
	}
	return nil, fmt.Errorf("%w: event %s", ErrNotFound, sig)
}

// OwnedBy reports whether the entry returned for selector was registered by
// the given contract. A contract whose own item is shadowed by a colliding
// one does not own the selector.
func (t *Table) OwnedBy(selector string, c *schema.Contract) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	variants, ok := t.entries[key(selector)]
	return ok && variants[0].owners.Contains(c.Fingerprint())
}

func key(selector string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(selector, "0x"), "0X"))
}
