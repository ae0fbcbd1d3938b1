/*
Copyright 2022 EscherCloud.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ec2fleet

import "sync"

// IDMap maps provider-assigned identifiers to set-names; there is no
// lookup from a set-name back to its identifiers.  It is keyed by spot-request-id until phase D1 settles, then
// rekeyed to instance-id.  Per spec.md §5 it's only ever mutated by the
// placer (inserts) and the poller (remove+insert), never concurrently, but
// it still takes a mutex since nothing about the Go type system enforces
// that ordering for callers.
type IDMap struct {
	mu   sync.Mutex
	byID map[string]string
}

// NewIDMap returns an empty map.
func NewIDMap() *IDMap {
	return &IDMap{byID: make(map[string]string)}
}

// Insert records id -> setName.
func (m *IDMap) Insert(id, setName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[id] = setName
}

// Rekey moves the value stored under oldID to newID, removing oldID.  It
// reports false if oldID was not present.
func (m *IDMap) Rekey(oldID, newID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	setName, ok := m.byID[oldID]
	if !ok {
		return false
	}

	delete(m.byID, oldID)
	m.byID[newID] = setName

	return true
}

// Remove deletes id from the map.
func (m *IDMap) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byID, id)
}

// SetName looks up the set-name an id belongs to.
func (m *IDMap) SetName(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	setName, ok := m.byID[id]

	return setName, ok
}

// IDs returns every id currently tracked.  Order is unspecified.
func (m *IDMap) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}

	return ids
}

// Len reports how many ids are currently tracked.
func (m *IDMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.byID)
}
