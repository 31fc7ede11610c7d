package state

import "sync"

type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(address string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[address]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Set(address string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[address] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Delete(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, address)
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}
