package state

import (
	"sort"
)

// Overlay buffers writes on top of a base state until Commit, so that an
// operation failing halfway leaves the base untouched
type Overlay struct {
	base    State
	writes  map[string][]byte
	deleted map[string]bool
}

func NewOverlay(base State) *Overlay {
	return &Overlay{
		base:    base,
		writes:  make(map[string][]byte),
		deleted: make(map[string]bool),
	}
}

func (o *Overlay) Get(address string) ([]byte, error) {
	if o.deleted[address] {
		return nil, nil
	}
	if data, ok := o.writes[address]; ok {
		return append([]byte(nil), data...), nil
	}
	return o.base.Get(address)
}

func (o *Overlay) Set(address string, data []byte) error {
	delete(o.deleted, address)
	o.writes[address] = append([]byte(nil), data...)
	return nil
}

func (o *Overlay) Delete(address string) error {
	delete(o.writes, address)
	o.deleted[address] = true
	return nil
}

// Commit applies the buffered writes to the base in address order and resets the overlay
func (o *Overlay) Commit() error {
	addresses := make([]string, 0, len(o.writes))
	for addr := range o.writes {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	for _, addr := range addresses {
		if err := o.base.Set(addr, o.writes[addr]); err != nil {
			return err
		}
	}

	deleted := make([]string, 0, len(o.deleted))
	for addr := range o.deleted {
		deleted = append(deleted, addr)
	}
	sort.Strings(deleted)

	for _, addr := range deleted {
		if err := o.base.Delete(addr); err != nil {
			return err
		}
	}

	o.writes = make(map[string][]byte)
	o.deleted = make(map[string]bool)
	return nil
}

// Discard drops the buffered writes
func (o *Overlay) Discard() {
	o.writes = make(map[string][]byte)
	o.deleted = make(map[string]bool)
}
