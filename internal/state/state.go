package state

import (
	"errors"

	"github.com/fxamacker/cbor"
)

// State is the key value store the multisig components keep their records in.
// Get returns nil data without error for an address that holds nothing.
type State interface {
	Get(address string) ([]byte, error)
	Set(address string, data []byte) error
	Delete(address string) error
}

// Load decodes the record stored at address into v and reports whether it was found
func Load(st State, address string, v interface{}) (bool, error) {
	data, err := st.Get(address)
	if err != nil {
		return false, errors.New("failed to read state at " + address + ": " + err.Error())
	}
	if len(data) == 0 {
		return false, nil
	}

	if err := cbor.Unmarshal(data, v); err != nil {
		return false, errors.New("failed to decode state at " + address + ": " + err.Error())
	}

	return true, nil
}

// Save encodes v canonically, every validator has to produce the same bytes
func Save(st State, address string, v interface{}) error {
	data, err := cbor.Marshal(v, cbor.CanonicalEncOptions())
	if err != nil {
		return errors.New("failed to encode state for " + address + ": " + err.Error())
	}

	if err := st.Set(address, data); err != nil {
		return errors.New("failed to write state at " + address + ": " + err.Error())
	}

	return nil
}
