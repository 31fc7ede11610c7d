package state

import (
	"errors"
)

// TransactionContext is the part of the sawtooth processor context the state adapter uses
type TransactionContext interface {
	GetState(addresses []string) (map[string][]byte, error)
	SetState(pairs map[string][]byte) ([]string, error)
	DeleteState(addresses []string) ([]string, error)
}

// Context exposes the global state of a transaction being applied
type Context struct {
	ctx TransactionContext
}

func NewContext(ctx TransactionContext) Context {
	return Context{ctx: ctx}
}

func (c Context) Get(address string) ([]byte, error) {
	results, err := c.ctx.GetState([]string{address})
	if err != nil {
		return nil, err
	}

	// an address never written comes back empty
	return results[address], nil
}

func (c Context) Set(address string, data []byte) error {
	addresses, err := c.ctx.SetState(map[string][]byte{address: data})
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return errors.New("no address was set")
	}

	return nil
}

func (c Context) Delete(address string) error {
	_, err := c.ctx.DeleteState([]string{address})
	return err
}
