package multisigfamily_test

import (
	"multisig-vault/internal/blockchain/multisigfamily"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress(t *testing.T) {
	assert.Equal(t, "8a06cb", multisigfamily.Namespace())
	assert.Equal(t, "8a06cbeb68f94dff4ea340f0a823f15d3f4f01ab62eae0e5da579ccb851f8db9dfe84c", multisigfamily.GetProposalAddress(1))
	assert.Equal(t, "8a06cb905f2c4dff4ea340f0a823f15d3f4f01ab62eae0e5da579ccb851f8db9dfe84c", multisigfamily.GetSignaturesAddress(1))
	assert.Equal(t, "8a06cb112007f46f44801838a863126bd20bcfe96c76e247485291cba4bd0ea58e75ef", multisigfamily.GetAccountAddress("ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"))
	assert.Equal(t, "8a06cbeb68f9", multisigfamily.GetProposalAddress(0))
}

func TestAddressLength(t *testing.T) {
	addresses := []string{
		multisigfamily.GetSignersAddress(),
		multisigfamily.GetSequenceAddress(),
		multisigfamily.GetProposalAddress(42),
		multisigfamily.GetSignaturesAddress(42),
		multisigfamily.GetAccountAddress("vault"),
	}
	seen := make(map[string]bool)
	for _, addr := range addresses {
		assert.Len(t, addr, 70)
		assert.False(t, seen[addr], addr)
		seen[addr] = true
	}
	assert.NotEqual(t, multisigfamily.GetProposalAddress(1), multisigfamily.GetProposalAddress(2))
}

func TestActionIsValid(t *testing.T) {
	assert.True(t, multisigfamily.ActionExecute.IsValid())
	assert.False(t, multisigfamily.Action("cancel").IsValid())
}
