package multisigfamily

import (
	"multisig-vault/internal/hashing"
	"strconv"
	"sync"
)

var (
	familyHash         = ""
	signersPrefixHash  = ""
	proposalPrefixHash = ""
	sigsPrefixHash     = ""
	sequencePrefixHash = ""
	accountPrefixHash  = ""

	calcOnce sync.Once
)

func initHashVars() {
	calcOnce.Do(func() {
		familyHash = hashing.CalculateSHA512(FamilyName)
		signersPrefixHash = hashing.CalculateSHA512(signersPrefix)
		proposalPrefixHash = hashing.CalculateSHA512(proposalPrefix)
		sigsPrefixHash = hashing.CalculateSHA512(signaturesPrefix)
		sequencePrefixHash = hashing.CalculateSHA512(sequencePrefix)
		accountPrefixHash = hashing.CalculateSHA512(accountPrefix)
	})
}

// Namespace is the address prefix owned by the family
func Namespace() string {
	initHashVars()
	return familyHash[0:6]
}

func GetSignersAddress() string {
	initHashVars()
	return familyHash[0:6] + signersPrefixHash[0:6] + hashing.CalculateSHA512(signersPrefix)[0:58]
}

// GetProposalAddress calculates the proposal address; for ID 0 it returns
// the prefix of all the proposals
func GetProposalAddress(proposalID uint64) (address string) {
	initHashVars()

	address = familyHash[0:6] + proposalPrefixHash[0:6]
	if proposalID != 0 {
		address += hashing.CalculateSHA512(strconv.FormatUint(proposalID, 10))[0:58]
	}

	return address
}

func GetSignaturesAddress(proposalID uint64) string {
	initHashVars()
	return familyHash[0:6] + sigsPrefixHash[0:6] + hashing.CalculateSHA512(strconv.FormatUint(proposalID, 10))[0:58]
}

func GetSequenceAddress() string {
	initHashVars()
	return familyHash[0:6] + sequencePrefixHash[0:6] + hashing.CalculateSHA512(sequencePrefix)[0:58]
}

func GetAccountAddress(account string) string {
	initHashVars()
	return familyHash[0:6] + accountPrefixHash[0:6] + hashing.CalculateSHA512(account)[0:58]
}

// GetAccountPrefix is the address prefix of all the balances
func GetAccountPrefix() string {
	initHashVars()
	return familyHash[0:6] + accountPrefixHash[0:6]
}
