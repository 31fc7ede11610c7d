package model

import "regexp"

// Identity is an opaque account identifier supplied by the ledger environment,
// e.g. a signer public key in hex or a Stacks address
type Identity string

var identityPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,127}$`)

func (id Identity) Valid() bool {
	return identityPattern.MatchString(string(id))
}

func (id Identity) String() string {
	return string(id)
}

func Identities(ids []string) []Identity {
	out := make([]Identity, len(ids))
	for i, id := range ids {
		out[i] = Identity(id)
	}
	return out
}
