package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const majorityQuorum = "majority"

// Quorum is the number of distinct valid signatures a proposal needs before it
// can execute: either a fixed threshold or a simple majority of the current signers
type Quorum struct {
	Threshold uint32
	Majority  bool
}

func FixedQuorum(threshold uint32) Quorum {
	return Quorum{Threshold: threshold}
}

func MajorityQuorum() Quorum {
	return Quorum{Majority: true}
}

// ParseQuorum accepts "majority" or a positive integer
func ParseQuorum(value string) (Quorum, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == majorityQuorum {
		return MajorityQuorum(), nil
	}

	threshold, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return Quorum{}, errors.Wrapf(ErrInvalidQuorum, "parse %q", value)
	}

	quorum := FixedQuorum(uint32(threshold))
	return quorum, quorum.Validate()
}

func (q Quorum) Validate() error {
	if !q.Majority && q.Threshold == 0 {
		return errors.Wrap(ErrInvalidQuorum, "threshold must be at least 1")
	}
	return nil
}

// Required returns the signature count needed given the current number of signers
func (q Quorum) Required(signerCount int) int {
	if q.Majority {
		return signerCount/2 + 1
	}
	return int(q.Threshold)
}

func (q Quorum) String() string {
	if q.Majority {
		return majorityQuorum
	}
	return fmt.Sprint(q.Threshold)
}

// ValidityPolicy decides whether a signature from a signer removed after signing
// still counts toward the quorum
type ValidityPolicy string

const (
	// ValidityLive counts a signature only while its signer is still authorized
	ValidityLive ValidityPolicy = "live"
	// ValidityAtSigning counts every signature accepted while its signer was authorized
	ValidityAtSigning ValidityPolicy = "at-signing"
)

func (p ValidityPolicy) IsValid() bool {
	return p == ValidityLive || p == ValidityAtSigning
}

func (p ValidityPolicy) String() string {
	return string(p)
}
