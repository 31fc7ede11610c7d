package settingsfamily

import (
	"multisig-vault/internal/hashing"
	"strings"
)

// deployment settings of the multisig family, written with the sawtooth settings family
const (
	OwnerSetting     = "multisig.owner"
	ThresholdSetting = "multisig.quorum.threshold"
	PolicySetting    = "multisig.signature.policy"
)

func GetAddress(settingName string) string {
	addr := "000000"
	parts := strings.Split(settingName, ".")
	for i := 0; i < 4; i++ {
		if i < len(parts) {
			addr += hashing.CalculateSHA256(parts[i])[:16]
		} else {
			addr += hashing.CalculateSHA256("")[:16]
		}
	}
	return addr
}
