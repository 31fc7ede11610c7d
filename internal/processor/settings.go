package processor

import (
	"errors"
	"multisig-vault/internal/blockchain/settingsfamily"
	"multisig-vault/internal/model"
	"multisig-vault/internal/multisig"
	"multisig-vault/internal/state"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/setting_pb2"
)

// deploymentConfig reads owner, quorum and signature policy from the on-chain
// settings so that every validator agrees on them; the processor config only
// fills in what is not set on chain
func (h *Handler) deploymentConfig(st state.State) (multisig.Config, error) {
	config := h.defaults

	owner, err := readSetting(st, settingsfamily.OwnerSetting)
	if err != nil {
		return multisig.Config{}, err
	}
	if owner != "" {
		config.Owner = model.Identity(owner)
	}

	threshold, err := readSetting(st, settingsfamily.ThresholdSetting)
	if err != nil {
		return multisig.Config{}, err
	}
	if threshold != "" {
		quorum, err := model.ParseQuorum(threshold)
		if err != nil {
			return multisig.Config{}, err
		}
		config.Quorum = quorum
	}

	policy, err := readSetting(st, settingsfamily.PolicySetting)
	if err != nil {
		return multisig.Config{}, err
	}
	if policy != "" {
		config.Policy = model.ValidityPolicy(policy)
	}

	return config, config.Validate()
}

func readSetting(st state.State, key string) (string, error) {
	data, err := st.Get(settingsfamily.GetAddress(key))
	if err != nil {
		return "", errors.New("failed to read setting " + key + ": " + err.Error())
	}
	if len(data) == 0 {
		return "", nil
	}

	var setting setting_pb2.Setting
	if err := proto.Unmarshal(data, &setting); err != nil {
		return "", errors.New("failed to decode setting " + key + ": " + err.Error())
	}

	for _, entry := range setting.GetEntries() {
		if entry.GetKey() == key {
			return entry.GetValue(), nil
		}
	}

	return "", nil
}
