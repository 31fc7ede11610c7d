/**
 * Copyright 2018 Intel Corporation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 * ------------------------------------------------------------------------------
 */

// based on https://github.com/hyperledger/sawtooth-sdk-go/blob/21f3d02d2446b6a91a945c93a8b94b1ddf616841/examples/intkey_go/src/sawtooth_intkey_client/intkey_client.go

package blockchain

import (
	"encoding/hex"
	"multisig-vault/internal/blockchain/multisigfamily"
	"multisig-vault/internal/hashing"

	"github.com/fxamacker/cbor"
	"github.com/golang/protobuf/proto"
	"github.com/google/uuid"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/transaction_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/signing"
	"github.com/pkg/errors"
)

// NewTransaction builds and signs a multisig family transaction, the signer
// public key becomes the caller identity of the action
func NewTransaction(payload multisigfamily.Payload, signer *signing.Signer, inputs, outputs []string) (*transaction_pb2.Transaction, error) {
	if !payload.Action.IsValid() {
		return nil, errors.Errorf("unknown action %q", payload.Action)
	}

	payloadDump, err := cbor.Marshal(payload, cbor.CanonicalEncOptions())
	if err != nil {
		return nil, errors.Wrap(err, "failed to dump the payload")
	}

	// Construct TransactionHeader
	rawTransactionHeader := transaction_pb2.TransactionHeader{
		SignerPublicKey:  signer.GetPublicKey().AsHex(),
		FamilyName:       multisigfamily.FamilyName,
		FamilyVersion:    multisigfamily.FamilyVersion,
		Nonce:            uuid.NewString(),
		BatcherPublicKey: signer.GetPublicKey().AsHex(),
		Inputs:           inputs,
		Outputs:          outputs,
		PayloadSha512:    hashing.Calculate(payloadDump),
	}

	transactionHeader, err := proto.Marshal(&rawTransactionHeader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to serialize transaction header")
	}

	// Signature of TransactionHeader
	transactionHeaderSignature := hex.EncodeToString(
		signer.Sign(transactionHeader))

	return &transaction_pb2.Transaction{
		Header:          transactionHeader,
		HeaderSignature: transactionHeaderSignature,
		Payload:         payloadDump,
	}, nil
}
