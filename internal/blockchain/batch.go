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
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"multisig-vault/internal/model"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/batch_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/transaction_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/signing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	batchSubmitAPI         string = "batches"
	batchStatusAPI         string = "batch_statuses"
	stateAPI               string = "state"
	contentTypeOctetStream string = "application/octet-stream"

	StatusCommitted = "COMMITTED"
	StatusInvalid   = "INVALID"
	StatusPending   = "PENDING"
	StatusUnknown   = "UNKNOWN"

	// seconds the REST API is asked to hold a status request
	wait uint = 5
)

var errNotFound = errors.New("responded with status 404")

type invalidTransaction struct {
	ID      string `yaml:"id"`
	Message string `yaml:"message"`
}

type batchStatus struct {
	ID                  string               `yaml:"id"`
	Status              string               `yaml:"status"`
	InvalidTransactions []invalidTransaction `yaml:"invalid_transactions"`
}

type batchStatusResponse struct {
	Data []batchStatus `yaml:"data"`
}

// Submit sends the transactions in one batch and waits until the batch
// leaves the pending state or the context is done
func (c Client) Submit(ctx context.Context, signer *signing.Signer, transactions ...*transaction_pb2.Transaction) (batchID string, err error) {
	// Get BatchList
	rawBatchList, err := createBatchList(transactions, signer)
	if err != nil {
		return "", errors.Wrap(err, "unable to construct batch list")
	}
	batchID = rawBatchList.Batches[0].HeaderSignature
	batchList, err := proto.Marshal(&rawBatchList)
	if err != nil {
		return "", errors.Wrap(err, "unable to serialize batch list")
	}

	response, err := c.sendRequest(ctx, batchSubmitAPI, batchList, contentTypeOctetStream)
	if err != nil {
		return "", err
	}
	c.logger.Debug("batch submitted", zap.String("batchID", batchID), zap.String("response", string(response)))

	for {
		status, err := c.getStatus(ctx, batchID, wait)
		if err != nil {
			return batchID, err
		}

		switch status.Status {
		case StatusCommitted:
			c.logger.Info("batch committed", zap.String("batchID", batchID))
			return batchID, nil
		case StatusInvalid:
			return batchID, rejection(status)
		case StatusUnknown:
			return batchID, errors.Errorf("batch %s is unknown to the validator", batchID)
		}

		select {
		case <-ctx.Done():
			return batchID, errors.Wrapf(ctx.Err(), "batch %s still pending", batchID)
		case <-time.After(time.Second):
		}
	}
}

// rejection turns the message of an invalid transaction into the typed
// failure the processor reported, the message is "<code> <text>"
func rejection(status batchStatus) error {
	if len(status.InvalidTransactions) == 0 {
		return errors.Errorf("batch %s is invalid", status.ID)
	}

	msg := status.InvalidTransactions[0].Message
	parts := strings.SplitN(msg, " ", 2)
	if code, err := strconv.ParseUint(parts[0], 10, 32); err == nil {
		if kind, ok := model.ErrorByCode(model.Code(code)); ok {
			return errors.Wrapf(kind, "batch %s rejected: %s", status.ID, msg)
		}
	}
	return errors.Errorf("batch %s rejected: %s", status.ID, msg)
}

func (c Client) getStatus(ctx context.Context, batchID string, wait uint) (batchStatus, error) {
	// API to call
	apiSuffix := fmt.Sprintf("%s?id=%s&wait=%d",
		batchStatusAPI, batchID, wait)
	response, err := c.sendRequest(ctx, apiSuffix, nil, "")
	if err != nil {
		return batchStatus{}, err
	}

	var statuses batchStatusResponse
	if err := yaml.Unmarshal(response, &statuses); err != nil {
		return batchStatus{}, errors.Wrap(err, "error reading response")
	}
	if len(statuses.Data) == 0 {
		return batchStatus{}, errors.New("empty batch status response")
	}
	return statuses.Data[0], nil
}

func (c Client) sendRequest(
	ctx context.Context,
	apiSuffix string,
	data []byte,
	contentType string) ([]byte, error) {

	url := fmt.Sprintf("%s/%s", c.url, apiSuffix)

	var request *http.Request
	var err error
	if len(data) > 0 {
		request, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
		if err == nil {
			request.Header.Set("Content-Type", contentType)
		}
	} else {
		request, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to build the request")
	}

	// Send request to validator URL
	response, err := c.http.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to REST API")
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		c.logger.Debug("not found", zap.String("url", url))
		return nil, errNotFound
	} else if response.StatusCode >= 400 {
		return nil, errors.Errorf("error %d: %s", response.StatusCode, response.Status)
	}

	reponseBody, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading response")
	}
	return reponseBody, nil
}

func createBatchList(
	transactions []*transaction_pb2.Transaction, signer *signing.Signer) (batch_pb2.BatchList, error) {

	if len(transactions) == 0 {
		return batch_pb2.BatchList{}, errors.New("no transactions to batch")
	}

	// Get list of TransactionHeader signatures
	transactionSignatures := []string{}
	for _, transaction := range transactions {
		transactionSignatures =
			append(transactionSignatures, transaction.HeaderSignature)
	}

	// Construct BatchHeader
	rawBatchHeader := batch_pb2.BatchHeader{
		SignerPublicKey: signer.GetPublicKey().AsHex(),
		TransactionIds:  transactionSignatures,
	}
	batchHeader, err := proto.Marshal(&rawBatchHeader)
	if err != nil {
		return batch_pb2.BatchList{}, errors.Wrap(err, "unable to serialize batch header")
	}

	// Signature of BatchHeader
	batchHeaderSignature := hex.EncodeToString(
		signer.Sign(batchHeader))

	// Construct Batch
	batch := batch_pb2.Batch{
		Header:          batchHeader,
		Transactions:    transactions,
		HeaderSignature: batchHeaderSignature,
	}

	// Construct BatchList
	return batch_pb2.BatchList{
		Batches: []*batch_pb2.Batch{&batch},
	}, nil
}
