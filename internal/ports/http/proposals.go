package http

import (
	"context"
	"encoding/json"
	"multisig-vault/internal/model"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type signerStatus struct {
	Signer     model.Identity `json:"signer"`
	Authorized bool           `json:"authorized"`
}

type balance struct {
	Account model.Identity `json:"account"`
	Balance uint64         `json:"balance"`
}

func normalize(param string) string {
	return strings.TrimSpace(param)
}

func (ser server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), ser.timeout)
}

func (ser server) respond(w http.ResponseWriter, v interface{}) {
	response, err := json.Marshal(v)
	if err != nil {
		ser.serverError(w, "marshalling the response failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(response); err != nil {
		ser.logger.Error("failed to write the response: " + err.Error())
	}
}

func (ser server) getAllProposals(w http.ResponseWriter, r *http.Request) {
	executed, err := readListParams(r)
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	ser.logger.Info("getting all the proposals", zap.Any("executed", executed))

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	proposals, err := ser.app.GetAllProposals(ctx, executed)
	if err != nil {
		ser.appError(w, "getting the proposals failed", err)
		return
	}

	ser.respond(w, proposals)
}

func (ser server) getProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := readProposalID(r)
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	proposal, err := ser.app.GetProposal(ctx, proposalID)
	if err != nil {
		ser.appError(w, "getting the proposal failed", err)
		return
	}

	ser.respond(w, proposal)
}

func (ser server) getSigners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ser.requestContext(r)
	defer cancel()

	signers, err := ser.app.GetSigners(ctx)
	if err != nil {
		ser.appError(w, "getting the signers failed", err)
		return
	}
	if signers == nil {
		signers = []model.Identity{}
	}

	ser.respond(w, signers)
}

func (ser server) getSigner(w http.ResponseWriter, r *http.Request) {
	signer := model.Identity(normalize(mux.Vars(r)["signer"]))

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	authorized, err := ser.app.IsAuthorizedSigner(ctx, signer)
	if err != nil {
		ser.appError(w, "checking the signer failed", err)
		return
	}

	ser.respond(w, signerStatus{Signer: signer, Authorized: authorized})
}

func (ser server) getBalance(w http.ResponseWriter, r *http.Request) {
	account := model.Identity(normalize(mux.Vars(r)["account"]))

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	amount, err := ser.app.GetBalance(ctx, account)
	if err != nil {
		ser.appError(w, "getting the balance failed", err)
		return
	}

	ser.respond(w, balance{Account: account, Balance: amount})
}

// readListParams returns nil when the executed filter is not given
func readListParams(r *http.Request) (*bool, error) {
	var err error
	var executed *bool

	for key, values := range r.URL.Query() {
		switch key {
		case "executed":
			parsed, parseErr := strconv.ParseBool(normalize(values[0]))
			if parseErr != nil {
				err = multierr.Append(err, errors.Errorf("executed must be true or false, got %q", values[0]))
				continue
			}
			executed = &parsed
		default:
			err = multierr.Append(err, errors.Errorf("unknown parameter %q", key))
		}
	}

	if err != nil {
		return nil, err
	}
	return executed, nil
}

func readProposalID(r *http.Request) (uint64, error) {
	raw := normalize(mux.Vars(r)["proposalID"])
	proposalID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || proposalID == 0 {
		return 0, errors.Errorf("proposalID must be a positive integer, got %q", raw)
	}
	return proposalID, nil
}
