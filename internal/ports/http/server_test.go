package http

import (
	"context"
	"encoding/json"
	"multisig-vault/internal/app"
	"multisig-vault/internal/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type fakeApp struct {
	proposals []app.ProposalView
	signers   []model.Identity
	failure   error
}

func (f fakeApp) GetProposal(ctx context.Context, proposalID uint64) (app.ProposalView, error) {
	for _, p := range f.proposals {
		if p.ProposalID == proposalID {
			return p, nil
		}
	}
	return app.ProposalView{}, errors.Wrapf(model.ErrProposalNotFound, "proposal %d", proposalID)
}

func (f fakeApp) GetAllProposals(ctx context.Context, executed *bool) ([]app.ProposalView, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	out := []app.ProposalView{}
	for _, p := range f.proposals {
		if executed == nil || *executed == p.Executed {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeApp) GetSigners(ctx context.Context) ([]model.Identity, error) {
	return f.signers, f.failure
}

func (f fakeApp) IsAuthorizedSigner(ctx context.Context, signer model.Identity) (bool, error) {
	if !signer.Valid() {
		return false, model.ErrInvalidSigner
	}
	for _, s := range f.signers {
		if s == signer {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeApp) GetBalance(ctx context.Context, account model.Identity) (uint64, error) {
	return 42, nil
}

func newTestServer(a App) http.Handler {
	return NewServer(zap.NewNop(), a, ":0", time.Second).Handler()
}

func get(t *testing.T, handler http.Handler, url string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, url, nil))
	return recorder
}

func TestProposalEndpoints(t *testing.T) {
	handler := newTestServer(fakeApp{proposals: []app.ProposalView{
		{ProposalID: 1, Recipient: "ST3BOB", Amount: 1000, Executed: true},
		{ProposalID: 2, Recipient: "ST3BOB", Amount: 10},
	}})

	response := get(t, handler, "/api/proposals")
	require.Equal(t, http.StatusOK, response.Code)
	var all []app.ProposalView
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	response = get(t, handler, "/api/proposals?executed=false")
	require.Equal(t, http.StatusOK, response.Code)
	var pending []app.ProposalView
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.EqualValues(t, 2, pending[0].ProposalID)

	response = get(t, handler, "/api/proposals/1")
	require.Equal(t, http.StatusOK, response.Code)
	var one app.ProposalView
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &one))
	assert.True(t, one.Executed)

	assert.Equal(t, http.StatusNotFound, get(t, handler, "/api/proposals/7").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, handler, "/api/proposals/abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, handler, "/api/proposals/0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, handler, "/api/proposals?executed=maybe&limit=3").Code)
}

func TestSignerEndpoints(t *testing.T) {
	handler := newTestServer(fakeApp{signers: []model.Identity{"ST1ALICE"}})

	response := get(t, handler, "/api/signers")
	require.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `["ST1ALICE"]`, response.Body.String())

	response = get(t, handler, "/api/signers/ST1ALICE")
	require.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"signer":"ST1ALICE","authorized":true}`, response.Body.String())

	response = get(t, handler, "/api/signers/ST3BOB")
	require.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"signer":"ST3BOB","authorized":false}`, response.Body.String())

	assert.Equal(t, http.StatusBadRequest, get(t, handler, "/api/signers/-bad").Code)

	response = get(t, handler, "/api/balances/vault")
	require.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"account":"vault","balance":42}`, response.Body.String())
}

func TestServerError(t *testing.T) {
	handler := newTestServer(fakeApp{failure: errors.New("validator unreachable")})

	assert.Equal(t, http.StatusInternalServerError, get(t, handler, "/api/signers").Code)
	assert.Equal(t, http.StatusInternalServerError, get(t, handler, "/api/proposals").Code)
	assert.Equal(t, http.StatusOK, get(t, handler, "/health").Code)
}

func TestReadListParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/proposals?executed=true", nil)
	executed, err := readListParams(r)
	require.NoError(t, err)
	require.NotNil(t, executed)
	assert.True(t, *executed)

	r = httptest.NewRequest(http.MethodGet, "/api/proposals?executed=x&foo=1", nil)
	_, err = readListParams(r)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}
