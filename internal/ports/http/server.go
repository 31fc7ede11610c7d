package http

import (
	"context"
	"multisig-vault/internal/app"
	"multisig-vault/internal/model"
	"multisig-vault/internal/ports/http/middleware/cors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// App is what the read API serves
type App interface {
	GetProposal(ctx context.Context, proposalID uint64) (app.ProposalView, error)
	GetAllProposals(ctx context.Context, executed *bool) ([]app.ProposalView, error)
	GetSigners(ctx context.Context) ([]model.Identity, error)
	IsAuthorizedSigner(ctx context.Context, signer model.Identity) (bool, error)
	GetBalance(ctx context.Context, account model.Identity) (uint64, error)
}

type server struct {
	app        App
	httpServer *http.Server
	addr       string
	timeout    time.Duration
	logger     *zap.Logger
}

func (ser server) badRequest(w http.ResponseWriter, message string) {
	ser.writeError(w, http.StatusBadRequest, message)
	ser.logger.Warn(message)
}

func (ser server) notFound(w http.ResponseWriter, message string) {
	ser.writeError(w, http.StatusNotFound, message)
	ser.logger.Debug(message)
}

func (ser server) serverError(w http.ResponseWriter, message string) {
	ser.writeError(w, http.StatusInternalServerError, message)
	ser.logger.Error(message)
}

func (ser server) writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		ser.logger.Error("failed to write an error message: " + err.Error())
	}
}

// appError answers with the status matching the failure kind of err
func (ser server) appError(w http.ResponseWriter, message string, err error) {
	code, ok := model.CodeOf(err)
	switch {
	case ok && code == model.CodeProposalNotFound:
		ser.notFound(w, message+": "+err.Error())
	case ok && code >= model.CodeInvalidAmount && code <= model.CodeInvalidPayload:
		ser.badRequest(w, message+": "+err.Error())
	default:
		ser.serverError(w, message+": "+err.Error())
	}
}

func (ser server) registerHandlers(router *mux.Router) {

	router.HandleFunc("/health", healthcheck)

	router.HandleFunc("/api/proposals", ser.getAllProposals).Methods(http.MethodGet)
	router.HandleFunc("/api/proposals/{proposalID}", ser.getProposal).Methods(http.MethodGet)
	router.HandleFunc("/api/signers", ser.getSigners).Methods(http.MethodGet)
	router.HandleFunc("/api/signers/{signer}", ser.getSigner).Methods(http.MethodGet)
	router.HandleFunc("/api/balances/{account}", ser.getBalance).Methods(http.MethodGet)

}

func healthcheck(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("all good here"))
}

func NewServer(logger *zap.Logger, a App, address string, timeout time.Duration) *server {
	return &server{
		app:     a,
		addr:    address,
		timeout: timeout,
		logger:  logger,
	}
}

// Handler is the router wrapped in the CORS policy
func (ser *server) Handler() http.Handler {
	router := mux.NewRouter()
	ser.registerHandlers(router)
	return cors.AddCorsPolicy(router)
}

func (ser *server) Run() error {
	ser.httpServer = &http.Server{
		Handler:           ser.Handler(),
		Addr:              ser.addr,
		ReadHeaderTimeout: ser.timeout,
	}

	ser.logger.Info("listening", zap.String("addr", ser.addr))
	return ser.httpServer.ListenAndServe()
}

func (ser *server) Shutdown(ctx context.Context) error {
	if ser.httpServer == nil {
		return nil
	}
	return ser.httpServer.Shutdown(ctx)
}
