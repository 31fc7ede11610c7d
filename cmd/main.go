package main

import (
	"context"
	"log"
	"multisig-vault/internal/app"
	"multisig-vault/internal/blockchain"
	"multisig-vault/internal/blockchain/events"
	"multisig-vault/internal/config"
	"multisig-vault/internal/logging"
	"multisig-vault/internal/ports/http"
	"multisig-vault/internal/repository/mongodb"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	logger, err := logging.New(config.GetLogLevel())
	if err != nil {
		log.Fatalln("setting up the logger failed: ", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("application started")

	db, err := mongodb.NewConnection(logger, config.GetDbConnectionURI(), config.GetDatabaseName())
	if err != nil {
		logger.Fatal("failed to connect to the database", zap.Error(err))
	}
	defer db.Disconnect()

	client := blockchain.NewClient(logger, config.GetValidatorRestAPIAddr())
	a := app.NewApp(logger, db, client)

	listener := events.NewEventListener(logger, config.GetValidatorAddr())
	for eventType, handler := range a.EventHandlers() {
		listener.SetHandler(eventType, events.Handler(handler))
	}
	if err := listener.Start(); err != nil {
		logger.Fatal("failed to start the event listener", zap.Error(err))
	}

	ser := http.NewServer(logger, a, config.GetPort(), config.GetRequestTimeout())
	go func() {
		if err := ser.Run(); err != nil {
			logger.Error("failed to run the server: " + err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ser.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := listener.Stop(); err != nil {
		logger.Error("event listener shutdown failed", zap.Error(err))
	}

	logger.Info("application finished")
}
