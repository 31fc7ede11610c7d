package main

import (
	"log"
	"multisig-vault/internal/config"
	"multisig-vault/internal/logging"
	"multisig-vault/internal/processor"
	"syscall"

	sawtooth "github.com/hyperledger/sawtooth-sdk-go/processor"
	"go.uber.org/zap"
)

func main() {
	logger, err := logging.New(config.GetLogLevel())
	if err != nil {
		log.Fatalln("setting up the logger failed: ", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	defaults, err := config.GetMultisigConfig()
	if err != nil {
		logger.Fatal("invalid multisig configuration", zap.Error(err))
	}

	handler := processor.NewHandler(logger, defaults)

	tp := sawtooth.NewTransactionProcessor(config.GetValidatorAddr())
	tp.AddHandler(handler)
	tp.ShutdownOnSignal(syscall.SIGINT, syscall.SIGTERM)

	logger.Info("transaction processor started",
		zap.String("validator", config.GetValidatorAddr()),
		zap.String("family", handler.FamilyName()),
		zap.Strings("namespaces", handler.Namespaces()))

	if err := tp.Start(); err != nil {
		logger.Fatal("transaction processor stopped", zap.Error(err))
	}
}
