package main

import (
	"go.uber.org/zap"

	"plc-alarm-worker/internal/config"
	"plc-alarm-worker/internal/logging"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName)
}
