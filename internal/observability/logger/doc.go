// Package logger provides a singleton Zap logger with context-based scoping.
//
// Initialization (once, in main):
//
//	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
//	defer logger.Sync()
//
// In handlers/services (with context):
//
//	log := logger.From(ctx)
//	log.Info("session issued", logger.UserID(id), logger.AppID(appID))
//
// "dev" renders a colored console, "prod" renders JSON. Secrets, password
// hashes and raw token strings must never be passed as fields.
package logger
