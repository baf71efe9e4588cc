package server

import (
	"net/http"

	"go.uber.org/zap"

	"legacyshift/internal/gateway/handler"
	"legacyshift/internal/gateway/middleware"
)

func NewMux(conversor *handler.ConversorHandler, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	conversor.Register(mux)

	// Middleware
	return middleware.CORS(middleware.AccessLog(log)(mux))
}
