package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/app"
	"github.com/arnavshah/shift-relay-go/pkg/config"
	"github.com/arnavshah/shift-relay-go/pkg/logging"
)

var r http.Handler

func init() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// console only; the process lives as long as the instance
	logger, _, err := logging.InitLogger(cfg.Env, "")
	if err != nil {
		panic(err)
	}

	// Presence state is per instance; serverless deployments should run
	// a single warm instance or use the standalone server.
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise", zap.Error(err))
	}
	r = a.Handler.NewRouter()
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, r_req *http.Request) {
	r.ServeHTTP(w, r_req)
}
