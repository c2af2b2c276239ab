// Package http wires the gin router: room CRUD plus the websocket
// attach point.
package http

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gather/internal/adapters/signal"
	"github.com/dkeye/Gather/internal/config"
	"github.com/dkeye/Gather/internal/core"
)

func SetupRouter(ctx context.Context, cfg *config.Config, reg *core.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Content-Type", "X-Owner-Token"}
	r.Use(cors.New(corsCfg))

	log.Info().Str("module", "adapters.http").Msg("router setup")

	rooms := &RoomHandlers{Registry: reg}
	ws := signal.NewController(reg, cfg)

	api := r.Group("/api")
	api.POST("/rooms", rooms.Create)
	api.GET("/rooms/:id", rooms.Info)
	api.DELETE("/rooms/:id", rooms.Delete)
	api.GET("/rooms/:id/ws", func(c *gin.Context) {
		ws.HandleSignal(ctx, c)
	})

	return r
}
