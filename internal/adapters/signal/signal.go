// Package signal adapts websocket connections into room sessions: a
// deadline-bounded join handshake followed by an event loop that merges the
// room broadcast stream with inbound client frames.
package signal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gather/internal/config"
	"github.com/dkeye/Gather/internal/core"
	"github.com/dkeye/Gather/internal/domain"
	"github.com/dkeye/Gather/internal/protocol"
)

type Controller struct {
	Registry *core.Registry
	Cfg      *config.Config
}

func NewController(reg *core.Registry, cfg *config.Config) *Controller {
	return &Controller{Registry: reg, Cfg: cfg}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the session to completion on
// the handler goroutine.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	roomID, err := domain.ParseRoomID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, protocol.NewError(protocol.KindRoomNotFound, err.Error()))
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	s := newSession(ctl.Registry, roomID, ws, ctl.Cfg)
	s.run(ctx)
}
