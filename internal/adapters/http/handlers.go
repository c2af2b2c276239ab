package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Gather/internal/core"
	"github.com/dkeye/Gather/internal/domain"
	"github.com/dkeye/Gather/internal/protocol"
)

type RoomHandlers struct {
	Registry *core.Registry
}

type CreateRoomRequest struct {
	Username string  `json:"username" binding:"required"`
	Password *string `json:"password"`
}

type CreateRoomResponse struct {
	RoomID      domain.RoomID   `json:"room_id"`
	OwnerToken  string          `json:"owner_token"`
	MemberToken string          `json:"member_token"`
	Username    domain.Username `json:"username"`
}

type RoomInfoResponse struct {
	Exists      bool `json:"exists"`
	HasPassword bool `json:"has_password"`
}

// Create builds a room with the creator as its single initial online member.
func (h *RoomHandlers) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(protocol.KindOther, "missing or invalid request body"))
		return
	}

	username, err := domain.ParseUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(protocol.KindInvalidUsername, err.Error()))
		return
	}
	var password *domain.Password
	if req.Password != nil {
		p, err := domain.ParsePassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(protocol.KindOther, err.Error()))
			return
		}
		password = &p
	}

	room, assigned, memberToken, err := h.Registry.CreateRoom(username, password)
	if err != nil {
		kind, message := core.ErrorKindOf(err)
		c.JSON(http.StatusBadRequest, errorBody(kind, message))
		return
	}

	c.JSON(http.StatusCreated, CreateRoomResponse{
		RoomID:      room.ID(),
		OwnerToken:  room.OwnerToken(),
		MemberToken: memberToken,
		Username:    assigned,
	})
}

// Info reports room existence and whether it is password protected.
func (h *RoomHandlers) Info(c *gin.Context) {
	roomID, err := domain.ParseRoomID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(protocol.KindOther, err.Error()))
		return
	}
	exists, hasPassword := h.Registry.Info(roomID)
	c.JSON(http.StatusOK, RoomInfoResponse{Exists: exists, HasPassword: hasPassword})
}

// Delete removes a room, authorized by exact owner-token match.
func (h *RoomHandlers) Delete(c *gin.Context) {
	roomID, err := domain.ParseRoomID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(protocol.KindOther, err.Error()))
		return
	}
	ownerToken := c.GetHeader("X-Owner-Token")
	if ownerToken == "" {
		c.Status(http.StatusUnauthorized)
		return
	}

	switch err := h.Registry.Delete(roomID, ownerToken); {
	case errors.Is(err, core.ErrRoomNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, core.ErrForbidden):
		c.Status(http.StatusForbidden)
	default:
		c.Status(http.StatusNoContent)
	}
}

func errorBody(kind protocol.ErrorKind, message string) gin.H {
	body := gin.H{"kind": kind}
	if message != "" {
		body["message"] = message
	}
	return body
}
