package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type provisionRoomRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type provisionRoomResponse struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId"`
}

// handleProvisionRoom is housekeeping only: rooms spring into existence on
// first join, so this endpoint validates the request and acknowledges it
// without touching relay state.
func handleProvisionRoom(c *gin.Context) {
	var req provisionRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room ID and password are required"})
		return
	}
	c.JSON(http.StatusOK, provisionRoomResponse{Success: true, RoomID: req.RoomID})
}
