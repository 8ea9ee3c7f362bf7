package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/middleware"
	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

const wsWriteTimeout = 10 * time.Second

// WSController streams live position updates to dashboard and guardian
// clients. The browser websocket API cannot set headers, so the token rides
// in a query parameter.
type WSController struct {
	db     *gorm.DB
	broker realtime.Broker
}

func NewWSController(db *gorm.DB, broker realtime.Broker) *WSController {
	return &WSController{db: db, broker: broker}
}

// Stream upgrades the connection and forwards position updates until the
// client goes away. ?vehicle_id=N narrows the feed to one vehicle; admins
// and drivers may omit it to receive the whole fleet. Guardians only ever
// receive vehicles present in their assigned index.
func (wc *WSController) Stream(c *gin.Context) {
	claims, err := middleware.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}

	var vehicleID uint
	if raw := c.Query("vehicle_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle_id"})
			return
		}
		vehicleID = uint(n)
	}

	allowed, err := wc.allowedVehicles(claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if allowed != nil {
		// Restricted feed: a single requested vehicle must be in the set,
		// and an unscoped request degrades to the set itself.
		if vehicleID != 0 {
			if _, ok := allowed[vehicleID]; !ok {
				c.JSON(http.StatusForbidden, gin.H{"error": "vehicle not assigned to this account"})
				return
			}
		} else if len(allowed) == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "no vehicles assigned to this account"})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("WebSocket upgrade failed.")
		return
	}
	defer conn.Close()

	updates := wc.broker.Subscribe(vehicleID)
	defer wc.broker.Unsubscribe(vehicleID, updates)

	// Reader goroutine: we never expect client frames, but reading is the
	// only way to notice a closed connection promptly.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logrus.WithFields(logrus.Fields{
		"user_id":    claims.UserID,
		"role":       claims.Role,
		"vehicle_id": vehicleID,
	}).Info("WebSocket position stream opened.")

	for {
		select {
		case <-done:
			return
		case evt, ok := <-updates:
			if !ok {
				return
			}
			if allowed != nil {
				if _, permitted := allowed[evt.VehicleID]; !permitted {
					continue
				}
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				logrus.WithError(err).Debug("WebSocket write failed, closing stream.")
				return
			}
		}
	}
}

// allowedVehicles returns the vehicle set a user may watch, or nil for an
// unrestricted feed (admins and drivers).
func (wc *WSController) allowedVehicles(claims *middleware.Claims) (map[uint]struct{}, error) {
	if claims.Role != "guardian" {
		return nil, nil
	}
	var user models.User
	if err := wc.db.First(&user, claims.UserID).Error; err != nil {
		return nil, err
	}
	allowed := make(map[uint]struct{}, len(user.AssignedBusIDs))
	for _, id := range user.AssignedBusIDs {
		allowed[uint(id)] = struct{}{}
	}
	return allowed, nil
}
