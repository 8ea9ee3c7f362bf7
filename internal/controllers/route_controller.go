package controllers

import (
	"encoding/binary"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"gorm.io/gorm"

	"schoolbus_tracker/internal/models"
)

type RouteController struct {
	db *gorm.DB
}

func NewRouteController(db *gorm.DB) *RouteController {
	return &RouteController{db: db}
}

type routeInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	FromZone    string `json:"from_zone"`
	ToZone      string `json:"to_zone"`
	Geometry    string `json:"geometry"` // GeoJSON LineString from the mapping API
}

// routeView is the API shape of a route. Geometry is stored as WKB but
// served as a GeoJSON string.
type routeView struct {
	models.Route
	Geometry string `json:"geometry,omitempty"`
}

// geometryToWKB parses a GeoJSON string into WKB bytes for storage.
func geometryToWKB(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// wkbToGeoJSON converts stored WKB bytes back into a GeoJSON string.
func wkbToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func toRouteView(route models.Route) routeView {
	jsonGeom, _ := wkbToGeoJSON(route.Geometry)
	return routeView{Route: route, Geometry: jsonGeom}
}

func (rc *RouteController) Create(c *gin.Context) {
	var input routeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wkbGeom, err := geometryToWKB(input.Geometry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geometry: " + err.Error()})
		return
	}
	route := models.Route{
		Name:        input.Name,
		Description: input.Description,
		FromZone:    input.FromZone,
		ToZone:      input.ToZone,
		Geometry:    wkbGeom,
	}
	if err := rc.db.Create(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create route: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": toRouteView(route)})
}

func (rc *RouteController) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var route models.Route
	if err := rc.db.Preload("Vehicles").First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRouteView(route)})
}

func (rc *RouteController) List(c *gin.Context) {
	var routes []models.Route
	if err := rc.db.Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := make([]routeView, 0, len(routes))
	for _, route := range routes {
		views = append(views, toRouteView(route))
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "count": len(views)})
}

func (rc *RouteController) Update(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var route models.Route
	if err := rc.db.First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input routeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	route.Name = input.Name
	route.Description = input.Description
	route.FromZone = input.FromZone
	route.ToZone = input.ToZone
	if input.Geometry != "" {
		wkbGeom, err := geometryToWKB(input.Geometry)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geometry: " + err.Error()})
			return
		}
		route.Geometry = wkbGeom
	}
	if err := rc.db.Save(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update route: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRouteView(route)})
}

func (rc *RouteController) Delete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	res := rc.db.Delete(&models.Route{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route deleted"})
}
