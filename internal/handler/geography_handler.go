package handler

import (
	"net/http"

	"salesops/internal/middleware"
	"salesops/internal/model"
	"salesops/internal/service"
	"salesops/pkg/response"

	"github.com/gin-gonic/gin"
)

type GeographyHandler struct {
	geographyService service.GeographyService
}

// NewGeographyHandler sets up the routing dependencies for geography endpoints
func NewGeographyHandler(geographyService service.GeographyService) *GeographyHandler {
	return &GeographyHandler{geographyService: geographyService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *GeographyHandler) RegisterRoutes(router *gin.RouterGroup) {
	lookup := router.Group("/geography", middleware.RequireRole(model.Roles...))
	{
		lookup.GET("/states", h.States)
		lookup.GET("/districts", h.Districts)
		lookup.GET("/offices", h.Offices)
	}

	admin := router.Group("/geography", middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/pincode-data", h.StagePincodeData)
		admin.POST("/pincode-data/map", h.MapPincodeData)
	}
}

// States handles GET /geography/states
// @Summary      Search states
// @Tags         geography
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Name fragment"
// @Success      200  {object}  response.Response{data=[]model.State}
// @Router       /geography/states [get]
func (h *GeographyHandler) States(c *gin.Context) {
	states, err := h.geographyService.States(c.Request.Context(), service.LookupFilter{Query: c.Query("q")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, states))
}

// Districts handles GET /geography/districts
// @Summary      Search districts, optionally narrowed to states
// @Tags         geography
// @Produce      json
// @Security     BearerAuth
// @Param        q         query     string    false  "Name fragment"
// @Param        state_id  query     []string  false  "State IDs"
// @Success      200       {object}  response.Response{data=[]model.District}
// @Router       /geography/districts [get]
func (h *GeographyHandler) Districts(c *gin.Context) {
	districts, err := h.geographyService.Districts(c.Request.Context(), service.LookupFilter{
		Query:    c.Query("q"),
		StateIDs: c.QueryArray("state_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, districts))
}

// Offices handles GET /geography/offices
// @Summary      Search offices, optionally narrowed to districts
// @Tags         geography
// @Produce      json
// @Security     BearerAuth
// @Param        q            query     string    false  "Name fragment"
// @Param        district_id  query     []string  false  "District IDs"
// @Success      200          {object}  response.Response{data=[]model.Office}
// @Router       /geography/offices [get]
func (h *GeographyHandler) Offices(c *gin.Context) {
	offices, err := h.geographyService.Offices(c.Request.Context(), service.LookupFilter{
		Query:       c.Query("q"),
		DistrictIDs: c.QueryArray("district_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, offices))
}

// StagePincodeData handles POST /geography/pincode-data
// @Summary      Stage raw pincode rows
// @Description  Loads raw pincode rows into the staging table for later mapping
// @Tags         geography
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      []model.PincodeData  true  "Pincode rows"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /geography/pincode-data [post]
func (h *GeographyHandler) StagePincodeData(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var rows []model.PincodeData
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	staged, err := h.geographyService.StagePincodeData(c.Request.Context(), p, rows)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, map[string]int{"staged": staged}))
}

// MapPincodeData handles POST /geography/pincode-data/map
// @Summary      Map staged pincode rows into the master geography
// @Description  Folds every staged row into States, Districts and Offices in one transaction
// @Tags         geography
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.MapPincodeResult}
// @Failure      403  {object}  response.Response
// @Router       /geography/pincode-data/map [post]
func (h *GeographyHandler) MapPincodeData(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	result, err := h.geographyService.MapPincodeData(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
