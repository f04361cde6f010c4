package handler

import (
	"net/http"

	"salesops/internal/middleware"
	"salesops/internal/model"
	"salesops/internal/service"
	"salesops/pkg/response"

	"github.com/gin-gonic/gin"
)

type HierarchyHandler struct {
	hierarchyService service.HierarchyService
}

// NewHierarchyHandler sets up the routing dependencies for hierarchy endpoints
func NewHierarchyHandler(hierarchyService service.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{hierarchyService: hierarchyService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *HierarchyHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/profiles", middleware.RequireRole(model.RoleAdmin))
	{
		profiles.GET("/asm", h.ListASMProfiles)
		profiles.POST("/asm", h.CreateASMProfile)
		profiles.PUT("/asm/:id", h.UpdateASMProfile)
		profiles.GET("/zm", h.ListZMProfiles)
		profiles.POST("/zm", h.CreateZMProfile)
		profiles.PUT("/zm/:id", h.UpdateZMProfile)
	}

	// Partner chain display for the collection and account forms
	router.GET("/partners/:id/details",
		middleware.RequireRole(model.RoleAdmin, model.RoleZoneManager, model.RoleAreaSalesManager),
		h.PartnerDetails)
}

// PartnerDetails handles GET /partners/:id/details
// @Summary      Get a partner's upstream chain
// @Description  Returns the partner's ASM and Zonal Manager; absent links come back as empty fields
// @Tags         hierarchy
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Partner account ID"
// @Success      200  {object}  response.Response{data=service.PartnerDetailsResponse}
// @Failure      404  {object}  response.Response
// @Router       /partners/{id}/details [get]
func (h *HierarchyHandler) PartnerDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.hierarchyService.PartnerDetails(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, details))
}

// ListASMProfiles handles GET /profiles/asm
// @Summary      List ASM profiles
// @Tags         hierarchy
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ASMProfile}
// @Failure      403  {object}  response.Response
// @Router       /profiles/asm [get]
func (h *HierarchyHandler) ListASMProfiles(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	profiles, err := h.hierarchyService.ListASMProfiles(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profiles))
}

// CreateASMProfile handles POST /profiles/asm
// @Summary      Create an ASM profile
// @Description  Links an ASM account to its partner accounts
// @Tags         hierarchy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ProfileRequest  true  "Profile Payload"
// @Success      201      {object}  response.Response{data=model.ASMProfile}
// @Failure      400      {object}  response.Response
// @Router       /profiles/asm [post]
func (h *HierarchyHandler) CreateASMProfile(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req service.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.hierarchyService.CreateASMProfile(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, profile))
}

// UpdateASMProfile handles PUT /profiles/asm/:id
// @Summary      Update an ASM profile's partner links
// @Tags         hierarchy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Profile ID"
// @Param        payload  body      service.ProfileRequest  true  "Profile Payload"
// @Success      200      {object}  response.Response{data=model.ASMProfile}
// @Failure      400      {object}  response.Response
// @Router       /profiles/asm/{id} [put]
func (h *HierarchyHandler) UpdateASMProfile(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.hierarchyService.UpdateASMProfile(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// ListZMProfiles handles GET /profiles/zm
// @Summary      List Zonal Manager profiles
// @Tags         hierarchy
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ZonalManager}
// @Failure      403  {object}  response.Response
// @Router       /profiles/zm [get]
func (h *HierarchyHandler) ListZMProfiles(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	profiles, err := h.hierarchyService.ListZMProfiles(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profiles))
}

// CreateZMProfile handles POST /profiles/zm
// @Summary      Create a Zonal Manager profile
// @Description  Links a ZM account to its ASM accounts
// @Tags         hierarchy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ProfileRequest  true  "Profile Payload"
// @Success      201      {object}  response.Response{data=model.ZonalManager}
// @Failure      400      {object}  response.Response
// @Router       /profiles/zm [post]
func (h *HierarchyHandler) CreateZMProfile(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req service.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.hierarchyService.CreateZMProfile(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, profile))
}

// UpdateZMProfile handles PUT /profiles/zm/:id
// @Summary      Update a Zonal Manager profile's ASM links
// @Tags         hierarchy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Profile ID"
// @Param        payload  body      service.ProfileRequest  true  "Profile Payload"
// @Success      200      {object}  response.Response{data=model.ZonalManager}
// @Failure      400      {object}  response.Response
// @Router       /profiles/zm/{id} [put]
func (h *HierarchyHandler) UpdateZMProfile(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.hierarchyService.UpdateZMProfile(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}
