package handler

import (
	"net/http"

	"salesops/internal/middleware"
	"salesops/internal/model"
	"salesops/internal/service"
	"salesops/pkg/response"

	"github.com/gin-gonic/gin"
)

type TargetHandler struct {
	targetService service.TargetService
}

// NewTargetHandler sets up the routing dependencies for daily target endpoints
func NewTargetHandler(targetService service.TargetService) *TargetHandler {
	return &TargetHandler{targetService: targetService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TargetHandler) RegisterRoutes(router *gin.RouterGroup) {
	zm := router.Group("/zm/targets", middleware.RequireRole(model.RoleZoneManager, model.RoleAdmin))
	{
		zm.GET("", h.ListForZM)
		zm.POST("", h.Create)
		zm.GET("/:id", h.Detail)
		zm.PUT("/:id", h.UpdateZMBatch)
	}

	asm := router.Group("/asm/targets", middleware.RequireRole(model.RoleAreaSalesManager))
	{
		asm.GET("", h.ListForASM)
		asm.GET("/:id", h.Detail)
		asm.PUT("/:id", h.UpdateASMBatch)
	}
}

// ListForZM handles GET /zm/targets
// @Summary      List daily targets for the acting Zonal Manager
// @Description  Returns the ZM's targets with per-row and overall target/achieve totals and percents
// @Tags         targets
// @Produce      json
// @Security     BearerAuth
// @Param        asm_id  query     string  false  "Filter by ASM account ID"
// @Param        from    query     string  false  "From date (YYYY-MM-DD)"
// @Param        to      query     string  false  "To date (YYYY-MM-DD)"
// @Param        search  query     string  false  "Search ASM name, username or email"
// @Success      200     {object}  response.Response{data=service.TargetListResponse}
// @Failure      403     {object}  response.Response
// @Router       /zm/targets [get]
func (h *TargetHandler) ListForZM(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	filter := service.TargetListFilter{
		ASMID:  c.Query("asm_id"),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Search: c.Query("search"),
	}
	res, err := h.targetService.ListForZM(c.Request.Context(), p, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Create handles POST /zm/targets
// @Summary      Create a daily target
// @Description  Creates one target row for an ASM and date; rejects duplicates for the same (ASM, date)
// @Tags         targets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTargetRequest  true  "Create Target Payload"
// @Success      201      {object}  response.Response{data=service.TargetDetailResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /zm/targets [post]
func (h *TargetHandler) Create(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req service.CreateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	detail, err := h.targetService.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, detail))
}

// Detail handles GET /zm/targets/:id and GET /asm/targets/:id
// @Summary      Get a daily target
// @Description  Returns the per-metric breakdown with ZM and ASM percent views plus the ASM's geography
// @Tags         targets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Target ID"
// @Success      200  {object}  response.Response{data=service.TargetDetailResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /zm/targets/{id} [get]
func (h *TargetHandler) Detail(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.targetService.Detail(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// UpdateZMBatch handles PUT /zm/targets/:id
// @Summary      Edit a daily target (ZM view)
// @Description  Applies the eight (target, achieve) pairs all-or-nothing; any invalid value rejects the whole batch
// @Tags         targets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Target ID"
// @Param        payload  body      service.TargetEditRequest  true  "Metric slug to pair map"
// @Success      200      {object}  response.Response{data=service.TargetDetailResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /zm/targets/{id} [put]
func (h *TargetHandler) UpdateZMBatch(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.TargetEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	detail, err := h.targetService.UpdateZMBatch(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// ListForASM handles GET /asm/targets
// @Summary      List the acting ASM's daily targets
// @Description  Returns the ASM's rows with achievement measured against both the ZM-set and ASM-set totals
// @Tags         targets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ASMTargetRow}
// @Failure      403  {object}  response.Response
// @Router       /asm/targets [get]
func (h *TargetHandler) ListForASM(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	rows, err := h.targetService.ListForASM(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// UpdateASMBatch handles PUT /asm/targets/:id
// @Summary      Edit a daily target (ASM view)
// @Description  Applies the eight (asm_target, achieve) pairs all-or-nothing for the ASM's own row
// @Tags         targets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Target ID"
// @Param        payload  body      service.TargetEditRequest  true  "Metric slug to pair map"
// @Success      200      {object}  response.Response{data=service.TargetDetailResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /asm/targets/{id} [put]
func (h *TargetHandler) UpdateASMBatch(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.TargetEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	detail, err := h.targetService.UpdateASMBatch(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}
