package handler

import (
	"net/http"

	"salesops/internal/middleware"
	"salesops/internal/model"
	"salesops/internal/service"
	"salesops/pkg/response"

	"github.com/gin-gonic/gin"
)

type CollectionHandler struct {
	collectionService service.CollectionService
}

// NewCollectionHandler sets up the routing dependencies for SD collection endpoints
func NewCollectionHandler(collectionService service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *CollectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	asm := router.Group("/asm/collections", middleware.RequireRole(model.RoleAreaSalesManager))
	{
		asm.GET("", h.ListForASM)
		asm.POST("", h.Add)
		asm.PUT("/:id", h.Edit)
		asm.DELETE("/:id", h.SoftDelete)
	}

	zm := router.Group("/zm/collections", middleware.RequireRole(model.RoleZoneManager, model.RoleAdmin))
	{
		zm.GET("", h.ListForZM)
		zm.POST("", h.AddForZM)
		zm.PUT("/:id", h.EditForZM)
		zm.DELETE("/:id", h.HardDelete)
	}
}

func collectionFilterFrom(c *gin.Context) service.CollectionListFilter {
	return service.CollectionListFilter{
		ASMID:  c.Query("asm_id"),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Status: c.Query("status"),
	}
}

// ListForASM handles GET /asm/collections
// @Summary      List the acting ASM's collections
// @Description  Returns the ASM's non-deleted collections with status totals
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        from    query     string  false  "From date (YYYY-MM-DD)"
// @Param        to      query     string  false  "To date (YYYY-MM-DD)"
// @Param        status  query     string  false  "Filter by status"
// @Success      200     {object}  response.Response{data=service.CollectionListResponse}
// @Failure      403     {object}  response.Response
// @Router       /asm/collections [get]
func (h *CollectionHandler) ListForASM(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	res, err := h.collectionService.ListForASM(c.Request.Context(), p, collectionFilterFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Add handles POST /asm/collections
// @Summary      Record a collection
// @Description  Records a security-deposit collection against one of the ASM's own partners
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CollectionRequest  true  "Collection Payload"
// @Success      201      {object}  response.Response{data=model.SDCollection}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /asm/collections [post]
func (h *CollectionHandler) Add(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req service.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	collection, err := h.collectionService.Add(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, collection))
}

// Edit handles PUT /asm/collections/:id
// @Summary      Edit a collection (ASM)
// @Description  Edits one of the ASM's own collections
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Collection ID"
// @Param        payload  body      service.CollectionUpdateRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=model.SDCollection}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /asm/collections/{id} [put]
func (h *CollectionHandler) Edit(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.CollectionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	collection, err := h.collectionService.Edit(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, collection))
}

// SoftDelete handles DELETE /asm/collections/:id
// @Summary      Remove a collection (ASM)
// @Description  Flags the collection as deleted; it stays in ZM reporting
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Collection ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /asm/collections/{id} [delete]
func (h *CollectionHandler) SoftDelete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.collectionService.SoftDelete(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Collection removed"))
}

// ListForZM handles GET /zm/collections
// @Summary      List collections under the acting Zonal Manager
// @Description  Returns all collections in the ZM's subtree, including ASM-removed rows, with status totals
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        asm_id  query     string  false  "Filter by ASM account ID"
// @Param        from    query     string  false  "From date (YYYY-MM-DD)"
// @Param        to      query     string  false  "To date (YYYY-MM-DD)"
// @Param        status  query     string  false  "Filter by status"
// @Success      200     {object}  response.Response{data=service.CollectionListResponse}
// @Failure      403     {object}  response.Response
// @Router       /zm/collections [get]
func (h *CollectionHandler) ListForZM(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	res, err := h.collectionService.ListForZM(c.Request.Context(), p, collectionFilterFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// AddForZM handles POST /zm/collections
// @Summary      Record a collection (ZM/Admin)
// @Description  Records a security-deposit collection against any partner; the hierarchy links are resolved from the partner's profile when not supplied
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ZMCollectionRequest  true  "Collection Payload"
// @Success      201      {object}  response.Response{data=model.SDCollection}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /zm/collections [post]
func (h *CollectionHandler) AddForZM(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req service.ZMCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	collection, err := h.collectionService.AddForZM(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, collection))
}

// EditForZM handles PUT /zm/collections/:id
// @Summary      Edit a collection (ZM/Admin)
// @Tags         collections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Collection ID"
// @Param        payload  body      service.CollectionUpdateRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=model.SDCollection}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /zm/collections/{id} [put]
func (h *CollectionHandler) EditForZM(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.CollectionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	collection, err := h.collectionService.EditForZM(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, collection))
}

// HardDelete handles DELETE /zm/collections/:id
// @Summary      Delete a collection (ZM/Admin)
// @Description  Permanently removes the collection row
// @Tags         collections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Collection ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /zm/collections/{id} [delete]
func (h *CollectionHandler) HardDelete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.collectionService.HardDelete(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Collection deleted"))
}
