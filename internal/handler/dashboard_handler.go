package handler

import (
	"net/http"

	"salesops/internal/middleware"
	"salesops/internal/model"
	"salesops/internal/service"
	"salesops/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler sets up the routing dependencies for dashboard endpoints
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/zm/dashboard", middleware.RequireRole(model.RoleZoneManager), h.ZMDashboard)
	router.GET("/asm/dashboard", middleware.RequireRole(model.RoleAreaSalesManager), h.ASMDashboard)
	router.GET("/admin/dashboard", middleware.RequireRole(model.RoleAdmin), h.AdminDashboard)
}

// ZMDashboard handles GET /zm/dashboard
// @Summary      Zonal Manager dashboard
// @Description  Today's target/achieve totals per metric plus the six-month monthly series
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ZMDashboardResponse}
// @Failure      403  {object}  response.Response
// @Router       /zm/dashboard [get]
func (h *DashboardHandler) ZMDashboard(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	res, err := h.dashboardService.ZMDashboard(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ASMDashboard handles GET /asm/dashboard
// @Summary      ASM dashboard
// @Description  The last six target rows, overall percent and this month's collection revenue
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ASMDashboardResponse}
// @Failure      403  {object}  response.Response
// @Router       /asm/dashboard [get]
func (h *DashboardHandler) ASMDashboard(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	res, err := h.dashboardService.ASMDashboard(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// AdminDashboard handles GET /admin/dashboard
// @Summary      Admin dashboard
// @Description  Account counts by role
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.AdminDashboardResponse}
// @Failure      403  {object}  response.Response
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	res, err := h.dashboardService.AdminDashboard(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
