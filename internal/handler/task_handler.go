package handler

import (
	"net/http"

	"salesops/internal/middleware"
	"salesops/internal/model"
	"salesops/internal/service"
	"salesops/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler sets up the routing dependencies for task board endpoints
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks", middleware.RequireRole(model.RoleAdmin, model.RoleZoneManager, model.RoleAreaSalesManager))
	{
		tasks.POST("", h.Assign)
		tasks.GET("/assigned", h.ListAssignedBy)
		tasks.GET("/mine", h.ListAssignedTo)
		tasks.GET("/:id", h.Detail)
		tasks.PUT("/:id", h.Update)
		tasks.DELETE("/:id", h.Delete)
		tasks.PUT("/:id/status", h.UpdateStatus)
		tasks.POST("/:id/notes", h.AddNote)

		tasks.GET("/categories", h.ListCategories)
		tasks.POST("/categories", h.CreateCategory)
	}

	router.DELETE("/tasks/:id/purge", middleware.RequireRole(model.RoleAdmin), h.Purge)
}

func taskFilterFrom(c *gin.Context) service.TaskListFilter {
	return service.TaskListFilter{
		CategoryID: c.Query("category_id"),
		AssigneeID: c.Query("assignee_id"),
		Status:     c.Query("status"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}
}

// Assign handles POST /tasks
// @Summary      Assign a task
// @Description  Creates a task for one of the ZM's own ASMs (Admin may assign to anyone) and notifies subscribers
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AssignTaskRequest  true  "Assign Task Payload"
// @Success      201      {object}  response.Response{data=model.Task}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /tasks [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req service.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.Assign(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, task))
}

// ListAssignedBy handles GET /tasks/assigned
// @Summary      List tasks the acting account assigned
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        category_id  query     string  false  "Filter by category"
// @Param        assignee_id  query     string  false  "Filter by assignee"
// @Param        status       query     string  false  "Filter by status"
// @Param        from         query     string  false  "Start date on or after (YYYY-MM-DD)"
// @Param        to           query     string  false  "End date on or before (YYYY-MM-DD)"
// @Success      200          {object}  response.Response{data=service.TaskListResponse}
// @Router       /tasks/assigned [get]
func (h *TaskHandler) ListAssignedBy(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	res, err := h.taskService.ListAssignedBy(c.Request.Context(), p, taskFilterFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListAssignedTo handles GET /tasks/mine
// @Summary      List tasks assigned to the acting account
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        category_id  query     string  false  "Filter by category"
// @Param        status       query     string  false  "Filter by status"
// @Param        from         query     string  false  "Start date on or after (YYYY-MM-DD)"
// @Param        to           query     string  false  "End date on or before (YYYY-MM-DD)"
// @Success      200          {object}  response.Response{data=service.TaskListResponse}
// @Router       /tasks/mine [get]
func (h *TaskHandler) ListAssignedTo(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	res, err := h.taskService.ListAssignedTo(c.Request.Context(), p, taskFilterFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Detail handles GET /tasks/:id
// @Summary      Get a task with its note thread
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskDetailResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Detail(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.taskService.Detail(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// Update handles PUT /tasks/:id
// @Summary      Update a task
// @Description  Edits task fields; only the assignor (or Admin) may edit
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Task ID"
// @Param        payload  body      service.UpdateTaskRequest  true  "Update Task Payload"
// @Success      200      {object}  response.Response{data=model.Task}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// Delete handles DELETE /tasks/:id
// @Summary      Remove a task
// @Description  Hides the task from both boards; only the assignor (or Admin) may remove
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Task removed"))
}

// Purge handles DELETE /tasks/:id/purge
// @Summary      Permanently delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /tasks/{id}/purge [delete]
func (h *TaskHandler) Purge(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Purge(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Task deleted"))
}

// UpdateStatus handles PUT /tasks/:id/status
// @Summary      Change a task's status
// @Description  Either end of the assignment may move the task between statuses
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Task ID"
// @Param        payload  body      service.TaskStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=model.Task}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /tasks/{id}/status [put]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// AddNote handles POST /tasks/:id/notes
// @Summary      Add a note to a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Task ID"
// @Param        payload  body      service.TaskNoteRequest  true  "Note Payload"
// @Success      201      {object}  response.Response{data=model.TaskNote}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /tasks/{id}/notes [post]
func (h *TaskHandler) AddNote(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.TaskNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	note, err := h.taskService.AddNote(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, note))
}

// ListCategories handles GET /tasks/categories
// @Summary      List task categories
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.TaskCategory}
// @Router       /tasks/categories [get]
func (h *TaskHandler) ListCategories(c *gin.Context) {
	categories, err := h.taskService.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory handles POST /tasks/categories
// @Summary      Create a task category
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CategoryRequest  true  "Category Payload"
// @Success      201      {object}  response.Response{data=model.TaskCategory}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /tasks/categories [post]
func (h *TaskHandler) CreateCategory(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.taskService.CreateCategory(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}
