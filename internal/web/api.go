package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snakayama/kadai/internal/catalogcache"
	"github.com/snakayama/kadai/internal/category"
	"github.com/snakayama/kadai/internal/member"
	"github.com/snakayama/kadai/internal/project"
	"github.com/snakayama/kadai/internal/status"
	"github.com/snakayama/kadai/internal/task"
	"github.com/snakayama/kadai/internal/user"
	"gorm.io/gorm"
)

// registerAPI sets up the JSON mutation and data endpoints. Every mutation
// responds with a uniform {"success": bool, "error": string} result; no
// raw error ever propagates past a handler.
func registerAPI(router *gin.Engine, db *gorm.DB, cache *catalogcache.Cache) {
	api := router.Group("/api")

	// Projects.
	api.POST("/projects", apiCreateProject(db))
	api.PUT("/projects/:id", apiUpdateProject(db))
	api.DELETE("/projects/:id", apiDeleteProject(db, cache))

	// Status catalog.
	api.GET("/projects/:id/statuses", apiGetCatalog(db, cache))
	api.POST("/projects/:id/statuses", apiCreateStatus(db, cache))
	api.PUT("/projects/:id/statuses/:statusID", apiUpdateStatus(db, cache))
	api.DELETE("/projects/:id/statuses/:statusID", apiDeleteStatus(db, cache))
	api.POST("/projects/:id/statuses/reorder", apiReorderStatuses(db, cache))

	// Tasks.
	api.GET("/projects/:id/board", apiGetBoard(db))
	api.POST("/projects/:id/tasks", apiCreateTask(db))
	api.PUT("/tasks/:taskID", apiUpdateTask(db))
	api.DELETE("/tasks/:taskID", apiDeleteTask(db))
	api.PUT("/tasks/:taskID/status", apiUpdateTaskStatus(db))
	api.PUT("/tasks/:taskID/dates", apiUpdateTaskDates(db))

	// Categories.
	api.POST("/projects/:id/categories", apiCreateCategory(db))
	api.PUT("/projects/:id/categories/:categoryID", apiUpdateCategory(db))
	api.DELETE("/projects/:id/categories/:categoryID", apiDeleteCategory(db))
	api.POST("/projects/:id/categories/reorder", apiReorderCategories(db))

	// Members.
	api.POST("/projects/:id/members", apiAddMember(db))
	api.DELETE("/projects/:id/members/:userID", apiRemoveMember(db))
}

// ok reports a successful mutation.
func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// fail reports a handled mutation failure with its human-readable message.
func fail(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

// parseDate converts a "YYYY-MM-DD" string to a time pointer; empty means
// unset.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("web: date %q must be YYYY-MM-DD", s)
	}
	return &t, nil
}

func apiCreateProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string `json:"name"`
			Key         string `json:"key"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		p, err := project.Create(db, project.CreateOpts{Name: req.Name, Key: req.Key, Description: req.Description})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": p.ID})
	}
}

func apiUpdateProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		if err := project.Update(db, c.Param("id"), req.Name, req.Description); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiDeleteProject(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := project.Delete(db, id); err != nil {
			fail(c, err)
			return
		}
		cache.Invalidate(c.Request.Context(), id)
		ok(c)
	}
}

func apiGetCatalog(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		catalog, err := catalogFor(c.Request.Context(), db, cache, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "statuses": StatusRows(catalog)})
	}
}

func apiCreateStatus(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Key   string `json:"key"`
			Label string `json:"label"`
			Color string `json:"color"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		projectID := c.Param("id")
		s, err := status.Create(db, status.CreateOpts{
			ProjectID: projectID,
			Key:       req.Key,
			Label:     req.Label,
			Color:     req.Color,
		})
		if err != nil {
			fail(c, err)
			return
		}
		cache.Invalidate(c.Request.Context(), projectID)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": s.ID})
	}
}

func apiUpdateStatus(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Label        string `json:"label"`
			Color        string `json:"color"`
			DisplayOrder int    `json:"displayOrder"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		projectID := c.Param("id")
		err := status.Update(db, status.UpdateOpts{
			ID:           c.Param("statusID"),
			ProjectID:    projectID,
			Label:        req.Label,
			Color:        req.Color,
			DisplayOrder: req.DisplayOrder,
		})
		if err != nil {
			fail(c, err)
			return
		}
		cache.Invalidate(c.Request.Context(), projectID)
		ok(c)
	}
}

func apiDeleteStatus(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("id")
		if err := status.Delete(db, c.Param("statusID"), projectID); err != nil {
			fail(c, err)
			return
		}
		cache.Invalidate(c.Request.Context(), projectID)
		ok(c)
	}
}

func apiReorderStatuses(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Items []status.OrderItem `json:"items"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		projectID := c.Param("id")
		if err := status.Reorder(db, projectID, req.Items); err != nil {
			fail(c, err)
			return
		}
		cache.Invalidate(c.Request.Context(), projectID)
		ok(c)
	}
}

func apiGetBoard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
			return
		}
		columns, err := BoardColumns(db, p)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "columns": columns})
	}
}

type taskRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assigneeId"`
	CategoryID  string `json:"categoryId"`
	StartDate   string `json:"startDate"`
	DueDate     string `json:"dueDate"`
}

func apiCreateTask(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req taskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			fail(c, err)
			return
		}
		due, err := parseDate(req.DueDate)
		if err != nil {
			fail(c, err)
			return
		}
		creator, err := user.Current(db)
		if err != nil {
			fail(c, err)
			return
		}
		t, err := task.Create(db, task.CreateOpts{
			ProjectID:   c.Param("id"),
			Summary:     req.Summary,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			AssigneeID:  req.AssigneeID,
			CategoryID:  req.CategoryID,
			StartDate:   start,
			DueDate:     due,
			CreatedBy:   creator.ID,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": t.ID})
	}
}

func apiUpdateTask(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			taskRequest
			ProjectID string `json:"projectId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			fail(c, err)
			return
		}
		due, err := parseDate(req.DueDate)
		if err != nil {
			fail(c, err)
			return
		}
		err = task.Update(db, task.UpdateOpts{
			TaskID:      c.Param("taskID"),
			ProjectID:   req.ProjectID,
			Summary:     req.Summary,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			AssigneeID:  req.AssigneeID,
			CategoryID:  req.CategoryID,
			StartDate:   start,
			DueDate:     due,
		})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiDeleteTask(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ProjectID string `json:"projectId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		if err := task.Delete(db, c.Param("taskID"), req.ProjectID); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiUpdateTaskStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ProjectID string `json:"projectId"`
			Status    string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		if err := task.UpdateStatus(db, c.Param("taskID"), req.ProjectID, req.Status); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiUpdateTaskDates(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ProjectID string `json:"projectId"`
			StartDate string `json:"startDate"`
			DueDate   string `json:"dueDate"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			fail(c, err)
			return
		}
		due, err := parseDate(req.DueDate)
		if err != nil {
			fail(c, err)
			return
		}
		if err := task.UpdateDates(db, c.Param("taskID"), req.ProjectID, start, due); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiCreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		cat, err := category.Create(db, category.CreateOpts{
			ProjectID: c.Param("id"),
			Name:      req.Name,
			Color:     req.Color,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": cat.ID})
	}
}

func apiUpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		if err := category.Update(db, c.Param("categoryID"), c.Param("id"), req.Name, req.Color); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiDeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := category.Delete(db, c.Param("categoryID"), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiReorderCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Items []category.OrderItem `json:"items"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		if err := category.Reorder(db, c.Param("id"), req.Items); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiAddMember(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"userId"`
			Role   string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("web: invalid request body"))
			return
		}
		if err := member.Add(db, c.Param("id"), req.UserID, req.Role); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}

func apiRemoveMember(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := member.Remove(db, c.Param("id"), c.Param("userID")); err != nil {
			fail(c, err)
			return
		}
		ok(c)
	}
}
