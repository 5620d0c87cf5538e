package web

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snakayama/kadai/internal/catalogcache"
	"github.com/snakayama/kadai/internal/category"
	"github.com/snakayama/kadai/internal/member"
	"github.com/snakayama/kadai/internal/models"
	"github.com/snakayama/kadai/internal/project"
	"github.com/snakayama/kadai/internal/status"
	"github.com/snakayama/kadai/internal/task"
	"gorm.io/gorm"
)

// registerRoutes sets up all page and API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, cache *catalogcache.Cache) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	// Pages.
	router.GET("/", handleIndex(db))
	router.GET("/projects/:id", handleOverview(db, cache))
	router.GET("/projects/:id/tasks", handleTasks(db, cache))
	router.GET("/projects/:id/board", handleBoard(db))
	router.GET("/projects/:id/gantt", handleGantt(db, cache))
	router.GET("/projects/:id/members", handleMembers(db))
	router.GET("/projects/:id/settings", handleSettings(db, cache))

	registerAPI(router, db, cache)
}

// catalogFor resolves a project's catalog through the cache. Resolve
// materializes the defaults on a project's first read; the cache only ever
// holds already-persisted rows.
func catalogFor(ctx context.Context, db *gorm.DB, cache *catalogcache.Cache, projectID string) ([]models.TaskStatus, error) {
	if cached, ok := cache.Get(ctx, projectID); ok {
		return cached, nil
	}
	catalog, err := status.Resolve(db, projectID)
	if err != nil {
		return nil, err
	}
	cache.Set(ctx, projectID, catalog)
	return catalog, nil
}

func handleIndex(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		first, err := project.First(db)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		if first != nil {
			c.Redirect(http.StatusFound, "/projects/"+first.ID)
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{"Projects": []models.Project{}})
	}
}

func handleOverview(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": err.Error()})
			return
		}
		catalog, err := catalogFor(c.Request.Context(), db, cache, p.ID)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		summary, err := ProjectSummary(db, p.ID, catalog)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		projects, _ := project.List(db)
		c.HTML(http.StatusOK, "overview.html", gin.H{
			"Project":  p,
			"Projects": projects,
			"Summary":  summary,
		})
	}
}

func handleTasks(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": err.Error()})
			return
		}
		catalog, err := catalogFor(c.Request.Context(), db, cache, p.ID)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		filters := task.ListFilters{
			Status:     c.Query("status"),
			Priority:   c.Query("priority"),
			CategoryID: c.Query("category"),
			AssigneeID: c.Query("assignee"),
		}
		rows, err := TaskTable(db, p, catalog, filters)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		categories, _ := category.List(db, p.ID)
		members, _ := member.ListWithUsers(db, p.ID)
		c.HTML(http.StatusOK, "tasks.html", gin.H{
			"Project":    p,
			"Tasks":      rows,
			"Catalog":    catalog,
			"Categories": categories,
			"Members":    members,
			"Filters":    filters,
		})
	}
}

func handleBoard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": err.Error()})
			return
		}
		columns, err := BoardColumns(db, p)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		c.HTML(http.StatusOK, "board.html", gin.H{
			"Project": p,
			"Columns": columns,
		})
	}
}

func handleGantt(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": err.Error()})
			return
		}
		catalog, err := catalogFor(c.Request.Context(), db, cache, p.ID)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		rows, err := GanttRows(db, p, catalog)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		c.HTML(http.StatusOK, "gantt.html", gin.H{
			"Project": p,
			"Tasks":   rows,
		})
	}
}

func handleMembers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": err.Error()})
			return
		}
		members, err := member.ListWithUsers(db, p.ID)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		c.HTML(http.StatusOK, "members.html", gin.H{
			"Project": p,
			"Members": members,
		})
	}
}

func handleSettings(db *gorm.DB, cache *catalogcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": err.Error()})
			return
		}
		catalog, err := catalogFor(c.Request.Context(), db, cache, p.ID)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		categories, err := category.List(db, p.ID)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
			return
		}
		c.HTML(http.StatusOK, "settings.html", gin.H{
			"Project":    p,
			"Catalog":    catalog,
			"Categories": categories,
		})
	}
}
