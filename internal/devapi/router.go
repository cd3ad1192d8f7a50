package devapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/studentdesk/internal/middleware"
)

// UploadsPath is the URL prefix stored images are served from
const UploadsPath = "/uploads"

// NewRouter builds the backend's gin engine. storageDir, when not empty, is
// served under UploadsPath.
func NewRouter(h *Handler, storageDir string, lgr zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(lgr))

	if storageDir != "" {
		router.Static(UploadsPath, storageDir)
	}

	courses := router.Group("/courses")
	{
		courses.GET("", h.ListCourses)
		courses.POST("", h.CreateCourse)
	}

	students := router.Group("/students")
	{
		students.GET("", h.ListStudents)
		students.POST("", h.CreateStudent)
		students.PUT("/:id", h.UpdateStudent)
		students.DELETE("/:id", h.DeleteStudent)
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
