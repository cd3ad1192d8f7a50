package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/controllers"
	"github.com/yigit/studentdesk/internal/pkg/websocket"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Student      *controllers.StudentController
	Course       *controllers.CourseController
	Notification *controllers.NotificationController
	Session      *controllers.SessionController
	WebSocket    *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers) {
	api := router.Group("/api")

	// Student list, add, edit and delete views
	students := api.Group("/students")
	{
		students.GET("", c.Student.ListStudents)
		students.POST("", c.Student.CreateStudent)
		students.POST("/reload", c.Student.ReloadStudents)
		students.GET("/:id", c.Student.GetStudent)
		students.POST("/:id/select", c.Student.SelectStudent)
		students.PUT("/:id", c.Student.UpdateStudent)
		students.DELETE("/:id", c.Student.DeleteStudent)
	}

	// Course browse view
	courses := api.Group("/courses")
	{
		courses.GET("", c.Course.ListCourses)
		courses.POST("", c.Course.CreateCourse)
		courses.POST("/retry", c.Course.RetryCourses)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", c.Notification.ListNotifications)
		notifications.DELETE("/:id", c.Notification.DismissNotification)
	}

	api.GET("/session", c.Session.GetSession)

	if c.WebSocket != nil {
		router.GET("/ws", c.WebSocket.HandleConnection)
	}

	router.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
}
