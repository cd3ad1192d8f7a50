package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/app/services"
	"github.com/yigit/studentdesk/internal/middleware"
)

// CourseController handles the course browse view
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

// ListCourses returns the courses, filtered by the optional q parameter
// @Summary Browse courses
// @Tags courses
// @Produce json
// @Param q query string false "Name filter"
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toCourseListResponse(c.courseService.Browse(ctx.Query("q"))), ""))
}

// RetryCourses reloads the course list after a failure
// @Summary Retry loading courses
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse}
// @Failure 502 {object} dto.ErrorResponse
// @Router /courses/retry [post]
func (c *CourseController) RetryCourses(ctx *gin.Context) {
	list, err := c.courseService.Retry(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toCourseListResponse(list), ""))
}

// CreateCourse adds a course on the backend
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param request body models.CourseInput true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var in models.CourseInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid course data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course, err := c.courseService.Create(ctx.Request.Context(), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(course, "Course created"))
}

func toCourseListResponse(list services.CourseList) dto.CourseListResponse {
	resp := dto.CourseListResponse{
		Courses: list.Courses,
		Query:   list.Query,
		Loading: list.Status.Loading,
	}
	if list.Status.Err != nil {
		resp.Error = list.Status.Err.Error()
	}
	return resp
}
