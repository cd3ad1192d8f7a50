package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/app/services"
	"github.com/yigit/studentdesk/internal/middleware"
)

// studentForm is the add/edit form. It binds from multipart, urlencoded or JSON bodies.
type studentForm struct {
	ID       string `form:"id" json:"id"`
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	CourseID string `form:"course" json:"course"`
}

// StudentController handles the student list, add, edit and delete views
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// ListStudents returns the student list view
// @Summary List students
// @Tags students
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse}
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	list := c.studentService.List()

	resp := dto.StudentListResponse{
		Students: list.Students,
		Count:    len(list.Students),
		Loading:  list.Status.Loading,
	}
	if list.Status.Err != nil {
		resp.Error = list.Status.Err.Error()
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, ""))
}

// GetStudent returns one student, used to pre-fill the edit form
// @Summary Get student
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.Get(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student, ""))
}

// SelectStudent marks a student from the list for editing
// @Summary Select student for editing
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id}/select [post]
func (c *StudentController) SelectStudent(ctx *gin.Context) {
	student, err := c.studentService.Select(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student, ""))
}

// ReloadStudents retries loading the student list
// @Summary Reload students
// @Tags students
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse}
// @Failure 502 {object} dto.ErrorResponse
// @Router /students/reload [post]
func (c *StudentController) ReloadStudents(ctx *gin.Context) {
	if err := c.studentService.Reload(ctx.Request.Context()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.ListStudents(ctx)
}

// CreateStudent handles the add form
// @Summary Add student
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param email formData string true "Email"
// @Param course formData string true "Course ID"
// @Param image formData file false "Image"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	in, ok := bindStudentInput(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.Add(ctx.Request.Context(), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(student, "Student added"))
}

// UpdateStudent handles the edit form
// @Summary Edit student
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	in, ok := bindStudentInput(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.Edit(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student, "Student updated"))
}

// DeleteStudent handles removal from the list
// @Summary Delete student
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteStudentResponse}
// @Failure 502 {object} dto.ErrorResponse
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := c.studentService.Remove(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.DeleteStudentResponse{ID: id, Removed: true}, "Student deleted"))
}

// bindStudentInput reads the form and the optional image part
func bindStudentInput(ctx *gin.Context) (models.StudentInput, bool) {
	var form studentForm
	if err := ctx.ShouldBind(&form); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return models.StudentInput{}, false
	}

	in := models.StudentInput{
		ID:       form.ID,
		Name:     form.Name,
		Email:    form.Email,
		CourseID: form.CourseID,
	}

	fileHeader, err := ctx.FormFile("image")
	switch {
	case err == nil:
		img, err := openImage(fileHeader)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid image upload")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail.WithField("image")))
			return models.StudentInput{}, false
		}
		in.Image = img
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid image upload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail.WithField("image").WithDetails(err.Error())))
		return models.StudentInput{}, false
	}
	return in, true
}

// openImage opens the uploaded part. The multipart form is cleaned up by
// net/http at the end of the request.
func openImage(fh *multipart.FileHeader) (*models.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return &models.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     f,
	}, nil
}
