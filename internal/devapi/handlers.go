// Package devapi is an in-memory implementation of the students/courses REST
// backend, for local development and integration tests.
package devapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/filestorage"
	"github.com/yigit/studentdesk/internal/pkg/validation"
)

// imageSubPath is where student images are stored below the storage root
const imageSubPath = "students"

// maxImageSize bounds an uploaded student image
const maxImageSize = 5 << 20

// Handler serves the backend routes
type Handler struct {
	repo    *Repository
	storage filestorage.ImageStorage
	logger  zerolog.Logger
}

// NewHandler creates a Handler. storage may be nil, in which case image
// uploads are rejected.
func NewHandler(repo *Repository, storage filestorage.ImageStorage, logger zerolog.Logger) *Handler {
	return &Handler{repo: repo, storage: storage, logger: logger}
}

// ListCourses handles GET /courses
func (h *Handler) ListCourses(c *gin.Context) {
	c.JSON(http.StatusOK, h.repo.ListCourses())
}

// CreateCourse handles POST /courses
func (h *Handler) CreateCourse(c *gin.Context) {
	var in models.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid course data")
		return
	}
	if err := validation.ValidateCourseInput(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.repo.CreateCourse(in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// ListStudents handles GET /students
func (h *Handler) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, h.repo.ListStudents())
}

// CreateStudent handles POST /students (multipart)
func (h *Handler) CreateStudent(c *gin.Context) {
	fields, ok := h.bindStudentForm(c)
	if !ok {
		return
	}

	student, err := h.repo.CreateStudent(fields)
	if err != nil {
		h.discardImage(fields.Image)
		h.handleError(c, err)
		return
	}

	h.logger.Info().Str("studentID", student.ID).Msg("Student created")
	c.JSON(http.StatusCreated, student)
}

// UpdateStudent handles PUT /students/:id (multipart)
func (h *Handler) UpdateStudent(c *gin.Context) {
	id := c.Param("id")

	fields, ok := h.bindStudentForm(c)
	if !ok {
		return
	}

	student, previousImage, err := h.repo.UpdateStudent(id, fields)
	if err != nil {
		h.discardImage(fields.Image)
		h.handleError(c, err)
		return
	}
	h.discardImage(previousImage)

	h.logger.Info().Str("studentID", id).Msg("Student updated")
	c.JSON(http.StatusOK, student)
}

// DeleteStudent handles DELETE /students/:id
func (h *Handler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")

	image, err := h.repo.DeleteStudent(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.discardImage(image)

	h.logger.Info().Str("studentID", id).Msg("Student deleted")
	c.JSON(http.StatusOK, models.DeleteConfirmation{Message: "Student deleted successfully"})
}

// bindStudentForm reads and validates the multipart student form, saving the
// optional image. It writes the error response itself and returns false on failure.
func (h *Handler) bindStudentForm(c *gin.Context) (StudentFields, bool) {
	in := models.StudentInput{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		CourseID: c.PostForm("course"),
	}
	if err := validation.ValidateStudentInput(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return StudentFields{}, false
	}

	fields := StudentFields{Name: in.Name, Email: in.Email, CourseID: in.CourseID}

	fileHeader, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return fields, true
	case err != nil:
		respondError(c, http.StatusBadRequest, "Invalid image upload")
		return StudentFields{}, false
	}

	ref, err := h.saveImage(fileHeader)
	if err != nil {
		h.handleError(c, err)
		return StudentFields{}, false
	}
	fields.Image = ref
	return fields, true
}

func (h *Handler) saveImage(fh *multipart.FileHeader) (string, error) {
	if h.storage == nil {
		return "", apperrors.NewBadRequestError("Image uploads are disabled")
	}
	if fh.Size > maxImageSize {
		return "", apperrors.NewBadRequestError("Image is too large")
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", apperrors.NewBadRequestError("Only image files are accepted")
	}
	return h.storage.SaveFileWithPath(fh, imageSubPath)
}

func (h *Handler) discardImage(ref string) {
	if ref == "" || h.storage == nil {
		return
	}
	if err := h.storage.DeleteFile(ref); err != nil {
		h.logger.Warn().Err(err).Str("ref", ref).Msg("Failed to remove student image")
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrStudentNotFound):
		respondError(c, http.StatusNotFound, "Student not found")
	case errors.Is(err, apperrors.ErrCourseNotFound):
		respondError(c, http.StatusBadRequest, "Course not found")
	case errors.Is(err, apperrors.ErrEmailTaken):
		respondError(c, http.StatusConflict, "Email already in use")
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrBadRequest):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Backend request failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
