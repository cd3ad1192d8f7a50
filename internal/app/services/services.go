package services

import (
	"context"
	"errors"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/store"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// Services defined in this package:
// - StudentService: list/add/edit/remove students and report the outcome as a notification
// - CourseService: browse and search courses, retry a failed course load, create courses

// Notifier is the part of the notification channel the services use
type Notifier interface {
	Success(message string) models.Notification
	Error(message string) models.Notification
	Info(message string) models.Notification
}

// StudentStore is the part of the data store the student views use
type StudentStore interface {
	Students() []models.Student
	Student(id string) (models.Student, error)
	StudentsStatus() store.LoadStatus
	ReloadStudents(ctx context.Context) error
	AddStudent(ctx context.Context, in models.StudentInput) (models.Student, error)
	EditStudent(ctx context.Context, id string, in models.StudentInput) (models.Student, error)
	RemoveStudent(ctx context.Context, id string) (bool, error)
}

// CourseStore is the part of the data store the course views use
type CourseStore interface {
	Courses() []models.Course
	SearchCourses(query string) []models.Course
	CoursesStatus() store.LoadStatus
	ReloadCourses(ctx context.Context) error
}

// CourseCreator creates courses on the backend
type CourseCreator interface {
	CreateCourse(ctx context.Context, in models.CourseInput) (*models.Course, error)
}

// failureMessage prefers the error's own message and falls back to the
// view's default text
func failureMessage(err error, fallback string) string {
	var reqErr *apperrors.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	if errors.Is(err, apperrors.ErrMissingIdentity) {
		return fallback
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
