package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/store"
	"github.com/yigit/studentdesk/internal/pkg/validation"
)

// Notification texts
const (
	MsgCourseAdded       = "✅ Course added successfully!"
	MsgCourseAddFailed   = "❌ Failed to add course"
	MsgCoursesLoadFailed = "⚠️ Failed to load courses"
)

// CourseService defines the course view operations
type CourseService interface {
	Browse(query string) CourseList
	Retry(ctx context.Context) (CourseList, error)
	Create(ctx context.Context, in models.CourseInput) (*models.Course, error)
}

// CourseList is a snapshot of the course browse view
type CourseList struct {
	Courses []models.Course
	Query   string
	Status  store.LoadStatus
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	store    CourseStore
	creator  CourseCreator
	notifier Notifier
	logger   zerolog.Logger
}

// NewCourseService creates a new course service instance. creator may be nil,
// in which case Create is unavailable.
func NewCourseService(st CourseStore, creator CourseCreator, notifier Notifier, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		store:    st,
		creator:  creator,
		notifier: notifier,
		logger:   logger,
	}
}

// Browse returns the courses matching query, case-insensitively by name
func (s *courseServiceImpl) Browse(query string) CourseList {
	query = strings.TrimSpace(query)
	return CourseList{
		Courses: s.store.SearchCourses(query),
		Query:   query,
		Status:  s.store.CoursesStatus(),
	}
}

// Retry reloads the course list after a failed load
func (s *courseServiceImpl) Retry(ctx context.Context) (CourseList, error) {
	err := s.store.ReloadCourses(ctx)
	if err != nil && !errors.Is(err, store.ErrSuperseded) {
		s.logger.Warn().Err(err).Msg("Course reload failed")
		return s.Browse(""), err
	}
	return s.Browse(""), nil
}

// Create adds a course on the backend and refreshes the local course list
func (s *courseServiceImpl) Create(ctx context.Context, in models.CourseInput) (*models.Course, error) {
	if s.creator == nil {
		return nil, errors.New("course creation is not configured")
	}
	if err := validation.ValidateCourseInput(&in); err != nil {
		return nil, err
	}

	course, err := s.creator.CreateCourse(ctx, in)
	if err != nil {
		s.notifier.Error(failureMessage(err, MsgCourseAddFailed))
		return nil, err
	}
	s.notifier.Success(MsgCourseAdded)

	if err := s.store.ReloadCourses(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
		s.logger.Warn().Err(err).Msg("Course list refresh after create failed")
		s.notifier.Error(MsgCoursesLoadFailed)
	}
	return course, nil
}
