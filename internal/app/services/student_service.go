package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/store"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/validation"
)

// Notification texts
const (
	MsgStudentAdded        = "✅ Student added successfully!"
	MsgStudentUpdated      = "✅ Student updated successfully!"
	MsgStudentDeleted      = "🗑️ Student deleted successfully!"
	MsgStudentAddFailed    = "❌ Failed to add student"
	MsgStudentUpdateFailed = "❌ Failed to update student"
	MsgStudentDeleteFailed = "❌ Failed to delete student"
	MsgStudentsLoadFailed  = "❌ Failed to load students"
	MsgSwitchToEditView    = "ℹ️ Switch to Edit view to modify student"
)

// StudentService defines the student view operations
type StudentService interface {
	List() StudentList
	Get(id string) (models.Student, error)
	Select(id string) (models.Student, error)
	Reload(ctx context.Context) error
	Add(ctx context.Context, in models.StudentInput) (models.Student, error)
	Edit(ctx context.Context, id string, in models.StudentInput) (models.Student, error)
	Remove(ctx context.Context, id string) error
}

// StudentList is a snapshot of the student list view
type StudentList struct {
	Students []models.Student
	Status   store.LoadStatus
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	store    StudentStore
	notifier Notifier
	logger   zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(st StudentStore, notifier Notifier, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{
		store:    st,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *studentServiceImpl) List() StudentList {
	return StudentList{
		Students: s.store.Students(),
		Status:   s.store.StudentsStatus(),
	}
}

func (s *studentServiceImpl) Get(id string) (models.Student, error) {
	return s.store.Student(id)
}

// Select picks a student from the list for editing and points the user to
// the edit view
func (s *studentServiceImpl) Select(id string) (models.Student, error) {
	student, err := s.store.Student(id)
	if err != nil {
		return models.Student{}, err
	}
	s.notifier.Info(MsgSwitchToEditView)
	return student, nil
}

// Reload retries the student list fetch and reports a failure
func (s *studentServiceImpl) Reload(ctx context.Context) error {
	if err := s.store.ReloadStudents(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
		s.notifier.Error(MsgStudentsLoadFailed)
		return err
	}
	return nil
}

// Add validates the form, creates the student and reports the outcome.
// Validation failures are returned without contacting the backend or notifying.
func (s *studentServiceImpl) Add(ctx context.Context, in models.StudentInput) (models.Student, error) {
	in.ID = ""
	if err := validation.ValidateStudentInput(&in); err != nil {
		return models.Student{}, err
	}

	student, err := s.store.AddStudent(ctx, in)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to add student")
		s.notifier.Error(failureMessage(err, MsgStudentAddFailed))
		return models.Student{}, err
	}

	s.logger.Info().Str("studentID", student.ID).Msg("Student added")
	s.notifier.Success(MsgStudentAdded)
	return student, nil
}

// Edit validates the form, updates the student and reports the outcome
func (s *studentServiceImpl) Edit(ctx context.Context, id string, in models.StudentInput) (models.Student, error) {
	if id == "" {
		return models.Student{}, apperrors.NewBadRequestError("student id is required")
	}
	in.ID = id
	if err := validation.ValidateStudentInput(&in); err != nil {
		return models.Student{}, err
	}

	student, err := s.store.EditStudent(ctx, id, in)
	if err != nil {
		s.logger.Warn().Err(err).Str("studentID", id).Msg("Failed to update student")
		s.notifier.Error(failureMessage(err, MsgStudentUpdateFailed))
		return models.Student{}, err
	}

	s.logger.Info().Str("studentID", id).Msg("Student updated")
	s.notifier.Success(MsgStudentUpdated)
	return student, nil
}

// Remove deletes the student and reports the outcome
func (s *studentServiceImpl) Remove(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewBadRequestError("student id is required")
	}

	if _, err := s.store.RemoveStudent(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("studentID", id).Msg("Failed to delete student")
		s.notifier.Error(failureMessage(err, MsgStudentDeleteFailed))
		return err
	}

	s.logger.Info().Str("studentID", id).Msg("Student deleted")
	s.notifier.Success(MsgStudentDeleted)
	return nil
}
