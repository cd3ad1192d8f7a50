// Package store holds the session's authoritative student and course lists and
// routes every student mutation through the backend before touching them.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// ErrSuperseded is returned by a reload whose result was overtaken by a newer reload
var ErrSuperseded = errors.New("superseded by a newer load")

// Backend is the subset of the API client the store depends on
type Backend interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	CreateStudent(ctx context.Context, in models.StudentInput) (*models.Student, error)
	UpdateStudent(ctx context.Context, id string, in models.StudentInput) (*models.Student, error)
	DeleteStudent(ctx context.Context, id string) (*models.DeleteConfirmation, error)
}

// LoadStatus describes the state of an initial or reloaded list fetch
type LoadStatus struct {
	Loading bool
	Loaded  bool
	Err     error
}

// Store is the single source of truth for one session.
//
// Backend calls run without holding the lock so several operations can be in
// flight at once; applying a result to the lists is serialised. Results that
// arrive after Close are dropped.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu       sync.RWMutex
	students []models.Student
	courses  []models.Course

	coursesStatus  LoadStatus
	studentsStatus LoadStatus
	coursesSeq     uint64
	studentsSeq    uint64

	gen    uint64
	closed bool

	// applyMu orders each state write with the change event it emits
	applyMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   map[chan Change]struct{}
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store's logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty store bound to backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		logger:    zerolog.Nop(),
		students:  []models.Student{},
		courses:   []models.Course{},
		listeners: make(map[chan Change]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads courses and students concurrently and returns once both settle.
// Failures are recorded in CoursesStatus and StudentsStatus; the returned
// error joins them for callers that want to report it.
func (s *Store) Init(ctx context.Context) error {
	var coursesErr, studentsErr error

	var g errgroup.Group
	g.Go(func() error {
		coursesErr = s.ReloadCourses(ctx)
		return nil
	})
	g.Go(func() error {
		studentsErr = s.ReloadStudents(ctx)
		return nil
	})
	_ = g.Wait()

	return errors.Join(coursesErr, studentsErr)
}

// ReloadCourses fetches the course list and replaces the local copy.
// On failure the previous list is kept and the error is recorded.
func (s *Store) ReloadCourses(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.ErrSessionClosed
	}
	s.coursesSeq++
	seq, gen := s.coursesSeq, s.gen
	s.coursesStatus.Loading = true
	s.mu.Unlock()

	courses, err := s.backend.ListCourses(ctx)

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if !s.relevantLocked(gen) {
		s.mu.Unlock()
		return apperrors.ErrSessionClosed
	}
	if seq != s.coursesSeq {
		s.mu.Unlock()
		s.logger.Debug().Msg("Discarding superseded course list result")
		return ErrSuperseded
	}
	s.coursesStatus.Loading = false
	if err != nil {
		s.coursesStatus.Err = err
		s.mu.Unlock()
		s.logger.Error().Err(err).Msg("Failed to load courses")
		s.emit(Change{Collection: CollectionCourses, Action: ActionFailed})
		return err
	}
	s.courses = cloneCourses(courses)
	s.coursesStatus.Err = nil
	s.coursesStatus.Loaded = true
	count := len(s.courses)
	s.mu.Unlock()

	s.logger.Info().Int("count", count).Msg("Courses loaded")
	s.emit(Change{Collection: CollectionCourses, Action: ActionLoaded})
	return nil
}

// ReloadStudents fetches the student list and replaces the local copy.
func (s *Store) ReloadStudents(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.ErrSessionClosed
	}
	s.studentsSeq++
	seq, gen := s.studentsSeq, s.gen
	s.studentsStatus.Loading = true
	s.mu.Unlock()

	students, err := s.backend.ListStudents(ctx)

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if !s.relevantLocked(gen) {
		s.mu.Unlock()
		return apperrors.ErrSessionClosed
	}
	if seq != s.studentsSeq {
		s.mu.Unlock()
		s.logger.Debug().Msg("Discarding superseded student list result")
		return ErrSuperseded
	}
	s.studentsStatus.Loading = false
	if err != nil {
		s.studentsStatus.Err = err
		s.mu.Unlock()
		s.logger.Error().Err(err).Msg("Failed to load students")
		s.emit(Change{Collection: CollectionStudents, Action: ActionFailed})
		return err
	}
	s.students = dedupeStudents(students)
	s.studentsStatus.Err = nil
	s.studentsStatus.Loaded = true
	count := len(s.students)
	s.mu.Unlock()

	s.logger.Info().Int("count", count).Msg("Students loaded")
	s.emit(Change{Collection: CollectionStudents, Action: ActionLoaded})
	return nil
}

// AddStudent creates a student on the backend and appends the confirmed
// record. Nothing changes locally when the backend call fails.
func (s *Store) AddStudent(ctx context.Context, in models.StudentInput) (models.Student, error) {
	gen, err := s.begin()
	if err != nil {
		return models.Student{}, err
	}

	created, err := s.backend.CreateStudent(ctx, in)
	if err != nil {
		return models.Student{}, err
	}
	if created == nil || created.ID == "" {
		s.logger.Error().Msg("Backend confirmed a student without an id")
		return models.Student{}, fmt.Errorf("create student: %w", apperrors.ErrMissingIdentity)
	}
	student := cloneStudent(*created)

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if !s.relevantLocked(gen) {
		s.mu.Unlock()
		s.logger.Warn().Str("studentID", student.ID).Msg("Session closed, dropping created student")
		return models.Student{}, apperrors.ErrSessionClosed
	}
	if i := s.indexLocked(student.ID); i >= 0 {
		// identities stay unique even if the backend echoes a known id
		s.students[i] = student
		s.mu.Unlock()
		s.logger.Warn().Str("studentID", student.ID).Msg("Created student already present, replaced in place")
	} else {
		s.students = append(s.students, student)
		s.mu.Unlock()
	}

	s.emit(Change{Collection: CollectionStudents, Action: ActionCreated, ID: student.ID})
	return cloneStudent(student), nil
}

// EditStudent updates the student addressed by id and replaces the local
// entry with the same identity in place. If that entry is gone by the time
// the result arrives the list is left untouched.
func (s *Store) EditStudent(ctx context.Context, id string, in models.StudentInput) (models.Student, error) {
	gen, err := s.begin()
	if err != nil {
		return models.Student{}, err
	}

	updated, err := s.backend.UpdateStudent(ctx, id, in)
	if err != nil {
		return models.Student{}, err
	}
	if updated == nil || updated.ID == "" {
		s.logger.Error().Str("studentID", id).Msg("Backend confirmed a student without an id")
		return models.Student{}, fmt.Errorf("update student %s: %w", id, apperrors.ErrMissingIdentity)
	}
	student := cloneStudent(*updated)

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if !s.relevantLocked(gen) {
		s.mu.Unlock()
		s.logger.Warn().Str("studentID", student.ID).Msg("Session closed, dropping updated student")
		return models.Student{}, apperrors.ErrSessionClosed
	}
	i := s.indexLocked(student.ID)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Warn().
			Str("studentID", student.ID).
			Str("requestedID", id).
			Msg("Updated student not in local list, leaving list unchanged")
		return cloneStudent(student), nil
	}
	s.students[i] = student
	s.mu.Unlock()

	s.emit(Change{Collection: CollectionStudents, Action: ActionUpdated, ID: student.ID})
	return cloneStudent(student), nil
}

// RemoveStudent deletes the student on the backend, then drops it locally.
func (s *Store) RemoveStudent(ctx context.Context, id string) (bool, error) {
	gen, err := s.begin()
	if err != nil {
		return false, err
	}

	if _, err := s.backend.DeleteStudent(ctx, id); err != nil {
		return false, err
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if !s.relevantLocked(gen) {
		s.mu.Unlock()
		s.logger.Warn().Str("studentID", id).Msg("Session closed, dropping delete result")
		return false, apperrors.ErrSessionClosed
	}
	s.students = slices.DeleteFunc(s.students, func(st models.Student) bool {
		return st.ID == id
	})
	s.mu.Unlock()

	s.emit(Change{Collection: CollectionStudents, Action: ActionDeleted, ID: id})
	return true, nil
}

// Students returns a copy of the student list in display order
func (s *Store) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Student, len(s.students))
	for i, st := range s.students {
		out[i] = cloneStudent(st)
	}
	return out
}

// Student looks up one student by id
func (s *Store) Student(id string) (models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return cloneStudent(s.students[i]), nil
	}
	return models.Student{}, apperrors.ErrStudentNotFound
}

// Courses returns a copy of the course list
func (s *Store) Courses() []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneCourses(s.courses)
}

// SearchCourses returns the courses whose name contains query, ignoring case.
// An empty query matches every course.
func (s *Store) SearchCourses(query string) []models.Course {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// CoursesStatus reports the course list's loading state
func (s *Store) CoursesStatus() LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coursesStatus
}

// StudentsStatus reports the student list's loading state
func (s *Store) StudentsStatus() LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.studentsStatus
}

// Close ends the session. Results of operations still in flight are discarded
// and subscribers are released.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	s.mu.Unlock()

	s.listenersMu.Lock()
	for ch := range s.listeners {
		delete(s.listeners, ch)
		close(ch)
	}
	s.listenersMu.Unlock()

	s.logger.Info().Msg("Store closed")
}

// begin captures the session generation for an operation about to go remote
func (s *Store) begin() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, apperrors.ErrSessionClosed
	}
	return s.gen, nil
}

func (s *Store) relevantLocked(gen uint64) bool {
	return !s.closed && gen == s.gen
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.students, func(st models.Student) bool {
		return st.ID == id
	})
}

func cloneStudent(st models.Student) models.Student {
	if st.Course != nil {
		c := *st.Course
		st.Course = &c
	}
	return st
}

func cloneCourses(in []models.Course) []models.Course {
	out := make([]models.Course, len(in))
	copy(out, in)
	return out
}

// dedupeStudents copies the list keeping the first occurrence of each id
func dedupeStudents(in []models.Student) []models.Student {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Student, 0, len(in))
	for _, st := range in {
		if _, dup := seen[st.ID]; dup {
			continue
		}
		seen[st.ID] = struct{}{}
		out = append(out, cloneStudent(st))
	}
	return out
}
