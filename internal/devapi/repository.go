package devapi

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// studentRecord is the stored shape: the course is kept as a reference and
// populated on read.
type studentRecord struct {
	ID       string
	Name     string
	Email    string
	Image    string
	CourseID string
}

// StudentFields are the writable attributes of a student
type StudentFields struct {
	Name     string
	Email    string
	CourseID string
	Image    string
}

// Repository keeps courses and students in memory, in insertion order.
type Repository struct {
	mu       sync.RWMutex
	courses  []models.Course
	students []studentRecord
	newID    func() string
}

// NewRepository creates an empty repository
func NewRepository() *Repository {
	return &Repository{
		newID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:24] },
	}
}

// CreateCourse stores a course and returns it with its new id
func (r *Repository) CreateCourse(in models.CourseInput) (models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.courses {
		if strings.EqualFold(c.Name, in.Name) {
			return models.Course{}, apperrors.NewConflictError("course already exists")
		}
	}

	course := models.Course{ID: r.newID(), Name: in.Name, Description: in.Description}
	r.courses = append(r.courses, course)
	return course, nil
}

// ListCourses returns every course
func (r *Repository) ListCourses() []models.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Course, len(r.courses))
	copy(out, r.courses)
	return out
}

// CourseByName finds a course by case-insensitive name
func (r *Repository) CourseByName(name string) (models.Course, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.courses {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return models.Course{}, false
}

// ListStudents returns every student with its course populated
func (r *Repository) ListStudents() []models.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Student, 0, len(r.students))
	for _, rec := range r.students {
		out = append(out, r.populateLocked(rec))
	}
	return out
}

// CreateStudent stores a new student
func (r *Repository) CreateStudent(f StudentFields) (models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLocked("", f); err != nil {
		return models.Student{}, err
	}

	rec := studentRecord{
		ID:       r.newID(),
		Name:     f.Name,
		Email:    f.Email,
		Image:    f.Image,
		CourseID: f.CourseID,
	}
	r.students = append(r.students, rec)
	return r.populateLocked(rec), nil
}

// UpdateStudent replaces name, email and course; the image is replaced only
// when a new one is given. It returns the previous image reference.
func (r *Repository) UpdateStudent(id string, f StudentFields) (models.Student, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.studentIndexLocked(id)
	if i < 0 {
		return models.Student{}, "", apperrors.ErrStudentNotFound
	}
	if err := r.checkLocked(id, f); err != nil {
		return models.Student{}, "", err
	}

	rec := &r.students[i]
	previousImage := rec.Image
	rec.Name = f.Name
	rec.Email = f.Email
	rec.CourseID = f.CourseID
	if f.Image != "" {
		rec.Image = f.Image
	} else {
		previousImage = ""
	}
	return r.populateLocked(*rec), previousImage, nil
}

// DeleteStudent removes a student and returns its image reference
func (r *Repository) DeleteStudent(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.studentIndexLocked(id)
	if i < 0 {
		return "", apperrors.ErrStudentNotFound
	}
	image := r.students[i].Image
	r.students = append(r.students[:i], r.students[i+1:]...)
	return image, nil
}

func (r *Repository) checkLocked(selfID string, f StudentFields) error {
	if f.CourseID != "" && r.courseIndexLocked(f.CourseID) < 0 {
		return apperrors.ErrCourseNotFound
	}
	for _, rec := range r.students {
		if rec.ID != selfID && strings.EqualFold(rec.Email, f.Email) {
			return apperrors.ErrEmailTaken
		}
	}
	return nil
}

// populateLocked resolves the course reference; a dangling one becomes nil
func (r *Repository) populateLocked(rec studentRecord) models.Student {
	s := models.Student{
		ID:    rec.ID,
		Name:  rec.Name,
		Email: rec.Email,
		Image: rec.Image,
	}
	if i := r.courseIndexLocked(rec.CourseID); i >= 0 {
		c := r.courses[i]
		s.Course = &c
	}
	return s
}

func (r *Repository) studentIndexLocked(id string) int {
	for i, rec := range r.students {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) courseIndexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range r.courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}
