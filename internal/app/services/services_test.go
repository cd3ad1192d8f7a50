package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/store"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// ── fakes ──

type toast struct {
	kind    models.NotificationKind
	message string
}

type fakeNotifier struct {
	toasts []toast
}

func (f *fakeNotifier) push(kind models.NotificationKind, msg string) models.Notification {
	f.toasts = append(f.toasts, toast{kind: kind, message: msg})
	return models.Notification{ID: int64(len(f.toasts)), Message: msg, Kind: kind}
}

func (f *fakeNotifier) Success(msg string) models.Notification {
	return f.push(models.NotificationSuccess, msg)
}
func (f *fakeNotifier) Error(msg string) models.Notification {
	return f.push(models.NotificationError, msg)
}
func (f *fakeNotifier) Info(msg string) models.Notification {
	return f.push(models.NotificationInfo, msg)
}

type fakeStore struct {
	students []models.Student
	courses  []models.Course
	err      error
	reloads  int
	calls    []string
}

func (f *fakeStore) Students() []models.Student { return f.students }
func (f *fakeStore) Student(id string) (models.Student, error) {
	for _, s := range f.students {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Student{}, apperrors.ErrStudentNotFound
}
func (f *fakeStore) StudentsStatus() store.LoadStatus { return store.LoadStatus{Loaded: true} }
func (f *fakeStore) ReloadStudents(context.Context) error {
	f.reloads++
	return f.err
}
func (f *fakeStore) AddStudent(_ context.Context, in models.StudentInput) (models.Student, error) {
	f.calls = append(f.calls, "add")
	if f.err != nil {
		return models.Student{}, f.err
	}
	s := models.Student{ID: "new", Name: in.Name, Email: in.Email}
	f.students = append(f.students, s)
	return s, nil
}
func (f *fakeStore) EditStudent(_ context.Context, id string, in models.StudentInput) (models.Student, error) {
	f.calls = append(f.calls, "edit:"+id+":"+in.ID)
	if f.err != nil {
		return models.Student{}, f.err
	}
	return models.Student{ID: id, Name: in.Name, Email: in.Email}, nil
}
func (f *fakeStore) RemoveStudent(_ context.Context, id string) (bool, error) {
	f.calls = append(f.calls, "remove:"+id)
	return f.err == nil, f.err
}
func (f *fakeStore) Courses() []models.Course { return f.courses }
func (f *fakeStore) SearchCourses(q string) []models.Course {
	f.calls = append(f.calls, "search:"+q)
	return f.courses
}
func (f *fakeStore) CoursesStatus() store.LoadStatus { return store.LoadStatus{Err: f.err} }
func (f *fakeStore) ReloadCourses(context.Context) error {
	f.reloads++
	return f.err
}

type fakeCreator struct {
	err error
	got []models.CourseInput
}

func (f *fakeCreator) CreateCourse(_ context.Context, in models.CourseInput) (*models.Course, error) {
	f.got = append(f.got, in)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Course{ID: "c1", Name: in.Name}, nil
}

func validInput() models.StudentInput {
	return models.StudentInput{Name: "Ann", Email: "ann@x.com", CourseID: "c1"}
}

// ── student service ──

func TestStudentService_AddSuccess(t *testing.T) {
	st := &fakeStore{}
	n := &fakeNotifier{}
	svc := NewStudentService(st, n, zerolog.Nop())

	in := validInput()
	in.ID = "ignored"
	s, err := svc.Add(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "new", s.ID)
	assert.Equal(t, []toast{{models.NotificationSuccess, MsgStudentAdded}}, n.toasts)
	assert.Len(t, svc.List().Students, 1)
}

func TestStudentService_ValidationSkipsBackendAndToast(t *testing.T) {
	st := &fakeStore{}
	n := &fakeNotifier{}
	svc := NewStudentService(st, n, zerolog.Nop())

	_, err := svc.Add(context.Background(), models.StudentInput{Name: " ", Email: "bad"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "course")

	_, err = svc.Edit(context.Background(), "s1", models.StudentInput{Name: "Ann"})
	require.ErrorAs(t, err, &verr)

	assert.Empty(t, st.calls)
	assert.Empty(t, n.toasts)
}

func TestStudentService_FailureToasts(t *testing.T) {
	tests := []struct {
		name string
		err  error
		run  func(StudentService) error
		want string
	}{
		{
			name: "add uses request message",
			err:  apperrors.NewRequestError(http.MethodPost, "/students", 500, "Failed to save student"),
			run: func(s StudentService) error {
				_, err := s.Add(context.Background(), validInput())
				return err
			},
			want: "Failed to save student",
		},
		{
			name: "edit uses request message",
			err:  apperrors.NewRequestError(http.MethodPut, "/students/s1", 500, "Failed to update student"),
			run: func(s StudentService) error {
				_, err := s.Edit(context.Background(), "s1", validInput())
				return err
			},
			want: "Failed to update student",
		},
		{
			name: "remove falls back when message is empty",
			err:  &apperrors.RequestError{Method: http.MethodDelete, Path: "/students/s1", Status: 500},
			run: func(s StudentService) error {
				return s.Remove(context.Background(), "s1")
			},
			want: "DELETE /students/s1: status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{}
			svc := NewStudentService(&fakeStore{err: tt.err}, n, zerolog.Nop())

			err := tt.run(svc)
			require.Error(t, err)
			require.Len(t, n.toasts, 1)
			assert.Equal(t, models.NotificationError, n.toasts[0].kind)
			assert.Equal(t, tt.want, n.toasts[0].message)
		})
	}
}

func TestFailureMessage_Fallback(t *testing.T) {
	assert.Equal(t, MsgStudentAddFailed, failureMessage(nil, MsgStudentAddFailed))
	assert.Equal(t, "boom", failureMessage(errors.New("boom"), MsgStudentAddFailed))
	assert.Equal(t, MsgStudentAddFailed, failureMessage(fmt.Errorf("create student: %w", apperrors.ErrMissingIdentity), MsgStudentAddFailed))
}

func TestStudentService_EditAndRemove(t *testing.T) {
	st := &fakeStore{}
	n := &fakeNotifier{}
	svc := NewStudentService(st, n, zerolog.Nop())

	s, err := svc.Edit(context.Background(), "s1", validInput())
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	require.NoError(t, svc.Remove(context.Background(), "s1"))

	assert.Equal(t, []string{"edit:s1:s1", "remove:s1"}, st.calls)
	assert.Equal(t, []toast{
		{models.NotificationSuccess, MsgStudentUpdated},
		{models.NotificationSuccess, MsgStudentDeleted},
	}, n.toasts)

	assert.ErrorIs(t, svc.Remove(context.Background(), ""), apperrors.ErrBadRequest)
}

func TestStudentService_Reload(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewStudentService(&fakeStore{err: store.ErrSuperseded}, n, zerolog.Nop())
	require.NoError(t, svc.Reload(context.Background()))
	assert.Empty(t, n.toasts)

	svc = NewStudentService(&fakeStore{err: errors.New("down")}, n, zerolog.Nop())
	require.Error(t, svc.Reload(context.Background()))
	assert.Equal(t, []toast{{models.NotificationError, MsgStudentsLoadFailed}}, n.toasts)
}

// ── course service ──

func TestCourseService_Browse(t *testing.T) {
	st := &fakeStore{courses: []models.Course{{ID: "c1", Name: "Math"}}}
	svc := NewCourseService(st, nil, &fakeNotifier{}, zerolog.Nop())

	list := svc.Browse("  mat ")
	assert.Equal(t, "mat", list.Query)
	assert.Len(t, list.Courses, 1)
	assert.Equal(t, []string{"search:mat"}, st.calls)
}

func TestCourseService_Retry(t *testing.T) {
	st := &fakeStore{err: errors.New("down")}
	svc := NewCourseService(st, nil, &fakeNotifier{}, zerolog.Nop())

	list, err := svc.Retry(context.Background())
	require.Error(t, err)
	assert.Error(t, list.Status.Err)
	assert.Equal(t, 1, st.reloads)

	st.err = nil
	list, err = svc.Retry(context.Background())
	require.NoError(t, err)
	assert.NoError(t, list.Status.Err)
}

func TestCourseService_Create(t *testing.T) {
	st := &fakeStore{}
	creator := &fakeCreator{}
	n := &fakeNotifier{}
	svc := NewCourseService(st, creator, n, zerolog.Nop())

	_, err := svc.Create(context.Background(), models.CourseInput{Name: " "})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, creator.got)

	course, err := svc.Create(context.Background(), models.CourseInput{Name: "Art"})
	require.NoError(t, err)
	assert.Equal(t, "Art", course.Name)
	assert.Equal(t, 1, st.reloads)
	assert.Equal(t, []toast{{models.NotificationSuccess, MsgCourseAdded}}, n.toasts)

	creator.err = apperrors.NewRequestError(http.MethodPost, "/courses", 409, "Failed to add course")
	_, err = svc.Create(context.Background(), models.CourseInput{Name: "Art"})
	require.Error(t, err)
	assert.Equal(t, toast{models.NotificationError, "Failed to add course"}, n.toasts[len(n.toasts)-1])

	_, err = NewCourseService(st, nil, n, zerolog.Nop()).Create(context.Background(), models.CourseInput{Name: "X"})
	assert.Error(t, err)
}

func TestStudentService_Select(t *testing.T) {
	st := &fakeStore{students: []models.Student{{ID: "s1", Name: "Ann"}}}
	n := &fakeNotifier{}
	svc := NewStudentService(st, n, zerolog.Nop())

	s, err := svc.Select("s1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", s.Name)
	assert.Equal(t, []toast{{models.NotificationInfo, MsgSwitchToEditView}}, n.toasts)

	_, err = svc.Select("nope")
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.Len(t, n.toasts, 1)
}
