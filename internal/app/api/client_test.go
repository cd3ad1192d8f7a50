package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/devapi"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/filestorage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type backendFixture struct {
	repo    *devapi.Repository
	storage *filestorage.LocalStorage
	client  *Client
}

func newBackend(t *testing.T) *backendFixture {
	t.Helper()

	storage, err := filestorage.NewLocalStorage(t.TempDir(), devapi.UploadsPath)
	require.NoError(t, err)

	repo := devapi.NewRepository()
	handler := devapi.NewHandler(repo, storage, zerolog.Nop())
	srv := httptest.NewServer(devapi.NewRouter(handler, "", zerolog.Nop()))
	t.Cleanup(srv.Close)

	return &backendFixture{
		repo:    repo,
		storage: storage,
		client:  NewClient(srv.URL+"/", WithHTTPClient(srv.Client())),
	}
}

func (f *backendFixture) course(t *testing.T, name string) models.Course {
	t.Helper()
	c, err := f.repo.CreateCourse(models.CourseInput{Name: name})
	require.NoError(t, err)
	return c
}

func TestClient_ListCourses(t *testing.T) {
	f := newBackend(t)
	ctx := context.Background()

	courses, err := f.client.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NotNil(t, courses)

	f.course(t, "Math")
	f.course(t, "Art")

	courses, err = f.client.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Math", courses[0].Name)
	assert.NotEmpty(t, courses[0].ID)
}

func TestClient_CreateCourse(t *testing.T) {
	f := newBackend(t)
	ctx := context.Background()

	course, err := f.client.CreateCourse(ctx, models.CourseInput{Name: "Physics", Description: "Optics"})
	require.NoError(t, err)
	assert.Equal(t, "Physics", course.Name)
	assert.Equal(t, "Optics", course.Description)

	_, err = f.client.CreateCourse(ctx, models.CourseInput{Name: "physics"})
	reqErr, ok := apperrors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, reqErr.Status)
	assert.Equal(t, MsgCreateCourseFailed, reqErr.Error())
}

func TestClient_StudentLifecycle(t *testing.T) {
	f := newBackend(t)
	ctx := context.Background()
	math := f.course(t, "Math")
	art := f.course(t, "Art")

	created, err := f.client.CreateStudent(ctx, models.StudentInput{
		Name:     "Ann",
		Email:    "ann@x.com",
		CourseID: math.ID,
		Image: &models.ImageUpload{
			Filename:    "ann.png",
			ContentType: "image/png",
			Content:     strings.NewReader("png-bytes"),
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Ann", created.Name)
	assert.Equal(t, math.ID, created.CourseID())
	require.NotEmpty(t, created.Image)
	assert.True(t, strings.HasPrefix(created.Image, devapi.UploadsPath+"/students/"))

	saved, err := os.ReadFile(f.storage.GetFullPath(created.Image))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(saved))

	students, err := f.client.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.NotNil(t, students[0].Course)
	assert.Equal(t, "Math", students[0].Course.Name)

	updated, err := f.client.UpdateStudent(ctx, created.ID, models.StudentInput{
		ID:       created.ID,
		Name:     "Ann B",
		Email:    "ann@x.com",
		CourseID: art.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ann B", updated.Name)
	assert.Equal(t, art.ID, updated.CourseID())
	assert.Equal(t, created.Image, updated.Image, "image kept when none is sent")

	confirmation, err := f.client.DeleteStudent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Student deleted successfully", confirmation.Message)

	_, err = os.Stat(f.storage.GetFullPath(created.Image))
	assert.True(t, os.IsNotExist(err), "image removed with the student")

	students, err = f.client.ListStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestClient_NonSuccessIsRequestError(t *testing.T) {
	f := newBackend(t)
	ctx := context.Background()
	math := f.course(t, "Math")

	tests := []struct {
		name    string
		call    func() error
		status  int
		message string
		detail  string
	}{
		{
			name: "update unknown student",
			call: func() error {
				_, err := f.client.UpdateStudent(ctx, "missing", models.StudentInput{Name: "A", Email: "a@x.com", CourseID: math.ID})
				return err
			},
			status:  http.StatusNotFound,
			message: MsgUpdateStudentFailed,
			detail:  "Student not found",
		},
		{
			name: "delete unknown student",
			call: func() error {
				_, err := f.client.DeleteStudent(ctx, "missing")
				return err
			},
			status:  http.StatusNotFound,
			message: MsgDeleteStudentFailed,
		},
		{
			name: "create with unknown course",
			call: func() error {
				_, err := f.client.CreateStudent(ctx, models.StudentInput{Name: "A", Email: "a@x.com", CourseID: "nope"})
				return err
			},
			status:  http.StatusBadRequest,
			message: MsgCreateStudentFailed,
			detail:  "Course not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrRequestFailed))

			reqErr, ok := apperrors.AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.message, reqErr.Message)
			if tt.detail != "" {
				assert.Contains(t, reqErr.Detail, tt.detail)
			}
		})
	}
}

func TestClient_UnusableSuccessReply(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		call    func(*Client) error
		message string
	}{
		{
			name:   "create with empty body",
			status: http.StatusCreated,
			call: func(c *Client) error {
				_, err := c.CreateStudent(context.Background(), models.StudentInput{Name: "Ann", Email: "ann@x.com", CourseID: "c1"})
				return err
			},
			message: MsgCreateStudentFailed,
		},
		{
			name:   "update with empty body",
			status: http.StatusOK,
			call: func(c *Client) error {
				_, err := c.UpdateStudent(context.Background(), "s1", models.StudentInput{Name: "Ann", Email: "ann@x.com", CourseID: "c1"})
				return err
			},
			message: MsgUpdateStudentFailed,
		},
		{
			name:   "student list with empty body",
			status: http.StatusOK,
			call: func(c *Client) error {
				_, err := c.ListStudents(context.Background())
				return err
			},
			message: MsgListStudentsFailed,
		},
		{
			name:   "course list with malformed body",
			status: http.StatusOK,
			body:   `[{"_id":`,
			call: func(c *Client) error {
				_, err := c.ListCourses(context.Background())
				return err
			},
			message: MsgListCoursesFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := tt.call(NewClient(srv.URL))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrRequestFailed))

			reqErr, ok := apperrors.AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.message, reqErr.Message)
			assert.NotNil(t, reqErr.Err)
		})
	}
}

func TestClient_DeleteAcceptsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	confirmation, err := NewClient(srv.URL).DeleteStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, confirmation.Message)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).ListStudents(context.Background())
	require.Error(t, err)

	reqErr, ok := apperrors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, 0, reqErr.Status)
	assert.Equal(t, MsgListStudentsFailed, reqErr.Message)
	assert.True(t, errors.Is(err, apperrors.ErrRequestFailed))
	assert.NotNil(t, reqErr.Err)
}

func TestClient_DecodesBareCourseReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"_id":"s1","name":"Ann","email":"ann@x.com","course":"c9"},{"_id":"s2","name":"Bo","email":"bo@x.com","course":null}]`)
	}))
	defer srv.Close()

	students, err := NewClient(srv.URL).ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "c9", students[0].CourseID())
	assert.Nil(t, students[1].Course)
}

func TestClient_CancelledContext(t *testing.T) {
	f := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.client.ListCourses(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEncodeStudentForm(t *testing.T) {
	readForm := func(t *testing.T, in models.StudentInput) *multipart.Form {
		t.Helper()
		body, contentType, err := encodeStudentForm(in)
		require.NoError(t, err)

		_, params, err := mime.ParseMediaType(contentType)
		require.NoError(t, err)
		form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
		require.NoError(t, err)
		return form
	}

	t.Run("add form omits id and image", func(t *testing.T) {
		form := readForm(t, models.StudentInput{Name: "Ann", Email: "ann@x.com", CourseID: "c1"})
		assert.NotContains(t, form.Value, "id")
		assert.Equal(t, []string{"Ann"}, form.Value["name"])
		assert.Equal(t, []string{"c1"}, form.Value["course"])
		assert.Empty(t, form.File["image"])
	})

	t.Run("edit form carries id and image", func(t *testing.T) {
		form := readForm(t, models.StudentInput{
			ID: "s1", Name: "Ann", Email: "ann@x.com", CourseID: "c1",
			Image: &models.ImageUpload{Filename: `dir/my "pic".jpg`, Content: strings.NewReader("jpg")},
		})
		assert.Equal(t, []string{"s1"}, form.Value["id"])
		require.Len(t, form.File["image"], 1)
		assert.Equal(t, `my "pic".jpg`, form.File["image"][0].Filename)
		assert.Equal(t, "application/octet-stream", form.File["image"][0].Header.Get("Content-Type"))
	})
}
