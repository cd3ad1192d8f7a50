// Package api is the HTTP client for the students/courses REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// Failure messages reported for each backend call
const (
	MsgListCoursesFailed   = "Failed to fetch courses"
	MsgCreateCourseFailed  = "Failed to add course"
	MsgListStudentsFailed  = "Failed to fetch students"
	MsgCreateStudentFailed = "Failed to save student"
	MsgUpdateStudentFailed = "Failed to update student"
	MsgDeleteStudentFailed = "Failed to delete student"
)

// maxErrorBody caps how much of a failed response body is kept as detail
const maxErrorBody = 4 << 10

// Client issues requests against the backend. It keeps no state between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the backend rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCourses fetches every course
func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.do(ctx, http.MethodGet, "/courses", nil, "", MsgListCoursesFailed, &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// CreateCourse creates a course from a JSON body
func (c *Client) CreateCourse(ctx context.Context, in models.CourseInput) (*models.Course, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode course: %w", err)
	}

	var course models.Course
	if err := c.do(ctx, http.MethodPost, "/courses", bytes.NewReader(body), "application/json", MsgCreateCourseFailed, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListStudents fetches every student with its course populated
func (c *Client) ListStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := c.do(ctx, http.MethodGet, "/students", nil, "", MsgListStudentsFailed, &students); err != nil {
		return nil, err
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// CreateStudent submits a new student as a multipart form
func (c *Client) CreateStudent(ctx context.Context, in models.StudentInput) (*models.Student, error) {
	body, contentType, err := encodeStudentForm(in)
	if err != nil {
		return nil, err
	}

	var student models.Student
	if err := c.do(ctx, http.MethodPost, "/students", body, contentType, MsgCreateStudentFailed, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateStudent replaces the student addressed by id. in.ID is not used for addressing.
func (c *Client) UpdateStudent(ctx context.Context, id string, in models.StudentInput) (*models.Student, error) {
	body, contentType, err := encodeStudentForm(in)
	if err != nil {
		return nil, err
	}

	var student models.Student
	if err := c.do(ctx, http.MethodPut, studentPath(id), body, contentType, MsgUpdateStudentFailed, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// DeleteStudent removes the student addressed by id
func (c *Client) DeleteStudent(ctx context.Context, id string) (*models.DeleteConfirmation, error) {
	var confirmation models.DeleteConfirmation
	if err := c.do(ctx, http.MethodDelete, studentPath(id), nil, "", MsgDeleteStudentFailed, optional{&confirmation}); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

// optional marks a response body the caller can do without; an empty reply
// decodes to the zero value.
type optional struct {
	out interface{}
}

func studentPath(id string) string {
	return "/students/" + url.PathEscape(id)
}

// do performs one round trip. Any non-2xx status, transport failure or
// undecodable reply comes back as *apperrors.RequestError carrying failMsg.
// An empty 2xx body is accepted only when out is wrapped in optional.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType, failMsg string, out interface{}) error {
	allowEmpty := false
	if o, ok := out.(optional); ok {
		out, allowEmpty = o.out, true
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.NewRequestError(method, path, 0, failMsg).WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("Backend request failed")
		return apperrors.NewRequestError(method, path, 0, failMsg).WithCause(err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("Backend responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.NewRequestError(method, path, resp.StatusCode, failMsg).WithDetail(string(detail))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return apperrors.NewRequestError(method, path, resp.StatusCode, failMsg).
				WithCause(errors.New("empty response body"))
		}
		return apperrors.NewRequestError(method, path, resp.StatusCode, failMsg).
			WithCause(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// encodeStudentForm builds the multipart body: name, email, course, optional
// id for bookkeeping and an optional image part.
func encodeStudentForm(in models.StudentInput) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ key, value string }{
		{"id", in.ID},
		{"name", in.Name},
		{"email", in.Email},
		{"course", in.CourseID},
	}
	for _, f := range fields {
		if f.key == "id" && f.value == "" {
			continue
		}
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("encode field %s: %w", f.key, err)
		}
	}

	if in.Image != nil && in.Image.Content != nil {
		part, err := w.CreatePart(imagePartHeader(in.Image))
		if err != nil {
			return nil, "", fmt.Errorf("encode image: %w", err)
		}
		if _, err := io.Copy(part, in.Image.Content); err != nil {
			return nil, "", fmt.Errorf("encode image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func imagePartHeader(img *models.ImageUpload) textproto.MIMEHeader {
	filename := filepath.Base(img.Filename)
	if filename == "" || filename == "." || filename == "/" {
		filename = "image"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	return h
}
