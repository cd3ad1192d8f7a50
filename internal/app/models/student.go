package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Student is a student record as returned by the backend.
// Course is nil when the student has no course or the course no longer exists.
type Student struct {
	ID     string  `json:"_id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Image  string  `json:"image,omitempty"`
	Course *Course `json:"course"`
}

// CourseID returns the id of the referenced course, or "" when there is none
func (s Student) CourseID() string {
	if s.Course == nil {
		return ""
	}
	return s.Course.ID
}

// UnmarshalJSON accepts "id" as an alias for "_id", and a course given either
// as a populated object, a bare id string, or null.
func (s *Student) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string          `json:"_id"`
		AltID  string          `json:"id"`
		Name   string          `json:"name"`
		Email  string          `json:"email"`
		Image  string          `json:"image"`
		Course json.RawMessage `json:"course"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Student{
		ID:    raw.ID,
		Name:  raw.Name,
		Email: raw.Email,
		Image: raw.Image,
	}
	if s.ID == "" {
		s.ID = raw.AltID
	}

	course := bytes.TrimSpace(raw.Course)
	switch {
	case len(course) == 0 || bytes.Equal(course, []byte("null")):
		s.Course = nil
	case course[0] == '"':
		var id string
		if err := json.Unmarshal(course, &id); err != nil {
			return fmt.Errorf("student course: %w", err)
		}
		if id != "" {
			s.Course = &Course{ID: id}
		}
	default:
		var c Course
		if err := json.Unmarshal(course, &c); err != nil {
			return fmt.Errorf("student course: %w", err)
		}
		s.Course = &c
	}
	return nil
}

// ImageUpload is an optional binary image attached to a student payload.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// StudentInput is the multipart payload for creating or updating a student.
// ID is caller bookkeeping only; updates are addressed by path.
type StudentInput struct {
	ID       string       `form:"id"`
	Name     string       `form:"name" validate:"required"`
	Email    string       `form:"email" validate:"required,studentemail"`
	CourseID string       `form:"course" validate:"required"`
	Image    *ImageUpload `form:"-" validate:"-"`
}

// DeleteConfirmation is the backend's acknowledgement of a delete.
type DeleteConfirmation struct {
	Message string `json:"message"`
}
