package models

import "encoding/json"

// Course represents a course a student can be enrolled in.
type Course struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CourseInput is the body of a course creation request.
type CourseInput struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description" yaml:"description"`
}

// UnmarshalJSON accepts both the backend's "_id" and a plain "id" as identity.
func (c *Course) UnmarshalJSON(data []byte) error {
	type courseAlias Course
	var raw struct {
		courseAlias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Course(raw.courseAlias)
	if c.ID == "" {
		c.ID = raw.AltID
	}
	return nil
}
