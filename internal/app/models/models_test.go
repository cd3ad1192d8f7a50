package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudent_UnmarshalJSON_CourseShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		courseID string
		course   string
		nilCrs   bool
	}{
		{
			name:     "populated course",
			body:     `{"_id":"s1","name":"Ann","email":"ann@x.com","course":{"_id":"c1","name":"Math"}}`,
			courseID: "c1",
			course:   "Math",
		},
		{
			name:     "bare course id",
			body:     `{"_id":"s1","name":"Ann","email":"ann@x.com","course":"c1"}`,
			courseID: "c1",
		},
		{
			name:   "null course",
			body:   `{"_id":"s1","name":"Ann","email":"ann@x.com","course":null}`,
			nilCrs: true,
		},
		{
			name:   "missing course",
			body:   `{"id":"s1","name":"Ann","email":"ann@x.com"}`,
			nilCrs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Student
			require.NoError(t, json.Unmarshal([]byte(tt.body), &s))
			assert.Equal(t, "s1", s.ID)
			assert.Equal(t, "Ann", s.Name)
			if tt.nilCrs {
				assert.Nil(t, s.Course)
				assert.Equal(t, "", s.CourseID())
				return
			}
			require.NotNil(t, s.Course)
			assert.Equal(t, tt.courseID, s.CourseID())
			assert.Equal(t, tt.course, s.Course.Name)
		})
	}
}

func TestCourse_UnmarshalJSON_AcceptsPlainID(t *testing.T) {
	var courses []Course
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"c1","name":"Math"},{"_id":"c2","name":"Art","description":"Paint"}]`), &courses))

	require.Len(t, courses, 2)
	assert.Equal(t, "c1", courses[0].ID)
	assert.Equal(t, "c2", courses[1].ID)
	assert.Equal(t, "Paint", courses[1].Description)
}

func TestNotificationKind_Valid(t *testing.T) {
	assert.True(t, NotificationSuccess.Valid())
	assert.False(t, NotificationKind("warning").Valid())
}
