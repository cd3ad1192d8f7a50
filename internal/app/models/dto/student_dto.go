package dto

import "github.com/yigit/studentdesk/internal/app/models"

// StudentListResponse is the student list view
type StudentListResponse struct {
	Students []models.Student `json:"students"`
	Count    int              `json:"count"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
}

// CourseListResponse is the course browse view. Error is set when the
// course list could not be loaded; the client offers a retry.
type CourseListResponse struct {
	Courses []models.Course `json:"courses"`
	Query   string          `json:"query,omitempty"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
}

// DeleteStudentResponse acknowledges a removal
type DeleteStudentResponse struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}

// NotificationListResponse lists the visible notifications
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
}
