package notifications

import (
	"errors"
	"time"
)

// ErrNotFound indicates the notification does not exist or belongs to
// another user.
var ErrNotFound = errors.New("notifications: not found")

// Type classifies a notification for client-side rendering.
type Type string

const (
	TypeClassReminder Type = "class_reminder"
	TypeExamReminder  Type = "exam_reminder"
	TypeTaskAssigned  Type = "task_assigned"
	TypeReportDue     Type = "report_due"
	TypeStudentIssue  Type = "student_issue"
	TypeGeneral       Type = "general"
)

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool {
	switch t {
	case TypeClassReminder, TypeExamReminder, TypeTaskAssigned, TypeReportDue, TypeStudentIssue, TypeGeneral:
		return true
	}
	return false
}

// Notification is an in-app message addressed to a single user.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      Type
	IsRead    bool
	Data      map[string]any
	CreatedAt time.Time
}
