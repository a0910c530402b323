package authz

import (
	"context"
	"errors"
	"fmt"
)

type seedPermission struct {
	name        string
	description string
	resource    string
	action      string
}

func seedCatalog() []seedPermission {
	return []seedPermission{
		// User management
		{"create_users", "Create new users", "users", "create"},
		{"read_users", "View users", "users", "read"},
		{"update_users", "Update users", "users", "update"},
		{"delete_users", "Delete users", "users", "delete"},

		// Student management
		{"create_students", "Create students", "students", "create"},
		{"read_students", "View students", "students", "read"},
		{"update_students", "Update students", "students", "update"},
		{"delete_students", "Delete students", "students", "delete"},

		// Teacher management
		{"create_teachers", "Create teachers", "teachers", "create"},
		{"read_teachers", "View teachers", "teachers", "read"},
		{"update_teachers", "Update teachers", "teachers", "update"},
		{"delete_teachers", "Delete teachers", "teachers", "delete"},

		// Batch management
		{"create_batches", "Create batches", "batches", "create"},
		{"read_batches", "View batches", "batches", "read"},
		{"update_batches", "Update batches", "batches", "update"},
		{"delete_batches", "Delete batches", "batches", "delete"},

		// Class management
		{"create_classes", "Create class assignments", "classes", "create"},
		{"read_classes", "View class assignments", "classes", "read"},
		{"update_classes", "Update class assignments", "classes", "update"},
		{"delete_classes", "Delete class assignments", "classes", "delete"},

		// Exam management
		{"create_exams", "Create exams", "exams", "create"},
		{"read_exams", "View exams", "exams", "read"},
		{"update_exams", "Update exams", "exams", "update"},
		{"delete_exams", "Delete exams", "exams", "delete"},
		{"grade_exams", "Grade exam results", "exam_results", "create"},

		// Attendance
		{"mark_attendance", "Mark attendance", "attendance", "create"},
		{"read_attendance", "View attendance", "attendance", "read"},
		{"update_attendance", "Update attendance", "attendance", "update"},

		// Behavior records
		{"create_behavior_records", "Create behavior records", "behavior", "create"},
		{"read_behavior_records", "View behavior records", "behavior", "read"},
		{"update_behavior_records", "Update behavior records", "behavior", "update"},

		// Report cards
		{"generate_reports", "Generate report cards", "reports", "create"},
		{"read_reports", "View report cards", "reports", "read"},
		{"update_reports", "Update report cards", "reports", "update"},

		// Tasks
		{"create_tasks", "Create tasks", "tasks", "create"},
		{"read_tasks", "View tasks", "tasks", "read"},
		{"update_tasks", "Update tasks", "tasks", "update"},
		{"delete_tasks", "Delete tasks", "tasks", "delete"},

		// Payments
		{"create_payments", "Record payments", "payments", "create"},
		{"read_payments", "View payments", "payments", "read"},
		{"update_payments", "Update payments", "payments", "update"},

		// Messaging
		{"send_messages", "Send messages", "messages", "create"},
		{"read_messages", "Read messages", "messages", "read"},
		{"create_groups", "Create message groups", "groups", "create"},
		{"manage_groups", "Manage message groups", "groups", "update"},

		// Feedback
		{"submit_feedback", "Submit feedback", "feedback", "create"},
		{"read_feedback", "View feedback", "feedback", "read"},
		{"respond_feedback", "Respond to feedback", "feedback", "update"},

		// Notifications
		{"send_notifications", "Send notifications", "notifications", "create"},
		{"read_notifications", "Read notifications", "notifications", "read"},

		// Analytics and export
		{"view_analytics", "View system analytics", "analytics", "read"},
		{"export_data", "Export system data", "export", "create"},

		// System administration
		{"manage_permissions", "Manage user permissions", "permissions", "update"},
		{"system_maintenance", "Perform system maintenance", "system", "update"},
		{"view_logs", "View system logs", "logs", "read"},
	}
}

// roleGrantNames enumerates the default grants per role. Superadmin is
// handled separately: it receives the entire catalog, which is what makes
// "superadmin can do everything" true — the resolver has no bypass.
func roleGrantNames() map[Role][]string {
	return map[Role][]string{
		RoleAdmin: {
			"create_users", "read_users", "update_users",
			"create_students", "read_students", "update_students", "delete_students",
			"create_teachers", "read_teachers", "update_teachers", "delete_teachers",
			"create_batches", "read_batches", "update_batches", "delete_batches",
			"create_classes", "read_classes", "update_classes", "delete_classes",
			"create_exams", "read_exams", "update_exams", "delete_exams", "grade_exams",
			"mark_attendance", "read_attendance", "update_attendance",
			"create_behavior_records", "read_behavior_records", "update_behavior_records",
			"generate_reports", "read_reports", "update_reports",
			"create_tasks", "read_tasks", "update_tasks", "delete_tasks",
			"create_payments", "read_payments", "update_payments",
			"send_messages", "read_messages", "create_groups", "manage_groups",
			"read_feedback", "respond_feedback",
			"send_notifications", "read_notifications",
			"view_analytics", "export_data",
		},
		RoleManagement: {
			"read_users", "read_students", "read_teachers",
			"read_batches", "read_classes", "read_exams",
			"read_attendance", "read_behavior_records", "read_reports",
			"create_tasks", "read_tasks", "update_tasks",
			"send_messages", "read_messages", "create_groups", "manage_groups",
			"read_feedback", "respond_feedback",
			"send_notifications", "read_notifications",
			"view_analytics",
		},
		RoleAcademics: {
			"create_batches", "read_batches", "update_batches",
			"create_classes", "read_classes", "update_classes",
			"create_exams", "read_exams", "update_exams", "grade_exams",
			"mark_attendance", "read_attendance", "update_attendance",
			"create_behavior_records", "read_behavior_records", "update_behavior_records",
			"generate_reports", "read_reports", "update_reports",
			"read_students", "read_teachers",
			"send_messages", "read_messages", "create_groups", "manage_groups",
			"read_notifications",
			"view_analytics",
		},
		RoleTeacher: {
			"read_classes", "create_exams", "read_exams", "update_exams", "grade_exams",
			"mark_attendance", "read_attendance",
			"create_behavior_records", "read_behavior_records",
			"read_reports",
			"read_students",
			"send_messages", "read_messages",
			"read_notifications",
			"read_tasks", "update_tasks",
		},
		RoleStudent: {
			"read_classes",
			"read_exams",
			"read_attendance", "read_behavior_records", "read_reports",
			"read_payments",
			"send_messages", "read_messages",
			"submit_feedback",
			"read_notifications",
		},
	}
}

// Seed populates the permission catalog and the role-grant table. It is
// idempotent: already-defined permissions are left alone and grant rows
// upsert to granted=true.
func Seed(ctx context.Context, svc *Service) error {
	catalog := seedCatalog()
	allNames := make([]string, 0, len(catalog))
	for _, p := range catalog {
		allNames = append(allNames, p.name)
		_, err := svc.DefinePermission(ctx, p.name, p.resource, p.action, p.description)
		if err != nil && !errors.Is(err, ErrDuplicateName) {
			return fmt.Errorf("seed permission %s: %w", p.name, err)
		}
	}

	grants := roleGrantNames()
	grants[RoleSuperadmin] = allNames

	for _, role := range Roles() {
		for _, name := range grants[role] {
			if err := svc.SetRoleGrant(ctx, role, name, true); err != nil {
				return fmt.Errorf("seed role grant %s/%s: %w", role, name, err)
			}
		}
	}
	return nil
}
