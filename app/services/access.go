package services

import "swadiq-lms/app/models"

// Action is a capability checked before every pipeline operation.
type Action string

const (
	ActionViewEvents       Action = "events.view"
	ActionManageEvents     Action = "events.manage"
	ActionScheduleCourse   Action = "courses.schedule"
	ActionMarkComplete     Action = "attendance.complete"
	ActionViewAttendance   Action = "attendance.view"
	ActionReviewAttendance Action = "attendance.review"
	ActionPayAttendance    Action = "attendance.pay"
	ActionViewSalary       Action = "salary.view"
	ActionManageLedger     Action = "salary.manage"
	ActionManageRates      Action = "rates.manage"
	ActionClosePayroll     Action = "payroll.close"
	ActionViewPayroll      Action = "payroll.view"
)

// Resource identifies what an action targets. OwnerID is the teacher the
// resource belongs to, empty for shared resources.
type Resource struct {
	OwnerID string
}

// SystemActor runs unattended jobs such as the scheduled monthly close.
var SystemActor = &models.Actor{ID: "system", FirstName: "System", Roles: []models.Role{models.RoleAdmin}}

var teacherActions = map[Action]bool{
	ActionViewEvents:     true,
	ActionMarkComplete:   true,
	ActionViewAttendance: true,
	ActionViewSalary:     true,
	ActionViewPayroll:    true,
}

// Can reports whether actor may perform action on res.
func Can(actor *models.Actor, action Action, res Resource) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if actor.HasRole(models.RoleTeacher) && teacherActions[action] {
		// teachers only act on their own records
		return action == ActionViewEvents || res.OwnerID == actor.ID
	}
	if actor.HasRole(models.RoleStudent) {
		return action == ActionViewEvents
	}
	return false
}

func authorize(actor *models.Actor, action Action, res Resource) error {
	if !Can(actor, action, res) {
		return ErrForbidden
	}
	return nil
}
