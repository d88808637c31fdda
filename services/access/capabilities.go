package access

import "probation_app_go/models"

// CanCreateClient: admin, officer, staff
func CanCreateClient(r Requester) bool {
	switch r.Role {
	case models.RoleAdmin, models.RoleOfficer, models.RoleStaff:
		return true
	}
	return false
}

// CanEditClient allows admin and staff on any client, and an officer on the
// clients assigned to them. Judges have read-only access.
func CanEditClient(r Requester, c *models.Client) bool {
	switch r.Role {
	case models.RoleAdmin, models.RoleStaff:
		return true
	case models.RoleOfficer:
		return c != nil && c.AssignedOfficerID == r.UserID
	}
	return false
}

// CanDeleteClient is reserved to administrators
func CanDeleteClient(r Requester) bool {
	return r.Role == models.RoleAdmin
}

// CanEditCase follows the client rule against the case officer
func CanEditCase(r Requester, c *models.Case) bool {
	switch r.Role {
	case models.RoleAdmin, models.RoleStaff:
		return true
	case models.RoleOfficer:
		return c != nil && c.OfficerID == r.UserID
	}
	return false
}

// CanDeleteCase is reserved to administrators
func CanDeleteCase(r Requester) bool {
	return r.Role == models.RoleAdmin
}

// CanReviewPlans lets the presiding judge sign off judicial review items
func CanReviewPlans(r Requester, c *models.Case) bool {
	if CanEditCase(r, c) {
		return true
	}
	return r.Role == models.RoleJudge && c != nil && c.PresidingJudgeID != nil && *c.PresidingJudgeID == r.UserID
}

// CanManageCourts covers courts, court cases, hearings and orders
func CanManageCourts(r Requester) bool {
	return r.Role == models.RoleAdmin || r.Role == models.RoleStaff
}

// CanRecordHearingOutcome lets court staff and judges close hearings
func CanRecordHearingOutcome(r Requester) bool {
	return CanManageCourts(r) || r.Role == models.RoleJudge
}

// CanViewCourtCases: every recognized role
func CanViewCourtCases(r Requester) bool {
	return r.Role.Valid()
}

// CanManageUsers covers user accounts and judge profiles
func CanManageUsers(r Requester) bool {
	return r.Role == models.RoleAdmin
}

// CanEditAppointment: admin and staff, or the officer running the appointment
func CanEditAppointment(r Requester, a *models.Appointment) bool {
	switch r.Role {
	case models.RoleAdmin, models.RoleStaff:
		return true
	case models.RoleOfficer:
		return a != nil && a.OfficerID == r.UserID
	}
	return false
}
