// Package access decides which records a requester may see or change.
//
// Every role check in the application goes through this package so the
// officer/judge/admin/staff rules live in one place. Unrecognized roles see
// nothing.
package access

import (
	"fmt"

	"probation_app_go/models"
)

// Entity names a collection the policy can narrow
type Entity string

const (
	EntityClient      Entity = "client"
	EntityCase        Entity = "case"
	EntityAppointment Entity = "appointment"
	EntityPlan        Entity = "rehabilitation_plan"
	EntityPlanItem    Entity = "plan_item"
	EntityCourtCase   Entity = "court_case"
	EntityHearing     Entity = "hearing"
	EntityCourtOrder  Entity = "court_order"
)

// Requester is the identity a visibility decision is made for
type Requester struct {
	UserID string
	Role   models.Role
}

// FromUser builds a Requester, treating a nil user as an unknown role
func FromUser(u *models.User) Requester {
	if u == nil {
		return Requester{}
	}
	return Requester{UserID: u.ID, Role: u.Role}
}

// Predicate is a SQL condition over an entity's table.
// The zero value denies everything.
type Predicate struct {
	Entity Entity
	all    bool
	clause string
	args   []interface{}
	reason string
}

// AllowsAll reports an unrestricted predicate
func (p Predicate) AllowsAll() bool { return p.all }

// Denied reports a predicate that matches no rows
func (p Predicate) Denied() bool { return !p.all && p.clause == "" }

// Reason explains a denial
func (p Predicate) Reason() string { return p.reason }

// Clause returns the SQL condition and its arguments
func (p Predicate) Clause() (string, []interface{}) {
	switch {
	case p.all:
		return "1 = 1", nil
	case p.clause == "":
		return "1 = 0", nil
	}
	return p.clause, p.args
}

func (p Predicate) String() string {
	c, args := p.Clause()
	return fmt.Sprintf("%s: %s %v", p.Entity, c, args)
}

func allow(e Entity) Predicate { return Predicate{Entity: e, all: true} }

func deny(e Entity, reason string) Predicate { return Predicate{Entity: e, reason: reason} }

func where(e Entity, clause string, args ...interface{}) Predicate {
	return Predicate{Entity: e, clause: clause, args: args}
}

// Subqueries resolving the owning case of nested records
const (
	officerCases = "SELECT id FROM cases WHERE officer_id = ?"
	judgeCases   = "SELECT id FROM cases WHERE presiding_judge_id = ?"
	judgeClients = "SELECT client_id FROM cases WHERE presiding_judge_id = ?"
	officerPlans = "SELECT rp.id FROM rehabilitation_plans rp JOIN cases c ON c.id = rp.case_id WHERE c.officer_id = ?"
	judgePlans   = "SELECT rp.id FROM rehabilitation_plans rp JOIN cases c ON c.id = rp.case_id WHERE c.presiding_judge_id = ?"
	officerCourt = "SELECT cc.id FROM court_cases cc JOIN cases c ON c.id = cc.case_id WHERE c.officer_id = ?"
	judgeCourt   = "SELECT cc.id FROM court_cases cc JOIN cases c ON c.id = cc.case_id WHERE c.presiding_judge_id = ?"
)

// Visible returns the rows of entity the requester may see. It has no side effects.
func Visible(entity Entity, r Requester) Predicate {
	if r.UserID == "" {
		return deny(entity, "anonymous requester")
	}

	switch r.Role {
	case models.RoleAdmin, models.RoleStaff:
		return allow(entity)
	case models.RoleOfficer:
		return officerVisible(entity, r.UserID)
	case models.RoleJudge:
		return judgeVisible(entity, r.UserID)
	}
	return deny(entity, fmt.Sprintf("unrecognized role %q", r.Role))
}

func officerVisible(e Entity, id string) Predicate {
	switch e {
	case EntityClient:
		return where(e, "clients.assigned_officer_id = ?", id)
	case EntityCase:
		return where(e, "cases.officer_id = ?", id)
	case EntityAppointment:
		return where(e, "appointments.officer_id = ?", id)
	case EntityPlan:
		return where(e, "rehabilitation_plans.case_id IN ("+officerCases+")", id)
	case EntityPlanItem:
		return where(e, "plan_items.plan_id IN ("+officerPlans+")", id)
	case EntityCourtCase:
		return where(e, "court_cases.case_id IN ("+officerCases+")", id)
	case EntityHearing:
		return where(e, "hearings.court_case_id IN ("+officerCourt+")", id)
	case EntityCourtOrder:
		return where(e, "court_orders.court_case_id IN ("+officerCourt+")", id)
	}
	return deny(e, "unknown entity")
}

// Judges reach clients and everything below a case through the cases they
// preside over. IN (subquery) keeps each client once even with several cases.
func judgeVisible(e Entity, id string) Predicate {
	switch e {
	case EntityClient:
		return where(e, "clients.id IN ("+judgeClients+")", id)
	case EntityCase:
		return where(e, "cases.presiding_judge_id = ?", id)
	case EntityAppointment:
		return where(e, "appointments.client_id IN ("+judgeClients+")", id)
	case EntityPlan:
		return where(e, "rehabilitation_plans.case_id IN ("+judgeCases+")", id)
	case EntityPlanItem:
		return where(e, "plan_items.plan_id IN ("+judgePlans+")", id)
	case EntityCourtCase:
		return where(e, "court_cases.case_id IN ("+judgeCases+")", id)
	case EntityHearing:
		return where(e, "hearings.court_case_id IN ("+judgeCourt+")", id)
	case EntityCourtOrder:
		return where(e, "court_orders.court_case_id IN ("+judgeCourt+")", id)
	}
	return deny(e, "unknown entity")
}
