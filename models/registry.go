package models

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Client{},
		&Address{},
		&Offense{},
		&Case{},
		&RehabilitationPlan{},
		&PlanItem{},
		&Appointment{},
		&Court{},
		&Judge{},
		&CourtCase{},
		&Hearing{},
		&CourtOrder{},
		&Message{},
		&Notification{},
		&AuditLog{},
	}
}
