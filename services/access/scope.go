package access

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scope renders the predicate as a gorm scope
func (p Predicate) Scope() func(*gorm.DB) *gorm.DB {
	clause, args := p.Clause()
	return func(tx *gorm.DB) *gorm.DB {
		if p.all {
			return tx
		}
		return tx.Where(clause, args...)
	}
}

// Apply narrows query to the rows of entity visible to r.
// Denials are logged so misconfigured accounts surface in the logs.
func Apply(query *gorm.DB, entity Entity, r Requester) *gorm.DB {
	p := Visible(entity, r)
	if p.Denied() {
		zap.L().Warn("access denied",
			zap.String("event", "SECURITY"),
			zap.String("entity", string(entity)),
			zap.String("user_id", r.UserID),
			zap.String("role", string(r.Role)),
			zap.String("reason", p.Reason()),
		)
	}
	return query.Scopes(p.Scope())
}
