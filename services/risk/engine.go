// Package risk scores a client's supervision risk from appointment history,
// offense history and case load. Everything here is pure: callers supply a
// Snapshot and the evaluation time.
package risk

import (
	"fmt"
	"time"

	"probation_app_go/models"
)

// Severity of a triggered factor
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Category labels
const (
	CategoryHigh   = "High Risk"
	CategoryMedium = "Medium Risk"
	CategoryLow    = "Low Risk"
)

// Alert levels shared with the basic analysis
const (
	AlertDanger  = "danger"
	AlertWarning = "warning"
	AlertSuccess = "success"
)

// Factor names
const (
	FactorLowCompliance  = "Low appointment compliance"
	FactorRecentMissed   = "Multiple recent missed appointments"
	FactorOffenseHistory = "Extensive offense history"
	FactorMultipleCases  = "Multiple active cases"
)

// Recommendations
const (
	RecIncreaseMonitoring = "Increase monitoring frequency"
	RecStricterCheckins   = "Implement stricter check-in requirements"
	RecImmediateAction    = "Schedule immediate intervention"
	RecHomeVisit          = "Consider home visit assessment"
	RecProgramAdherence   = "Focus on rehabilitation program adherence"
)

const (
	complianceThreshold   = 70.0
	recentMissedThreshold = 2
	offenseThreshold      = 3
	activeCaseThreshold   = 1

	highFactorWeight   = 10
	mediumFactorWeight = 5

	highBand   = 75
	mediumBand = 50
)

// RecentWindow is how far back a no-show counts as recent
const RecentWindow = 30 * 24 * time.Hour

var baseScores = map[string]int{
	models.RiskLevelLow:    25,
	models.RiskLevelMedium: 50,
	models.RiskLevelHigh:   75,
}

const defaultBaseScore = 50

// Snapshot is the counted input of one evaluation
type Snapshot struct {
	RiskLevel             string
	TotalAppointments     int
	CompletedAppointments int
	NoShowAppointments    int
	RecentNoShows         int
	OffenseCount          int
	OpenCaseCount         int
}

// Factor is one triggered rule
type Factor struct {
	Factor      string   `json:"factor"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Analysis is the engine output
type Analysis struct {
	RiskScore             int       `json:"risk_score"`
	RiskCategory          string    `json:"risk_category"`
	AlertLevel            string    `json:"alert_level"`
	CompletionRate        float64   `json:"completion_rate"`
	TotalAppointments     int       `json:"total_appointments"`
	CompletedAppointments int       `json:"completed_appointments"`
	MissedAppointments    int       `json:"missed_appointments"`
	RiskFactors           []Factor  `json:"risk_factors"`
	Recommendations       []string  `json:"recommendations"`
	AnalysisDate          time.Time `json:"analysis_date"`
}

// CompletionRate is completed/total as a percentage, 0 when total is 0
func CompletionRate(total, completed int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// Analyze runs the scoring rules in a fixed order. Recommendations follow
// factor order and may repeat.
func Analyze(s Snapshot, now time.Time) Analysis {
	rate := CompletionRate(s.TotalAppointments, s.CompletedAppointments)

	factors := []Factor{}
	recs := []string{}

	if rate < complianceThreshold {
		factors = append(factors, Factor{
			Factor:      FactorLowCompliance,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("Only %.1f%% of appointments completed", rate),
		})
		recs = append(recs, RecIncreaseMonitoring, RecStricterCheckins)
	}

	if s.RecentNoShows > recentMissedThreshold {
		factors = append(factors, Factor{
			Factor:      FactorRecentMissed,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("%d missed appointments in last 30 days", s.RecentNoShows),
		})
		recs = append(recs, RecImmediateAction, RecHomeVisit)
	}

	if s.OffenseCount > offenseThreshold {
		factors = append(factors, Factor{
			Factor:      FactorOffenseHistory,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%d prior offenses recorded", s.OffenseCount),
		})
		recs = append(recs, RecProgramAdherence)
	}

	if s.OpenCaseCount > activeCaseThreshold {
		factors = append(factors, Factor{
			Factor:      FactorMultipleCases,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%d concurrent active cases", s.OpenCaseCount),
		})
	}

	score := BaseScore(s.RiskLevel)
	for _, f := range factors {
		switch f.Severity {
		case SeverityHigh:
			score += highFactorWeight
		case SeverityMedium:
			score += mediumFactorWeight
		}
	}
	score = clamp(score, 0, 100)

	category, alert := Band(score)

	return Analysis{
		RiskScore:             score,
		RiskCategory:          category,
		AlertLevel:            alert,
		CompletionRate:        rate,
		TotalAppointments:     s.TotalAppointments,
		CompletedAppointments: s.CompletedAppointments,
		MissedAppointments:    s.NoShowAppointments,
		RiskFactors:           factors,
		Recommendations:       recs,
		AnalysisDate:          now,
	}
}

// BaseScore maps the stored risk level, 50 when unrecognized
func BaseScore(level string) int {
	if v, ok := baseScores[level]; ok {
		return v
	}
	return defaultBaseScore
}

// Band classifies a final score. Lower bounds are inclusive, checked high first.
func Band(score int) (category, alert string) {
	switch {
	case score >= highBand:
		return CategoryHigh, AlertDanger
	case score >= mediumBand:
		return CategoryMedium, AlertWarning
	}
	return CategoryLow, AlertSuccess
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
