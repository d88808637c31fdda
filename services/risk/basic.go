package risk

// BasicAnalysis is the lightweight compliance summary shown on list and
// detail pages. Its bands are independent of Analyze.
type BasicAnalysis struct {
	CompletionRate        float64 `json:"completion_rate"`
	TotalAppointments     int     `json:"total_appointments"`
	CompletedAppointments int     `json:"completed_appointments"`
	RiskIndicator         string  `json:"risk_indicator"`
}

// Basic bands the completion rate: success at 70 and above, warning from 50
// up to 70, danger below 50.
func Basic(total, completed int) BasicAnalysis {
	rate := CompletionRate(total, completed)

	indicator := AlertDanger
	switch {
	case rate >= 70:
		indicator = AlertSuccess
	case rate >= 50:
		indicator = AlertWarning
	}

	return BasicAnalysis{
		CompletionRate:        rate,
		TotalAppointments:     total,
		CompletedAppointments: completed,
		RiskIndicator:         indicator,
	}
}
