package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlerts            = 100
)

// SecurityMonitor counts failed logins per IP and raises an alert when an
// address crosses the threshold
type SecurityMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time
	alertedIPs   map[string]time.Time
	alerts       []SecurityAlert
	now          func() time.Time
}

// SecurityAlert is one raised alert, newest first in RecentAlerts
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip_address"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"`
}

// Monitor is the process-wide monitor fed by the login handlers
var Monitor = NewSecurityMonitor()

func NewSecurityMonitor() *SecurityMonitor {
	return &SecurityMonitor{
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		now:          time.Now,
	}
}

// TrackFailedLogin records a failure from ip and prunes attempts outside the window
func (m *SecurityMonitor) TrackFailedLogin(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-failedLoginWindow)
	recent := []time.Time{now}
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}
	m.failedLogins[ip] = recent

	if len(recent) >= failedLoginThreshold {
		m.alertLocked(ip, "Multiple failed logins detected", now)
	}
}

// ClearFailedLogins forgets an address after a successful login
func (m *SecurityMonitor) ClearFailedLogins(ip string) {
	m.mu.Lock()
	delete(m.failedLogins, ip)
	m.mu.Unlock()
}

// alertLocked raises at most one alert per IP per cooldown
func (m *SecurityMonitor) alertLocked(ip, reason string, now time.Time) {
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < alertCooldown {
		return
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Reason: reason, Level: "CRITICAL"}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}

	zap.L().Warn(reason,
		zap.String("event", "SECURITY_ALERT"),
		zap.String("ip", ip),
		zap.String("level", alert.Level),
	)
}

// RecentAlerts returns a copy of the alert history
func (m *SecurityMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SecurityAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Prune drops stale counters; the hourly cleanup job calls it
func (m *SecurityMonitor) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[0]) > failedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}
