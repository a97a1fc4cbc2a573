package authcore

import "time"

// Audit event names.
const (
	auditLoginSuccess      = "login_success"
	auditLoginFailure      = "login_failure"
	auditLoginLocked       = "login_locked"
	auditLogout            = "logout"
	auditRegistered        = "user_registered"
	auditVerificationSent  = "verification_otp_issued"
	auditEmailVerified     = "email_verified"
	auditResetRequested    = "password_reset_requested"
	auditResetVerified     = "password_reset_verified"
	auditResetCompleted    = "password_reset_completed"
	auditOTPExhausted      = "otp_attempts_exceeded"
	auditAccountConfigFail = "account_configuration_error"
)

// emitAudit queues an audit event when auditing is enabled.
func (e *Engine) emitAudit(event, identifier string, at time.Time, detail map[string]string) {
	if e.audit == nil {
		return
	}
	e.audit.dispatch(AuditEvent{
		Event:      event,
		Identifier: normalizeIdentifier(identifier),
		Detail:     detail,
		At:         at,
	})
}

// metricInc bumps a counter when metrics are enabled.
func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}
