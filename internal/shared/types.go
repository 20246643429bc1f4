package shared

// Asynq task types.
const (
	TypeSendWelcomeEmail       = "email:welcome"
	TypeCleanupExpiredResetTok = "auth:cleanup_expired_reset_tokens"
)

// Asynq queues, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
