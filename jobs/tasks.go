package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSendEmail delivers a transactional email.
	TaskSendEmail = "mail:send"
	// TaskIdentityCleanup retries deletion of a single auth identity whose
	// profile is already gone.
	TaskIdentityCleanup = "identity:cleanup"
	// TaskIdentitySweep scans for orphaned auth identities and removes them.
	TaskIdentitySweep = "identity:sweep"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendEmail, data), nil
}

// IdentityCleanupPayload identifies the auth identity to remove.
type IdentityCleanupPayload struct {
	UserID string `json:"user_id"`
}

// NewIdentityCleanupTask constructs an Asynq task.
func NewIdentityCleanupTask(userID string) (*asynq.Task, error) {
	data, err := json.Marshal(IdentityCleanupPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdentityCleanup, data), nil
}

// NewIdentitySweepTask constructs the scheduled sweep task. The sweep takes
// no parameters; it always scans the whole identity table.
func NewIdentitySweepTask() *asynq.Task {
	return asynq.NewTask(TaskIdentitySweep, nil)
}
