package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tours-backend/internal/infrastructure/email"
)

type recordingMailer struct {
	sent []email.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func TestWelcomeEmailHandler(t *testing.T) {
	mailer := &recordingMailer{}
	payload, err := json.Marshal(email.WelcomePayload{Email: "jonas@example.com", Name: "Jonas Schmedtmann", AccountURL: "http://localhost:3000/me"})
	require.NoError(t, err)

	err = NewWelcomeEmailHandler(mailer).ProcessTask(context.Background(), asynq.NewTask("email:welcome", payload))
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "jonas@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, "Hi Jonas,")
}

func TestWelcomeEmailHandlerBadPayloadSkipsRetry(t *testing.T) {
	err := NewWelcomeEmailHandler(&recordingMailer{}).ProcessTask(context.Background(), asynq.NewTask("email:welcome", []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWelcomeEmailHandlerPropagatesSendFailure(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	payload, _ := json.Marshal(email.WelcomePayload{Email: "a@b.io", Name: "A"})

	err := NewWelcomeEmailHandler(mailer).ProcessTask(context.Background(), asynq.NewTask("email:welcome", payload))
	assert.ErrorContains(t, err, "smtp down")
}
