package email

import "fmt"

// Message is a single plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// WelcomePayload is the asynq payload of the welcome email task.
type WelcomePayload struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	AccountURL string `json:"account_url"`
}

func firstName(name string) string {
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}

func WelcomeEmail(p WelcomePayload) Message {
	return Message{
		To:      p.Email,
		Subject: "Welcome to the Natours Family!",
		Body: fmt.Sprintf(`Hi %s,

Welcome to Natours, we're glad to have you.
Upload a photo and manage your bookings on your account page: %s

- Natours`, firstName(p.Name), p.AccountURL),
	}
}

func PasswordResetEmail(to, name, resetURL string) Message {
	return Message{
		To:      to,
		Subject: "Your password reset token (valid for 10 min)",
		Body: fmt.Sprintf(`Hi %s,

Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.
If you didn't forget your password, please ignore this email!`, firstName(name), resetURL),
	}
}
