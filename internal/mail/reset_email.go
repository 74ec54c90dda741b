package mail

import "fmt"

const ResetSubject = "Your password reset token (valid for 10 min)"

func ResetBody(resetURL string) string {
	return fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your new password and password confirm to: %s.\nIf you didn't forget your password, please ignore this email!",
		resetURL,
	)
}
