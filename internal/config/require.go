package config

import (
	"log"
	"strings"
)

// mustValidate fatals once, naming every missing required variable, so a
// fresh deployment surfaces its whole misconfiguration in a single run.
func (c Config) mustValidate() {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(c.JWTSecret) == 0 {
		missing = append(missing, "JWT_SECRET")
	}
	if c.SMTPHost == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if len(missing) > 0 {
		log.Fatalf("missing required env: %s", strings.Join(missing, ", "))
	}
}
