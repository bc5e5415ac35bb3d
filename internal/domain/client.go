package domain

import (
	"strings"
	"time"
)

// DefaultClientName is used when a save carries neither a client name nor an email.
const DefaultClientName = "Default Client"

const synthesizedEmailDomain = "@example.com"

// Client is the customer a quote is addressed to.
type Client struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// SynthesizeEmail derives a placeholder address from a client name:
// lowercased, whitespace runs replaced by dots, "@example.com" appended.
func SynthesizeEmail(name string) string {
	local := strings.Join(strings.Fields(strings.ToLower(name)), ".")

	return local + synthesizedEmailDomain
}

// ClientIdentity returns the name and email to use when a client must be created.
// A blank email is synthesized from the name. With both blank the default client is used.
func ClientIdentity(name, email string) (string, string) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" && email == "" {
		return DefaultClientName, SynthesizeEmail(DefaultClientName)
	}

	if name == "" {
		name = DefaultClientName
	}

	if email == "" {
		email = SynthesizeEmail(name)
	}

	return name, email
}
