package config

import "strings"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSupport Role = "support"
)

// AccessControl maps staff email addresses to roles. It is built once from
// the comma separated ADMIN_EMAILS and SUPPORT_EMAILS lists and is read-only
// afterwards, so it is safe for concurrent use.
type AccessControl struct {
	roles map[string]Role
}

// NewAccessControl parses both lists. An address present in both is admin.
func NewAccessControl(adminEmails, supportEmails string) AccessControl {
	acl := AccessControl{roles: make(map[string]Role)}
	for _, email := range splitEmails(supportEmails) {
		acl.roles[email] = RoleSupport
	}
	for _, email := range splitEmails(adminEmails) {
		acl.roles[email] = RoleAdmin
	}
	return acl
}

// RoleFor matches email case-insensitively after trimming whitespace.
func (a AccessControl) RoleFor(email string) (Role, bool) {
	role, ok := a.roles[normalizeEmail(email)]
	return role, ok
}

func (a AccessControl) IsAdmin(email string) bool {
	role, ok := a.RoleFor(email)
	return ok && role == RoleAdmin
}

func splitEmails(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if email := normalizeEmail(part); email != "" {
			out = append(out, email)
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
