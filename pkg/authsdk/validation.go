package authsdk

import (
	"regexp"
	"strings"
)

const (
	validationRequiredReason = "required"
	validationOnlyAlphanum   = "must only contain a-z, A-Z, 0-9, _ or -"
)

var (
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	reRole     = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	reEmail    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	reMobile   = regexp.MustCompile(`^\+?[0-9][0-9 -]{5,19}$`)
)

// Validate checks the registration request fields. Returns a map of field
// names to error messages, or nil if all fields are valid. The semantic rules
// (username uniqueness, confirmation match) are enforced server-side; this
// catches shape problems before a request is even sent.
func (r RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)

	r.validateUsername(errs)
	r.validatePassword(errs)
	r.validateRole(errs)
	r.validateContact(errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r RegisterRequest) validateUsername(errs map[string]string) {
	username := strings.TrimSpace(r.Username)
	switch {
	case username == "":
		errs["username"] = validationRequiredReason
	case len(username) < 3 || len(username) > 32:
		errs["username"] = "must be 3-32 characters"
	case !reUsername.MatchString(username):
		errs["username"] = validationOnlyAlphanum
	}
}

func (r RegisterRequest) validatePassword(errs map[string]string) {
	switch {
	case r.Password == "":
		errs["password"] = validationRequiredReason
	case len(r.Password) < 8:
		errs["password"] = "too short (min 8)"
	case len(r.Password) > 128:
		errs["password"] = "too long (max 128)"
	}

	if r.ConfirmPassword == "" {
		errs["confirm_password"] = validationRequiredReason
	}
}

func (r RegisterRequest) validateRole(errs map[string]string) {
	if r.Role == "" {
		return // server applies the default
	}
	switch {
	case len(r.Role) > 32:
		errs["role"] = "too long (max 32)"
	case !reRole.MatchString(r.Role):
		errs["role"] = "must be lowercase, starting with a letter"
	}
}

func (r RegisterRequest) validateContact(errs map[string]string) {
	if email := strings.TrimSpace(r.Email); email != "" && !reEmail.MatchString(email) {
		errs["email"] = "not a valid email address"
	}
	if mobile := strings.TrimSpace(r.MobileNumber); mobile != "" && !reMobile.MatchString(mobile) {
		errs["mobile_number"] = "not a valid mobile number"
	}
}
