package validation

import (
	"encoding/json"
	"regexp"
	"strings"

	"epicmail-service/internal/models"
)

// Kind classifies a validation failure so handlers can branch without
// comparing message strings.
type Kind string

const (
	// KindMalformed means the body was not a JSON object.
	KindMalformed Kind = "malformed"
	// KindMissingFields means fewer keys than the endpoint requires.
	KindMissingFields Kind = "missing_fields"
	// KindTooManyFields means more keys than the endpoint accepts.
	KindTooManyFields Kind = "too_many_fields"
	// KindUnknownField means the right key count but a misspelled name.
	KindUnknownField Kind = "unknown_field"
	// KindFormat means a present field failed a format rule.
	KindFormat Kind = "format"
)

// Error carries the failure kind and the caller-visible reason.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func formatErr(message string) *Error {
	return &Error{Kind: KindFormat, Message: message}
}

// Fields is a decoded JSON object whose values are still untyped.
type Fields map[string]any

// DecodeObject parses a request body as a JSON object.
func DecodeObject(body []byte) (Fields, *Error) {
	var fields Fields
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, &Error{Kind: KindMalformed, Message: "Your request should be in json format"}
	}
	return fields, nil
}

// Require enforces the exact-field-count contract: the object must contain
// precisely the named keys, no more, no fewer, correctly spelled.
func (f Fields) Require(names ...string) *Error {
	if len(f) < len(names) {
		return &Error{
			Kind:    KindMissingFields,
			Message: "Missing fields. Please make sure " + joinList(names, "and") + " are provided",
		}
	}
	if len(f) > len(names) {
		return &Error{
			Kind:    KindTooManyFields,
			Message: "Too many arguments. Only " + joinList(names, "and") + " are required",
		}
	}
	for _, name := range names {
		if _, ok := f[name]; !ok {
			return &Error{
				Kind:    KindUnknownField,
				Message: joinList(names, "or") + " is missing. Please check the spelling",
			}
		}
	}
	return nil
}

func joinList(names []string, conj string) string {
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " " + conj + " " + names[len(names)-1]
}

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z]+(?:[ '-][A-Za-z]+)*$`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// ValidateSignup checks signup fields in order: firstName, lastName, email,
// password. The first failing rule wins.
func ValidateSignup(firstName, lastName, email, password any) *Error {
	if err := checkName(firstName); err != nil {
		return err
	}
	if err := checkName(lastName); err != nil {
		return err
	}
	if err := checkEmail(email); err != nil {
		return err
	}
	return checkPassword(password)
}

// ValidateLogin checks presence and type only; whether the account exists and
// the password matches is the handler's business.
func ValidateLogin(email, password any) *Error {
	s, ok := email.(string)
	if !ok || s == "" {
		return formatErr("Email cannot be empty")
	}
	p, ok := password.(string)
	if !ok || p == "" {
		return formatErr("Password cannot be empty")
	}
	return nil
}

// ValidateMessage checks the shape of a direct message. Receiver existence
// and self-send rejection are handler concerns.
func ValidateMessage(subject, body, sendTo, status any) *Error {
	if err := checkText(subject, "Subject"); err != nil {
		return err
	}
	if err := checkText(body, "Message"); err != nil {
		return err
	}
	if _, ok := AsUserID(sendTo); !ok {
		return formatErr("sendTo should be a valid user id")
	}
	s, ok := status.(string)
	if !ok || (s != models.StatusRead && s != models.StatusUnread) {
		return formatErr("Status should either be read or unread")
	}
	return nil
}

// ValidateGroupMessage checks the shape of a message posted into a group.
func ValidateGroupMessage(subject, body any) *Error {
	if err := checkText(subject, "Subject"); err != nil {
		return err
	}
	return checkText(body, "Message")
}

// ValidateGroup checks group creation fields.
func ValidateGroup(name, role any) *Error {
	if err := ValidateGroupName(name); err != nil {
		return err
	}
	r, ok := role.(string)
	if !ok || r == "" {
		return formatErr("Group role cannot be empty")
	}
	return nil
}

// ValidateGroupName checks a group name on its own, for renames.
func ValidateGroupName(name any) *Error {
	s, ok := name.(string)
	if !ok {
		return formatErr("Group name should be a string of characters")
	}
	if s == "" {
		return formatErr("Group name cannot be empty")
	}
	if len(s) < 2 {
		return formatErr("Group name must have at least 2 characters")
	}
	return nil
}

// ValidateMember checks an add-member payload.
func ValidateMember(userID, role any) *Error {
	if _, ok := AsUserID(userID); !ok {
		return formatErr("userId should be a valid user id")
	}
	r, ok := role.(string)
	if !ok || r == "" {
		return formatErr("Role cannot be empty")
	}
	return nil
}

// AsUserID converts a decoded JSON value to a positive user id.
func AsUserID(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		id := int(n)
		if float64(id) == n && id > 0 {
			return id, true
		}
	case int:
		if n > 0 {
			return n, true
		}
	}
	return 0, false
}

func checkName(v any) *Error {
	s, ok := v.(string)
	if !ok {
		return formatErr("Name should be a string of characters")
	}
	if s == "" {
		return formatErr("Name cannot be empty")
	}
	if len(s) < 2 {
		return formatErr("Name must have at least 2 characters")
	}
	if !namePattern.MatchString(s) {
		return formatErr("Name must not contain a special character")
	}
	return nil
}

func checkEmail(v any) *Error {
	s, ok := v.(string)
	if !ok || !emailPattern.MatchString(s) {
		return formatErr("Email must be of format john123@gmail.com")
	}
	return nil
}

func checkPassword(v any) *Error {
	s, ok := v.(string)
	if !ok || len(s) < 3 {
		return formatErr("Password must be at least 3 characters long")
	}
	return nil
}

func checkText(v any, label string) *Error {
	s, ok := v.(string)
	if !ok {
		return formatErr(label + " should be a string of characters")
	}
	if s == "" {
		return formatErr(label + " cannot be empty")
	}
	return nil
}
