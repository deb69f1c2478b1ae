package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObjectRejectsNonObjects(t *testing.T) {
	for _, body := range []string{"", "not json", "[]", "42", `"text"`, "null"} {
		_, err := DecodeObject([]byte(body))
		require.NotNil(t, err, "body %q", body)
		assert.Equal(t, KindMalformed, err.Kind)
		assert.Equal(t, "Your request should be in json format", err.Message)
	}
}

func TestDecodeObjectAcceptsObjects(t *testing.T) {
	fields, err := DecodeObject([]byte(`{"email":"a@b.co","password":"pwd"}`))
	require.Nil(t, err)
	assert.Equal(t, "a@b.co", fields["email"])
}

func TestRequireFieldCounts(t *testing.T) {
	fields, derr := DecodeObject([]byte(`{"firstName":"eric","lastName":"Mashauri","email":"eubule@gmail.com"}`))
	require.Nil(t, derr)

	err := fields.Require("firstName", "lastName", "email", "password")
	require.NotNil(t, err)
	assert.Equal(t, KindMissingFields, err.Kind)
	assert.Equal(t, "Missing fields. Please make sure firstName, lastName, email and password are provided", err.Message)
}

func TestRequireTooManyFields(t *testing.T) {
	fields, derr := DecodeObject([]byte(`{"firstName":"eric","lastName":"Mashauri","email":"eubule@gmail.com","password":"eubule","other":"my field"}`))
	require.Nil(t, derr)

	err := fields.Require("firstName", "lastName", "email", "password")
	require.NotNil(t, err)
	assert.Equal(t, KindTooManyFields, err.Kind)
	assert.Equal(t, "Too many arguments. Only firstName, lastName, email and password are required", err.Message)
}

func TestRequireMisspelledField(t *testing.T) {
	fields, derr := DecodeObject([]byte(`{"fistName":"eric","lastName":"Mashauri","email":"eubule@gmail.com","password":"eubule"}`))
	require.Nil(t, derr)

	err := fields.Require("firstName", "lastName", "email", "password")
	require.NotNil(t, err)
	assert.Equal(t, KindUnknownField, err.Kind)
	assert.Equal(t, "firstName, lastName, email or password is missing. Please check the spelling", err.Message)
}

func TestRequireExactMatchPasses(t *testing.T) {
	fields, derr := DecodeObject([]byte(`{"email":"eubule@gmail.com","password":"eubule"}`))
	require.Nil(t, derr)
	assert.Nil(t, fields.Require("email", "password"))
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name                                   string
		firstName, lastName, email, password   any
		wantMessage                            string
	}{
		{"valid", "eric", "Mashauri", "eubule@gmail.com", "eubule", ""},
		{"valid with separator", "Mary Jane", "O'Neil", "mj@site.org", "secret", ""},
		{"non-string first name", 1, "Mashauri", "eubule@gmail.com", "eubule", "Name should be a string of characters"},
		{"empty last name", "eric", "", "eubule@gmail.com", "eubule", "Name cannot be empty"},
		{"single character name", "e", "Mashauri", "eubule@gmail.com", "eubule", "Name must have at least 2 characters"},
		{"special character", "eri/", "Mashauri", "eubule@gmail.com", "eubule", "Name must not contain a special character"},
		{"email missing at sign", "eric", "Mashauri", "eubulegmail.com", "eubule", "Email must be of format john123@gmail.com"},
		{"email not a string", "eric", "Mashauri", 5, "eubule", "Email must be of format john123@gmail.com"},
		{"short password", "eric", "Mashauri", "eubule@gmail.com", "e", "Password must be at least 3 characters long"},
		{"non-string password", "eric", "Mashauri", "eubule@gmail.com", 123, "Password must be at least 3 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.firstName, tt.lastName, tt.email, tt.password)
			if tt.wantMessage == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, KindFormat, err.Kind)
			assert.Equal(t, tt.wantMessage, err.Message)
		})
	}
}

func TestValidateSignupFirstFailureWins(t *testing.T) {
	// Both names are bad; the firstName failure must be reported.
	err := ValidateSignup("", 1, "bad", "x")
	require.NotNil(t, err)
	assert.Equal(t, "Name cannot be empty", err.Message)
}

func TestValidateLogin(t *testing.T) {
	assert.Nil(t, ValidateLogin("eubule@gmail.com", "eubule"))

	err := ValidateLogin("", "eubule")
	require.NotNil(t, err)
	assert.Equal(t, "Email cannot be empty", err.Message)

	err = ValidateLogin("eubule@gmail.com", nil)
	require.NotNil(t, err)
	assert.Equal(t, "Password cannot be empty", err.Message)
}

func TestValidateMessage(t *testing.T) {
	assert.Nil(t, ValidateMessage("hello", "first message", float64(2), "unread"))

	err := ValidateMessage("", "body", float64(2), "unread")
	require.NotNil(t, err)
	assert.Equal(t, "Subject cannot be empty", err.Message)

	err = ValidateMessage("hello", 7, float64(2), "unread")
	require.NotNil(t, err)
	assert.Equal(t, "Message should be a string of characters", err.Message)

	err = ValidateMessage("hello", "body", "two", "unread")
	require.NotNil(t, err)
	assert.Equal(t, "sendTo should be a valid user id", err.Message)

	err = ValidateMessage("hello", "body", float64(2), "pending")
	require.NotNil(t, err)
	assert.Equal(t, "Status should either be read or unread", err.Message)
}

func TestValidateGroup(t *testing.T) {
	assert.Nil(t, ValidateGroup("devs", "admin"))

	err := ValidateGroup("", "admin")
	require.NotNil(t, err)
	assert.Equal(t, "Group name cannot be empty", err.Message)

	err = ValidateGroup("devs", "")
	require.NotNil(t, err)
	assert.Equal(t, "Group role cannot be empty", err.Message)
}

func TestAsUserID(t *testing.T) {
	id, ok := AsUserID(float64(7))
	require.True(t, ok)
	assert.Equal(t, 7, id)

	_, ok = AsUserID(float64(7.5))
	assert.False(t, ok)
	_, ok = AsUserID(float64(0))
	assert.False(t, ok)
	_, ok = AsUserID("7")
	assert.False(t, ok)
}
