package validation

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "valid", value: "How I cope", want: ""},
		{name: "empty", value: "", want: "Title is required"},
		{name: "whitespace only", value: "   ", want: "Title is required"},
		{name: "exactly max", value: strings.Repeat("a", 10), want: ""},
		{name: "too long", value: strings.Repeat("a", 11), want: "Title must be less than 11 characters"},
		{name: "unicode counts runes", value: strings.Repeat("é", 10), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Required("Title", 10)(tt.value))
		})
	}
}

func TestRequiredRange(t *testing.T) {
	v := RequiredRange("Username", 3, 150)
	assert.Equal(t, "Username is required", v(""))
	assert.Equal(t, "Username must be at least 3 characters", v("al"))
	assert.Equal(t, "", v("alice"))
	assert.Equal(t, "Username must be less than 151 characters", v(strings.Repeat("a", 151)))
}

func TestMinLengthDoesNotTrim(t *testing.T) {
	v := MinLength("Password", 8)
	assert.Equal(t, "Password is required", v(""))
	assert.Equal(t, "Password must be at least 8 characters", v("short"))
	assert.Equal(t, "", v("        "))
}

func TestEquals(t *testing.T) {
	v := Equals("secret123", "Please confirm your password", "Passwords do not match")
	assert.Equal(t, "Please confirm your password", v(""))
	assert.Equal(t, "Passwords do not match", v("secret124"))
	assert.Equal(t, "", v("secret123"))
}

func TestPattern(t *testing.T) {
	v := Pattern(regexp.MustCompile(`^[A-Za-z0-9_]+$`), "bad")
	assert.Equal(t, "", v(""))
	assert.Equal(t, "", v("quiet_owl42"))
	assert.Equal(t, "bad", v("quiet owl"))
}

func TestOptional(t *testing.T) {
	v := Optional("Bio", 5)
	assert.Equal(t, "", v(""))
	assert.Equal(t, "", v("hello"))
	assert.Equal(t, "Bio must be less than 6 characters", v("hello!"))
}

func TestMaxItemsAndSplitList(t *testing.T) {
	assert.Equal(t, []string{"anxiety", "sleep"}, SplitList(" anxiety, ,sleep,"))
	assert.Empty(t, SplitList(""))

	v := MaxItems("topics", 2)
	assert.Equal(t, "", v("a,b"))
	assert.Equal(t, "Choose at most 2 topics", v("a,b,c"))
}

func TestFieldValidatorStopsAtFirstErrorPerField(t *testing.T) {
	fv := New().
		Validate("username", "", RequiredRange("Username", 3, 150), Pattern(regexp.MustCompile(`^x$`), "never")).
		Validate("password", "longenough", MinLength("Password", 8))

	assert.False(t, fv.Valid())
	assert.Equal(t, map[string]string{"username": "Username is required"}, fv.Errors())
}

func TestFieldValidatorValid(t *testing.T) {
	fv := New().Validate("content", "I hear you", Required("Content", 100))
	assert.True(t, fv.Valid())
	assert.Empty(t, fv.Errors())
}
