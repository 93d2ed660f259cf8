package validation

import (
	"regexp"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
)

// Form limits shared by the web forms and the CLI.
const (
	MinUsername    = 3
	MaxUsername    = 150
	MinPassword    = 8
	MaxDisplayName = 50
	MaxBio         = 500
	MaxTopics      = 10

	MinTitle   = 10
	MaxTitle   = 200
	MinContent = 20
	MaxContent = 10000
	MaxTags    = 5
	MaxReply   = 5000
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Login checks the login form. The backend judges the password itself.
func Login(username, password string) *FieldValidator {
	return New().
		Validate("username", username, Required("Username", MaxUsername)).
		Validate("password", password, MinLength("Password", 1))
}

// Register checks the registration form, including the confirmation.
func Register(in domainauth.RegisterInput) *FieldValidator {
	return New().
		Validate("username", in.Username,
			RequiredRange("Username", MinUsername, MaxUsername),
			Pattern(usernamePattern, "Username can only contain letters, numbers, and underscores")).
		Validate("display_name", in.DisplayName, Optional("Display name", MaxDisplayName)).
		Validate("password", in.Password, MinLength("Password", MinPassword)).
		Validate("confirm_password", in.ConfirmPassword,
			Equals(in.Password, "Please confirm your password", "Passwords do not match"))
}

// Profile checks a profile edit; topics is the comma separated list.
func Profile(displayName, bio, topics string) *FieldValidator {
	return New().
		Validate("display_name", displayName, Optional("Display name", MaxDisplayName)).
		Validate("bio", bio, Optional("Bio", MaxBio)).
		Validate("preferred_topics", topics, MaxItems("topics", MaxTopics))
}

// Post checks the create-post form.
func Post(title, content, categorySlug, tags string) *FieldValidator {
	fv := New().
		Validate("title", title, RequiredRange("Title", MinTitle, MaxTitle)).
		Validate("content", content, RequiredRange("Content", MinContent, MaxContent)).
		Validate("category_slug", categorySlug, Required("Category", MaxTitle)).
		Validate("tags", tags, MaxItems("tags", MaxTags))
	if _, ok := fv.errors["category_slug"]; ok {
		fv.errors["category_slug"] = "Please select a category"
	}
	return fv
}

// Reply checks the reply form.
func Reply(content string) *FieldValidator {
	return New().Validate("content", content, Required("Reply", MaxReply))
}
