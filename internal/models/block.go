package models

import "time"

// User identifier kinds a block author can choose from. The selected kind
// decides which identity field is sent to the grader.
const (
	IdentifierEmail     = "email"
	IdentifierUsername  = "username"
	IdentifierUserID    = "user_id"
	IdentifierAnonymous = "anonymous_student_id"
)

// HTTP methods supported for the grader call.
const (
	MethodGet  = "get"
	MethodPost = "post"
)

// GraderBlock is the authored configuration of one grade-fetcher unit inside a
// course. It is written by the authoring side and read-only at grade time.
type GraderBlock struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CourseID    string `gorm:"size:255;index" json:"course_id"`
	DisplayName string `gorm:"size:255" json:"display_name"`
	Description string `gorm:"type:text" json:"description"`
	ButtonText  string `gorm:"size:255" json:"button_text"`

	UserIdentifier          string `gorm:"size:64" json:"user_identifier"`
	UserIdentifierParameter string `gorm:"size:255" json:"user_identifier_parameter"`

	AuthenticationEndpoint string `gorm:"size:512" json:"authentication_endpoint"`
	ClientID               string `gorm:"size:255" json:"client_id"`
	ClientSecret           string `gorm:"size:255" json:"-"`
	AuthenticationUsername string `gorm:"size:255" json:"authentication_username"`
	AuthenticationPassword string `gorm:"size:255" json:"-"`
	APIKey                 string `gorm:"size:255" json:"-"`

	GraderEndpoint              string `gorm:"size:512" json:"grader_endpoint"`
	HTTPMethod                  string `gorm:"size:8" json:"http_method"`
	ActivityIdentifier          string `gorm:"size:255" json:"activity_identifier"`
	ActivityIdentifierParameter string `gorm:"size:255" json:"activity_identifier_parameter"`
	ExtraParams                 string `gorm:"type:text" json:"extra_params"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsesAuthentication reports whether the bearer-token exchange is configured.
func (b GraderBlock) UsesAuthentication() bool {
	return b.AuthenticationEndpoint != ""
}
