package dto

import (
	"time"

	"github.com/noah-isme/gradefetcher-api/internal/models"
)

// BlockCreateRequest is the authoring payload for a new grader block.
type BlockCreateRequest struct {
	CourseID    string `json:"course_id" validate:"required"`
	DisplayName string `json:"display_name" validate:"omitempty,max=255"`
	Description string `json:"description"`
	ButtonText  string `json:"button_text" validate:"omitempty,max=255"`

	UserIdentifier          string `json:"user_identifier" validate:"omitempty,oneof=email username user_id anonymous_student_id"`
	UserIdentifierParameter string `json:"user_identifier_parameter" validate:"omitempty,max=255"`

	AuthenticationEndpoint string `json:"authentication_endpoint" validate:"omitempty,max=512"`
	ClientID               string `json:"client_id"`
	ClientSecret           string `json:"client_secret"`
	AuthenticationUsername string `json:"authentication_username"`
	AuthenticationPassword string `json:"authentication_password"`
	APIKey                 string `json:"api_key"`

	GraderEndpoint              string `json:"grader_endpoint" validate:"required,max=512"`
	HTTPMethod                  string `json:"http_method" validate:"omitempty,oneof=get post"`
	ActivityIdentifier          string `json:"activity_identifier"`
	ActivityIdentifierParameter string `json:"activity_identifier_parameter"`
	ExtraParams                 string `json:"extra_params"`
}

// BlockUpdateRequest carries partial edits to an existing block.
type BlockUpdateRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	ButtonText  *string `json:"button_text" validate:"omitempty,max=255"`

	UserIdentifier          *string `json:"user_identifier" validate:"omitempty,oneof=email username user_id anonymous_student_id"`
	UserIdentifierParameter *string `json:"user_identifier_parameter" validate:"omitempty,max=255"`

	AuthenticationEndpoint *string `json:"authentication_endpoint" validate:"omitempty,max=512"`
	ClientID               *string `json:"client_id"`
	ClientSecret           *string `json:"client_secret"`
	AuthenticationUsername *string `json:"authentication_username"`
	AuthenticationPassword *string `json:"authentication_password"`
	APIKey                 *string `json:"api_key"`

	GraderEndpoint              *string `json:"grader_endpoint" validate:"omitempty,max=512"`
	HTTPMethod                  *string `json:"http_method" validate:"omitempty,oneof=get post"`
	ActivityIdentifier          *string `json:"activity_identifier"`
	ActivityIdentifierParameter *string `json:"activity_identifier_parameter"`
	ExtraParams                 *string `json:"extra_params"`
}

// BlockResponse is the authoring view of a block. Secrets never leave the
// service; only their presence is reported.
type BlockResponse struct {
	ID          uint   `json:"id"`
	CourseID    string `json:"course_id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	ButtonText  string `json:"button_text"`

	UserIdentifier          string `json:"user_identifier"`
	UserIdentifierParameter string `json:"user_identifier_parameter"`

	AuthenticationEndpoint string `json:"authentication_endpoint"`
	ClientID               string `json:"client_id"`
	HasClientSecret        bool   `json:"has_client_secret"`
	AuthenticationUsername string `json:"authentication_username"`
	HasPassword            bool   `json:"has_password"`
	HasAPIKey              bool   `json:"has_api_key"`

	GraderEndpoint              string    `json:"grader_endpoint"`
	HTTPMethod                  string    `json:"http_method"`
	ActivityIdentifier          string    `json:"activity_identifier"`
	ActivityIdentifierParameter string    `json:"activity_identifier_parameter"`
	ExtraParams                 string    `json:"extra_params"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

// NewBlockResponse converts a GraderBlock model into a DTO.
func NewBlockResponse(model models.GraderBlock) BlockResponse {
	return BlockResponse{
		ID:                          model.ID,
		CourseID:                    model.CourseID,
		DisplayName:                 model.DisplayName,
		Description:                 model.Description,
		ButtonText:                  model.ButtonText,
		UserIdentifier:              model.UserIdentifier,
		UserIdentifierParameter:     model.UserIdentifierParameter,
		AuthenticationEndpoint:      model.AuthenticationEndpoint,
		ClientID:                    model.ClientID,
		HasClientSecret:             model.ClientSecret != "",
		AuthenticationUsername:      model.AuthenticationUsername,
		HasPassword:                 model.AuthenticationPassword != "",
		HasAPIKey:                   model.APIKey != "",
		GraderEndpoint:              model.GraderEndpoint,
		HTTPMethod:                  model.HTTPMethod,
		ActivityIdentifier:          model.ActivityIdentifier,
		ActivityIdentifierParameter: model.ActivityIdentifierParameter,
		ExtraParams:                 model.ExtraParams,
		CreatedAt:                   model.CreatedAt,
		UpdatedAt:                   model.UpdatedAt,
	}
}

// FieldSchema describes one editable block field for the authoring UI.
type FieldSchema struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	Help        string        `json:"help"`
	Default     string        `json:"default"`
	Values      []FieldChoice `json:"values,omitempty"`
	Secret      bool          `json:"secret,omitempty"`
}

// FieldChoice is one allowed value of an enumerated field.
type FieldChoice struct {
	DisplayName string `json:"display_name"`
	Value       string `json:"value"`
}

// BlockFieldSchema is the static metadata table behind the authoring editor.
// The grade-fetch core never reads it.
var BlockFieldSchema = []FieldSchema{
	{Name: "display_name", DisplayName: "Display Name", Help: "Display name for this module", Default: "Grade Fetcher"},
	{Name: "description", DisplayName: "Description", Help: "Description to show to the users", Default: "Description"},
	{Name: "button_text", DisplayName: "Button text", Help: "Text to show for the button", Default: "Grade Me"},
	{
		Name:        "user_identifier",
		DisplayName: "User Identifier",
		Help:        "This is the parameter we send to the grader to identify the user",
		Default:     "email",
		Values: []FieldChoice{
			{DisplayName: "email", Value: "email"},
			{DisplayName: "username", Value: "username"},
			{DisplayName: "user_id", Value: "user_id"},
			{DisplayName: "anonymous_student_id", Value: "anonymous_student_id"},
		},
	},
	{
		Name:        "user_identifier_parameter",
		DisplayName: "User identifier parameter name",
		Help:        "Query parameter name used to send the user identifier to the grader system",
		Default:     "email",
	},
	{Name: "authentication_endpoint", DisplayName: "Authentication Endpoint", Help: "The endpoint that gives us an authorized token"},
	{Name: "client_id", DisplayName: "Client ID", Help: "OAuth2 client id for the authentication endpoint"},
	{Name: "client_secret", DisplayName: "Client Secret", Help: "OAuth2 client secret for the authentication endpoint", Secret: true},
	{Name: "authentication_username", DisplayName: "Authentication Username", Help: "Resource-owner username for the password grant"},
	{Name: "authentication_password", DisplayName: "Authentication Password", Help: "Resource-owner password for the password grant", Secret: true},
	{Name: "api_key", DisplayName: "API Key", Help: "Optional x-api-key header value for the grader call", Secret: true},
	{Name: "grader_endpoint", DisplayName: "Grader Endpoint", Help: "Endpoint we call with parameters to get the user's score"},
	{
		Name:        "http_method",
		DisplayName: "HTTP call method",
		Help:        "Method we should use to call the grader endpoint",
		Default:     "get",
		Values: []FieldChoice{
			{DisplayName: "get", Value: "get"},
			{DisplayName: "post", Value: "post"},
		},
	},
	{Name: "activity_identifier", DisplayName: "Activity Identifier", Help: "An identifier sent to the grader to recognize the activity's unit"},
	{Name: "activity_identifier_parameter", DisplayName: "Activity identifier parameter name", Help: "Query parameter name used to send the activity identifier", Default: "unit_id"},
	{
		Name:        "extra_params",
		DisplayName: "Extra Parameters",
		Help:        "Additional query parameters as key=value pairs joined by &. Must not start with &. If blank, extra parameters are omitted from the url.",
	},
}
