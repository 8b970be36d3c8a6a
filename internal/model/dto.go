package model

// DetailUnauthenticated is the reserved error detail that sends the user back
// to the login page instead of being shown as text.
const DetailUnauthenticated = "unauthenticated"

type LoginData struct {
	DisplayName string `json:"displayName"`
}

type ErrorEnvelope struct {
	Detail string `json:"detail"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

type PreferenceRequest struct {
	AccessToken string `json:"accessToken" validate:"required"`
	Meal        string `json:"meal" validate:"required"`
}
