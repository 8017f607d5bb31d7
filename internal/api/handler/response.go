package handler

const statusSuccess = "success"

// userView is the public projection of an account.
type userView struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
	AvatarURL    string `json:"avatarURL,omitempty"`
}

type signupData struct {
	User userView `json:"user"`
}

type signupResponse struct {
	Status string     `json:"status"`
	Code   int        `json:"code"`
	Data   signupData `json:"data"`
}

type loginUser struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

type loginResponse struct {
	Status string    `json:"status"`
	Code   int       `json:"code"`
	Token  string    `json:"token"`
	User   loginUser `json:"user"`
}

type currentData struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

type currentResponse struct {
	Status string      `json:"status"`
	Code   int         `json:"code"`
	Data   currentData `json:"data"`
}

type subscriptionData struct {
	UpdatedStatus string `json:"updatedStatus"`
}

type subscriptionResponse struct {
	Status string           `json:"status"`
	Code   int              `json:"code"`
	Data   subscriptionData `json:"data"`
}

type avatarResponse struct {
	Status    string `json:"status"`
	Code      int    `json:"code"`
	AvatarURL string `json:"avatarURL"`
}

// ErrorResponse documents the error envelope rendered by the API error handler.
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Code    int    `json:"code" example:"400"`
	Message string `json:"message"`
}
