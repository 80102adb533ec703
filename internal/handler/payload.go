package handler

import "time"

type signUpRequest struct {
	Username string `json:"username" validate:"required,min=2,max=20,alphanum"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type verifyAccountRequest struct {
	Username string `json:"username" validate:"required"`
	Code     string `json:"code"     validate:"required,len=6,numeric"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type tokensResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type sendMessageRequest struct {
	Username string `json:"username" validate:"required"`
	Content  string `json:"content"  validate:"required"`
}

type setAcceptingRequest struct {
	AcceptMessages *bool `json:"acceptMessages" validate:"required"`
}

type acceptingResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	IsAcceptingMessage bool   `json:"isAcceptingMessage"`
}

type messageItem struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type listMessagesResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Messages []messageItem `json:"messages"`
}

type suggestResponse struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Questions []string `json:"questions"`
}
