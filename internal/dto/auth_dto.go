package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarRequest struct {
	Nome      string `json:"nome"      validate:"required,min=2,max=100"`
	Matricula string `json:"matricula" validate:"required,numeric,min=1,max=20"`
	Senha     string `json:"senha"     validate:"required,min=6"`
}

type LoginRequest struct {
	Matricula string `json:"matricula" validate:"required,min=1"`
	Senha     string `json:"senha"     validate:"required,min=1"`
}

type AlterarSenhaRequest struct {
	SenhaAtual string `json:"senha_atual" validate:"required,min=1"`
	NovaSenha  string `json:"nova_senha"  validate:"required,min=6"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID        string `json:"id"`
	Matricula string `json:"matricula"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}
