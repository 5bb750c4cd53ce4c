package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"movecaixa/internal/config"
	"movecaixa/internal/dto"
	"movecaixa/internal/model"
	"movecaixa/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrCredenciaisInvalidas = errors.New("matrícula ou senha inválida")
	ErrMatriculaEmUso       = errors.New("já existe uma conta para esta matrícula")
)

type AuthService interface {
	Registrar(ctx context.Context, req dto.RegistrarRequest) (*dto.UsuarioResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	AlterarSenha(ctx context.Context, usuarioID uuid.UUID, senhaAtual, novaSenha string) error
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// Registrar creates a recebedor account. The login address is synthesized
// from the matrícula; the admin flag comes from the configured allow-list.
func (s *authService) Registrar(ctx context.Context, req dto.RegistrarRequest) (*dto.UsuarioResponse, error) {
	matricula := strings.TrimSpace(req.Matricula)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), 12)
	if err != nil {
		return nil, err
	}
	usuario := &model.Usuario{
		Matricula: matricula,
		Nome:      strings.TrimSpace(req.Nome),
		Email:     fmt.Sprintf("%s@%s", matricula, s.cfg.EmailDominio),
		SenhaHash: string(hash),
		Admin:     s.cfg.IsAdminMatricula(matricula),
	}
	if err := s.repo.Create(ctx, usuario); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrMatriculaEmUso
		}
		return nil, err
	}
	return usuarioResponse(usuario), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	usuario, err := s.repo.FindByMatricula(ctx, strings.TrimSpace(req.Matricula))
	if err != nil {
		return nil, ErrCredenciaisInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.SenhaHash), []byte(req.Senha)); err != nil {
		return nil, ErrCredenciaisInvalidas
	}

	// Post-hoc promotion: the allow-list may have gained this matrícula
	// after the account was created.
	if s.cfg.IsAdminMatricula(usuario.Matricula) && !usuario.Admin {
		usuario.Admin = true
		if err := s.repo.Update(ctx, usuario); err != nil {
			return nil, err
		}
	}

	token, err := s.generateToken(usuario)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User:        *usuarioResponse(usuario),
	}, nil
}

// AlterarSenha swaps the password only after re-proving knowledge of the
// current one; a stolen session token alone cannot lock the owner out.
func (s *authService) AlterarSenha(ctx context.Context, usuarioID uuid.UUID, senhaAtual, novaSenha string) error {
	usuario, err := s.repo.FindByID(ctx, usuarioID)
	if err != nil {
		return errors.New("usuário não encontrado")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.SenhaHash), []byte(senhaAtual)); err != nil {
		return ErrCredenciaisInvalidas
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(novaSenha), 12)
	if err != nil {
		return err
	}
	usuario.SenhaHash = string(hash)
	return s.repo.Update(ctx, usuario)
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	usuarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(usuarios))
	for i, u := range usuarios {
		resp[i] = *usuarioResponse(&u)
	}
	return resp, nil
}

func (s *authService) generateToken(u *model.Usuario) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   u.ID.String(),
		"matricula": u.Matricula,
		"nome":      u.Nome,
		"admin":     u.Admin,
		"exp":       time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":       time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioResponse(u *model.Usuario) *dto.UsuarioResponse {
	return &dto.UsuarioResponse{
		ID:        u.ID.String(),
		Matricula: u.Matricula,
		Nome:      u.Nome,
		Email:     u.Email,
		Admin:     u.Admin,
	}
}
