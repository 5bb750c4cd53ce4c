package handler

import (
	"errors"
	"net/http"

	"movecaixa/internal/apierror"
	"movecaixa/internal/dto"
	"movecaixa/internal/middleware"
	"movecaixa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Registrar godoc
// @Summary Registra um novo recebedor
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegistrarRequest true "Dados do recebedor"
// @Success 201 {object} dto.UsuarioResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/auth/registrar [post]
func (h *AuthHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrMatriculaEmUso) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Login por matrícula e senha
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciais"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(service.ErrCredenciaisInvalidas.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AlterarSenha godoc
// @Summary Altera a senha do usuário autenticado
// @Tags auth
// @Accept json
// @Security BearerAuth
// @Param body body dto.AlterarSenhaRequest true "Senha atual e nova senha"
// @Success 204
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/senha [post]
func (h *AuthHandler) AlterarSenha(c *gin.Context) {
	var req dto.AlterarSenhaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	if err := h.svc.AlterarSenha(c.Request.Context(), usuarioID, req.SenhaAtual, req.NovaSenha); err != nil {
		if errors.Is(err, service.ErrCredenciaisInvalidas) {
			c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// Listar godoc
// @Summary Lista os recebedores cadastrados (somente admin)
// @Tags usuarios
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UsuarioResponse
// @Router /v1/usuarios [get]
func (h *UsuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar usuários"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
