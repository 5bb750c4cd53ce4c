package handler

import (
	"net/http"

	"movecaixa/internal/apierror"
	"movecaixa/internal/dto"
	"movecaixa/internal/middleware"
	"movecaixa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre um novo caixa para o recebedor autenticado
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Dados de abertura"
// @Success 201 {object} dto.ReporteCaixaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Ativo godoc
// @Summary Consulta o caixa aberto do recebedor autenticado
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CaixaAtivoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/ativo [get]
func (h *CaixaHandler) Ativo(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.Ativo(c.Request.Context(), usuarioID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("Nenhum caixa aberto"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarLancamento godoc
// @Summary Registra um lançamento de recebimento manual no caixa aberto
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.LancamentoRequest true "Dados do lançamento"
// @Success 201 {object} dto.ReciboResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/caixa/lancamento [post]
func (h *CaixaHandler) RegistrarLancamento(c *gin.Context) {
	var req dto.LancamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	recibo, err := h.svc.RegistrarLancamento(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recibo)
}

// RegistrarSangria godoc
// @Summary Registra uma sangria (retirada de dinheiro) no caixa aberto
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SangriaRequest true "Dados da sangria"
// @Success 201
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/caixa/sangria [post]
func (h *CaixaHandler) RegistrarSangria(c *gin.Context) {
	var req dto.SangriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	if err := h.svc.RegistrarSangria(c.Request.Context(), usuarioID, req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// Fechar godoc
// @Summary Fecha o caixa e gera o relatório de fechamento
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Identificação do caixa (opcional)"
// @Success 200 {object} dto.ReporteCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), usuarioID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterReporte godoc
// @Summary Obtém o reporte (parcial ou final) de um caixa
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do caixa"
// @Success 200 {object} dto.ReporteCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/{id}/reporte [get]
func (h *CaixaHandler) ObterReporte(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de caixa inválido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.ObterReporte(c.Request.Context(), usuarioID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
