package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/distribucion-api/internal/application/distribution"
	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
)

// DistributionHandler expone las tres operaciones del motor de reconciliación
// (protegido). Toda la lógica vive en el caso de uso; aquí solo se adapta
// request/response y se mapean los errores de dominio a códigos HTTP.
type DistributionHandler struct {
	uc *distribution.ReconcileUseCase
}

// NewDistributionHandler construye el handler.
func NewDistributionHandler(uc *distribution.ReconcileUseCase) *DistributionHandler {
	return &DistributionHandler{uc: uc}
}

// AcceptBatch acepta el lote completo referenciado en el cuerpo.
func (h *DistributionHandler) AcceptBatch(c *fiber.Ctx) error {
	ref, reason, errResp := parseBatchRef(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*errResp)
	}
	result, err := h.uc.AcceptBatch(c.Context(), ref, GetActor(c), reason, requestMeta(c))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.BatchResultResponse{BatchID: result.BatchID, Count: result.Count})
}

// RejectBatch rechaza el lote completo referenciado en el cuerpo.
func (h *DistributionHandler) RejectBatch(c *fiber.Ctx) error {
	ref, reason, errResp := parseBatchRef(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*errResp)
	}
	result, err := h.uc.RejectBatch(c.Context(), ref, GetActor(c), reason, requestMeta(c))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.BatchResultResponse{BatchID: result.BatchID, Count: result.Count})
}

// CancelPending cancela una línea aún pendiente (borrado compensatorio).
func (h *DistributionHandler) CancelPending(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.uc.CancelPending(c.Context(), id, GetActor(c), requestMeta(c)); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "distribución cancelada"})
}

// parseBatchRef arma la referencia del lote desde el cuerpo del request.
func parseBatchRef(c *fiber.Ctx) (distribution.BatchRef, string, *dto.ErrorResponse) {
	var in dto.BatchRefRequest
	if err := c.BodyParser(&in); err != nil {
		return distribution.BatchRef{}, "", &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	ref := distribution.BatchRef{
		DistributionID:      in.DistributionID,
		DestinationTenantID: in.DestinationTenantID,
		InitiatorID:         in.InitiatorID,
	}
	if in.Date != "" {
		day, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return distribution.BatchRef{}, "", &dto.ErrorResponse{Code: "VALIDATION", Message: "date debe ser YYYY-MM-DD"}
		}
		ref.Date = day
	}
	return ref, in.Reason, nil
}

func requestMeta(c *fiber.Ctx) distribution.RequestMeta {
	return distribution.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrAlreadyProcessed), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado o ya procesado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
