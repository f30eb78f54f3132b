package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/cbsr/biobank/internal/domain"
)

func (h *Handler) handleGetParticipant(c echo.Context) error {
	p, err := h.svc.Participants.Get(c.Request().Context(), c.Param("studyId"), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *Handler) handleGetParticipantByUniqueID(c echo.Context) error {
	p, err := h.svc.Participants.GetByUniqueID(c.Request().Context(), c.Param("studyId"), c.Param("uniqueId"))
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *Handler) handleAddParticipant(c echo.Context) error {
	var req struct {
		UniqueID    string                    `json:"uniqueId"`
		Annotations []domain.ServerAnnotation `json:"annotations"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	p, err := h.svc.Participants.Add(c.Request().Context(), c.Param("studyId"), req.UniqueID, req.Annotations)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *Handler) handleParticipantUniqueID(c echo.Context) error {
	var req struct {
		change
		UniqueID string `json:"uniqueId"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	p, err := h.svc.Participants.UpdateUniqueID(c.Request().Context(), c.Param("id"), expected, req.UniqueID)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *Handler) handleAddParticipantAnnotation(c echo.Context) error {
	var req struct {
		change
		domain.ServerAnnotation
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	p, err := h.svc.Participants.AddAnnotation(c.Request().Context(), c.Param("id"), expected, req.ServerAnnotation)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *Handler) handleRemoveParticipantAnnotation(c echo.Context) error {
	version, err := versionParam(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Participants.RemoveAnnotation(c.Request().Context(), c.Param("id"), version, c.Param("annotationTypeId"))
	if err != nil {
		return err
	}
	return ok(c, p)
}
