package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/cbsr/biobank/internal/domain"
)

func (h *Handler) handleListShipments(c echo.Context) error {
	q, err := listQuery(c)
	if err != nil {
		return err
	}
	page, err := h.svc.Shipments.List(c.Request().Context(), c.Param("centreId"), q)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *Handler) handleGetShipment(c echo.Context) error {
	sh, err := h.svc.Shipments.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, sh)
}

func (h *Handler) handleAddShipment(c echo.Context) error {
	var req struct {
		CourierName    string `json:"courierName"`
		TrackingNumber string `json:"trackingNumber"`
		FromLocationID string `json:"fromLocationId"`
		ToLocationID   string `json:"toLocationId"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	sh, err := h.svc.Shipments.Add(c.Request().Context(), req.CourierName, req.TrackingNumber, req.FromLocationID, req.ToLocationID)
	if err != nil {
		return err
	}
	return ok(c, sh)
}

func (h *Handler) handleShipmentCourier(c echo.Context) error {
	var req struct {
		change
		CourierName string `json:"courierName"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	sh, err := h.svc.Shipments.UpdateCourierName(c.Request().Context(), c.Param("id"), expected, req.CourierName)
	if err != nil {
		return err
	}
	return ok(c, sh)
}

func (h *Handler) handleShipmentTrackingNumber(c echo.Context) error {
	var req struct {
		change
		TrackingNumber string `json:"trackingNumber"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	sh, err := h.svc.Shipments.UpdateTrackingNumber(c.Request().Context(), c.Param("id"), expected, req.TrackingNumber)
	if err != nil {
		return err
	}
	return ok(c, sh)
}

type locationRequest struct {
	change
	LocationID string `json:"locationId"`
}

func (h *Handler) handleShipmentFromLocation(c echo.Context) error {
	var req locationRequest
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	sh, err := h.svc.Shipments.UpdateFromLocation(c.Request().Context(), c.Param("id"), expected, req.LocationID)
	if err != nil {
		return err
	}
	return ok(c, sh)
}

func (h *Handler) handleShipmentToLocation(c echo.Context) error {
	var req locationRequest
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	sh, err := h.svc.Shipments.UpdateToLocation(c.Request().Context(), c.Param("id"), expected, req.LocationID)
	if err != nil {
		return err
	}
	return ok(c, sh)
}

func (h *Handler) handleShipmentState(c echo.Context) error {
	var req struct {
		change
		NewState domain.ShipmentState `json:"newState"`
		Datetime string               `json:"datetime"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	at, err := timeValue(req.Datetime)
	if err != nil {
		return err
	}
	sh, err := h.svc.Shipments.ChangeState(c.Request().Context(), c.Param("id"), expected, req.NewState, at)
	if err != nil {
		return err
	}
	return ok(c, sh)
}

func (h *Handler) handleRemoveShipment(c echo.Context) error {
	version, err := versionParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Shipments.Remove(c.Request().Context(), c.Param("id"), version); err != nil {
		return err
	}
	return ok(c, true)
}
