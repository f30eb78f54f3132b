package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/cbsr/biobank/internal/domain"
)

func (h *Handler) handleListCentres(c echo.Context) error {
	q, err := listQuery(c)
	if err != nil {
		return err
	}
	page, err := h.svc.Centres.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *Handler) handleGetCentre(c echo.Context) error {
	centre, err := h.svc.Centres.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, centre)
}

func (h *Handler) handleAddCentre(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	centre, err := h.svc.Centres.Add(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return ok(c, centre)
}

func (h *Handler) handleCentreName(c echo.Context) error {
	var req struct {
		change
		Name string `json:"name"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	centre, err := h.svc.Centres.UpdateName(c.Request().Context(), c.Param("id"), expected, req.Name)
	if err != nil {
		return err
	}
	return ok(c, centre)
}

func (h *Handler) handleCentreDescription(c echo.Context) error {
	var req struct {
		change
		Description string `json:"description"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	centre, err := h.svc.Centres.UpdateDescription(c.Request().Context(), c.Param("id"), expected, req.Description)
	if err != nil {
		return err
	}
	return ok(c, centre)
}

func (h *Handler) handleCentreState(action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req change
		expected, err := bindChange(c, &req)
		if err != nil {
			return err
		}
		centre, err := h.svc.Centres.ChangeState(c.Request().Context(), c.Param("id"), expected, action)
		if err != nil {
			return err
		}
		return ok(c, centre)
	}
}

func (h *Handler) handleSearchLocations(c echo.Context) error {
	var req struct {
		Filter string `json:"filter"`
		Limit  int    `json:"limit"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	locs, err := h.svc.Centres.SearchLocations(c.Request().Context(), req.Filter, req.Limit)
	if err != nil {
		return err
	}
	return ok(c, locs)
}

type locationChange struct {
	change
	domain.Location
}

func (h *Handler) handleAddLocation(c echo.Context) error {
	var req locationChange
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	centre, err := h.svc.Centres.AddLocation(c.Request().Context(), c.Param("id"), expected, req.Location)
	if err != nil {
		return err
	}
	return ok(c, centre)
}

func (h *Handler) handleUpdateLocation(c echo.Context) error {
	var req locationChange
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	req.UniqueID = c.Param("uniqueId")
	centre, err := h.svc.Centres.UpdateLocation(c.Request().Context(), c.Param("id"), expected, req.Location)
	if err != nil {
		return err
	}
	return ok(c, centre)
}

func (h *Handler) handleRemoveLocation(c echo.Context) error {
	version, err := versionParam(c)
	if err != nil {
		return err
	}
	centre, err := h.svc.Centres.RemoveLocation(c.Request().Context(), c.Param("id"), version, c.Param("uniqueId"))
	if err != nil {
		return err
	}
	return ok(c, centre)
}

func (h *Handler) handleAddCentreStudy(c echo.Context) error {
	var req struct {
		change
		StudyID string `json:"studyId"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	centre, err := h.svc.Centres.AddStudy(c.Request().Context(), c.Param("id"), expected, req.StudyID)
	if err != nil {
		return err
	}
	return ok(c, centre)
}

func (h *Handler) handleRemoveCentreStudy(c echo.Context) error {
	version, err := versionParam(c)
	if err != nil {
		return err
	}
	centre, err := h.svc.Centres.RemoveStudy(c.Request().Context(), c.Param("id"), version, c.Param("studyId"))
	if err != nil {
		return err
	}
	return ok(c, centre)
}
