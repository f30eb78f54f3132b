package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/cbsr/biobank/internal/domain"
)

func (h *Handler) handleListStudies(c echo.Context) error {
	q, err := listQuery(c)
	if err != nil {
		return err
	}
	page, err := h.svc.Studies.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *Handler) handleStudyNames(c echo.Context) error {
	q, err := listQuery(c)
	if err != nil {
		return err
	}
	names, err := h.svc.Studies.Names(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return ok(c, names)
}

func (h *Handler) handleGetStudy(c echo.Context) error {
	st, err := h.svc.Studies.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, st)
}

func (h *Handler) handleAddStudy(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	st, err := h.svc.Studies.Add(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return ok(c, st)
}

func (h *Handler) handleStudyName(c echo.Context) error {
	var req struct {
		change
		Name string `json:"name"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	st, err := h.svc.Studies.UpdateName(c.Request().Context(), c.Param("id"), expected, req.Name)
	if err != nil {
		return err
	}
	return ok(c, st)
}

func (h *Handler) handleStudyDescription(c echo.Context) error {
	var req struct {
		change
		Description string `json:"description"`
	}
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	st, err := h.svc.Studies.UpdateDescription(c.Request().Context(), c.Param("id"), expected, req.Description)
	if err != nil {
		return err
	}
	return ok(c, st)
}

type annotationTypeChange struct {
	change
	domain.AnnotationType
}

func (h *Handler) handleAddStudyAnnotationType(c echo.Context) error {
	var req annotationTypeChange
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	st, err := h.svc.Studies.AddAnnotationType(c.Request().Context(), c.Param("id"), expected, req.AnnotationType)
	if err != nil {
		return err
	}
	return ok(c, st)
}

func (h *Handler) handleUpdateStudyAnnotationType(c echo.Context) error {
	var req annotationTypeChange
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	req.UniqueID = c.Param("uniqueId")
	st, err := h.svc.Studies.UpdateAnnotationType(c.Request().Context(), c.Param("id"), expected, req.AnnotationType)
	if err != nil {
		return err
	}
	return ok(c, st)
}

func (h *Handler) handleRemoveStudyAnnotationType(c echo.Context) error {
	version, err := versionParam(c)
	if err != nil {
		return err
	}
	st, err := h.svc.Studies.RemoveAnnotationType(c.Request().Context(), c.Param("id"), version, c.Param("uniqueId"))
	if err != nil {
		return err
	}
	return ok(c, st)
}

func (h *Handler) handleStudyState(action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req change
		expected, err := bindChange(c, &req)
		if err != nil {
			return err
		}
		st, err := h.svc.Studies.ChangeState(c.Request().Context(), c.Param("id"), expected, action)
		if err != nil {
			return err
		}
		return ok(c, st)
	}
}

func (h *Handler) handleStudyLocations(c echo.Context) error {
	locs, err := h.svc.Studies.AllLocations(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, locs)
}

// handleGetCeventTypes lists the study's collection event types, or returns
// the one named by the cetId query parameter.
func (h *Handler) handleGetCeventTypes(c echo.Context) error {
	ctx := c.Request().Context()
	if id := c.QueryParam("cetId"); id != "" {
		cet, err := h.svc.CeventTypes.Get(ctx, c.Param("studyId"), id)
		if err != nil {
			return err
		}
		return ok(c, cet)
	}
	list, err := h.svc.CeventTypes.List(ctx, c.Param("studyId"))
	if err != nil {
		return err
	}
	return ok(c, list)
}

type ceventTypeRequest struct {
	change
	StudyID     string `json:"studyId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Recurring   bool   `json:"recurring"`
}

func (h *Handler) handleAddCeventType(c echo.Context) error {
	var req ceventTypeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	cet, err := h.svc.CeventTypes.Add(c.Request().Context(), c.Param("studyId"), req.Name, req.Description, req.Recurring)
	if err != nil {
		return err
	}
	return ok(c, cet)
}

func (h *Handler) handleCeventTypeName(c echo.Context) error {
	var req ceventTypeRequest
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	cet, err := h.svc.CeventTypes.UpdateName(c.Request().Context(), req.StudyID, c.Param("id"), expected, req.Name)
	if err != nil {
		return err
	}
	return ok(c, cet)
}

func (h *Handler) handleCeventTypeDescription(c echo.Context) error {
	var req ceventTypeRequest
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	cet, err := h.svc.CeventTypes.UpdateDescription(c.Request().Context(), req.StudyID, c.Param("id"), expected, req.Description)
	if err != nil {
		return err
	}
	return ok(c, cet)
}

func (h *Handler) handleCeventTypeRecurring(c echo.Context) error {
	var req ceventTypeRequest
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	cet, err := h.svc.CeventTypes.UpdateRecurring(c.Request().Context(), req.StudyID, c.Param("id"), expected, req.Recurring)
	if err != nil {
		return err
	}
	return ok(c, cet)
}

type ceventAnnotationTypeRequest struct {
	change
	StudyID string `json:"studyId"`
	domain.AnnotationType
}

func (h *Handler) handleAddCeventAnnotationType(c echo.Context) error {
	var req ceventAnnotationTypeRequest
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	cet, err := h.svc.CeventTypes.AddAnnotationType(c.Request().Context(), req.StudyID, c.Param("id"), expected, req.AnnotationType)
	if err != nil {
		return err
	}
	return ok(c, cet)
}

func (h *Handler) handleUpdateCeventAnnotationType(c echo.Context) error {
	var req ceventAnnotationTypeRequest
	expected, err := bindChange(c, &req)
	if err != nil {
		return err
	}
	req.UniqueID = c.Param("uniqueId")
	cet, err := h.svc.CeventTypes.UpdateAnnotationType(c.Request().Context(), req.StudyID, c.Param("id"), expected, req.AnnotationType)
	if err != nil {
		return err
	}
	return ok(c, cet)
}

func (h *Handler) handleRemoveCeventAnnotationType(c echo.Context) error {
	version, err := versionParam(c)
	if err != nil {
		return err
	}
	cet, err := h.svc.CeventTypes.RemoveAnnotationType(c.Request().Context(), c.Param("id"), version, c.Param("uniqueId"))
	if err != nil {
		return err
	}
	return ok(c, cet)
}

func (h *Handler) handleRemoveCeventType(c echo.Context) error {
	version, err := versionParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.CeventTypes.Remove(c.Request().Context(), c.Param("studyId"), c.Param("id"), version); err != nil {
		return err
	}
	return ok(c, true)
}
