package flags_module

import (
	"net/http"

	"emperror.dev/errors"
	"github.com/ethanbaker/flagdash/pkg/flags"
	"github.com/ethanbaker/flagdash/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// Controller serves the flag endpoints from a FlagService
type Controller struct {
	service *FlagService
}

// NewController creates a controller for the given service
func NewController(service *FlagService) *Controller {
	return &Controller{service: service}
}

// ListFlags handles GET /flags
func (ctl *Controller) ListFlags(c *gin.Context) {
	filter, details := parseListQuery(c)
	if len(details) > 0 {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, sdk.CodeValidation, "Query parameters failed validation", details...).AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, ctl.service.List(filter))
}

// GetFlag handles GET /flags/:id
func (ctl *Controller) GetFlag(c *gin.Context) {
	id, details := parseID(c)
	if details != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, sdk.CodeValidation, "Path parameters failed validation", details...).AsGinResponse())
		return
	}

	f, err := ctl.service.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(sdk.NewDataResponse(http.StatusOK, f).AsGinResponse())
}

// CreateFlag handles POST /flags
func (ctl *Controller) CreateFlag(c *gin.Context) {
	// Parse request body
	var req sdk.CreateFlagRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, sdk.CodeValidation, "Request body failed validation", validationDetails(err)...).AsGinResponse())
		return
	}

	f, err := ctl.service.Create(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(sdk.NewDataResponse(http.StatusCreated, f).AsGinResponse())
}

// UpdateFlag handles PATCH /flags/:id
func (ctl *Controller) UpdateFlag(c *gin.Context) {
	id, details := parseID(c)
	if details != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, sdk.CodeValidation, "Path parameters failed validation", details...).AsGinResponse())
		return
	}

	// Parse request body
	var req sdk.UpdateFlagRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, sdk.CodeValidation, "Request body failed validation", validationDetails(err)...).AsGinResponse())
		return
	}

	f, err := ctl.service.Update(id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(sdk.NewDataResponse(http.StatusOK, f).AsGinResponse())
}

// DeleteFlag handles DELETE /flags/:id
func (ctl *Controller) DeleteFlag(c *gin.Context) {
	id, details := parseID(c)
	if details != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, sdk.CodeValidation, "Path parameters failed validation", details...).AsGinResponse())
		return
	}

	if err := ctl.service.Delete(id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleFlag handles POST /flags/:id/toggle
func (ctl *Controller) ToggleFlag(c *gin.Context) {
	id, details := parseID(c)
	if details != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, sdk.CodeValidation, "Path parameters failed validation", details...).AsGinResponse())
		return
	}

	resp, err := ctl.service.Toggle(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// writeError maps store errors onto the error envelope
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, flags.ErrNotFound):
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, sdk.CodeNotFound, "Resource not found").AsGinResponse())
	case errors.Is(err, flags.ErrDuplicateKey):
		c.JSON(sdk.NewErrorResponse(http.StatusConflict, sdk.CodeDuplicateKey, "Flag key already exists").AsGinResponse())
	default:
		_ = c.Error(err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, sdk.CodeInternal, "Internal server error").AsGinResponse())
	}
}
