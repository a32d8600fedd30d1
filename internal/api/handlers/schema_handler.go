package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/pkg/response"
)

type SchemaHandler struct {
	registry *schema.Registry
}

func NewSchemaHandler(registry *schema.Registry) *SchemaHandler {
	return &SchemaHandler{registry: registry}
}

type SchemaSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type VisibilityRequest struct {
	Values map[string]any `json:"values"`
}

type VisibilityResponse struct {
	Visible []string       `json:"visible"`
	Hidden  []string       `json:"hidden"`
	Values  map[string]any `json:"values"`
}

// ListSchemas godoc
// @Summary List form definitions
// @Tags schemas
// @Security BearerAuth
// @Produce json
// @Success 200 {array} SchemaSummary
// @Router /schemas [get]
func (h *SchemaHandler) ListSchemas(c *gin.Context) {
	defs := h.registry.List()
	out := make([]SchemaSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, SchemaSummary{ID: d.ID, Name: d.Name, Description: d.Description})
	}
	c.JSON(http.StatusOK, out)
}

// GetSchema godoc
// @Summary Get one form definition
// @Tags schemas
// @Security BearerAuth
// @Produce json
// @Param id path string true "Form definition id"
// @Success 200 {object} schema.FormDefinition
// @Failure 404 {object} response.ErrorResponse "form does not exist"
// @Router /schemas/{id} [get]
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	def, ok := h.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "form does not exist"})
		return
	}
	c.JSON(http.StatusOK, def)
}

// EvaluateVisibility godoc
// @Summary Evaluate field visibility
// @Description Returns which fields are visible for the given values and the values with hidden fields pruned.
// @Tags schemas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Form definition id"
// @Param input body VisibilityRequest true "Current values"
// @Success 200 {object} VisibilityResponse
// @Failure 400 {object} response.ErrorResponse "Invalid body"
// @Failure 404 {object} response.ErrorResponse "form does not exist"
// @Router /schemas/{id}/visibility [post]
func (h *SchemaHandler) EvaluateVisibility(c *gin.Context) {
	def, ok := h.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "form does not exist"})
		return
	}
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request body"})
		return
	}

	pruned := schema.PruneHiddenFields(def, schema.Canonicalize(def, req.Values))
	resp := VisibilityResponse{Visible: []string{}, Hidden: []string{}, Values: pruned}
	for _, f := range def.Fields {
		if schema.IsFieldVisible(f, pruned) {
			resp.Visible = append(resp.Visible, f.ID)
		} else {
			resp.Hidden = append(resp.Hidden, f.ID)
		}
	}
	c.JSON(http.StatusOK, resp)
}
