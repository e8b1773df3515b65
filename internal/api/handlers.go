package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"neuromorph/adapters/stats/engine"
	"neuromorph/app"
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
	"neuromorph/internal"
	apperrors "neuromorph/internal/errors"
	"neuromorph/ports"
)

// Handler serves the comparison HTTP API
type Handler struct {
	comparisons *app.ComparisonService
	morphology  *app.MorphologyService
	repo        ports.MeasurementRepository
	log         *internal.Logger
}

// NewHandler creates a new API handler
func NewHandler(comparisons *app.ComparisonService, morphology *app.MorphologyService, repo ports.MeasurementRepository) *Handler {
	return &Handler{
		comparisons: comparisons,
		morphology:  morphology,
		repo:        repo,
		log:         internal.DefaultLogger.WithComponent("API"),
	}
}

// Register mounts the API routes on r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/compare", h.Compare)
	api.GET("/assays", h.ListAssays)
	api.GET("/assays/:id", h.GetAssay)
	api.DELETE("/assays/:id", h.DeleteAssay)
	api.GET("/assays/:id/representative", h.Representative)
	api.GET("/assays/:id/density", h.Density)
	api.GET("/assays/:id/stats", h.AssayStats)
	api.GET("/assays/:id/stats/report", h.AssayReport)
}

// NewRouter builds a gin engine with the API mounted
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h.Register(r)
	return r
}

// GroupRequest is one labeled sample in a compare request
type GroupRequest struct {
	Label  string    `json:"label" binding:"required"`
	Values []float64 `json:"values" binding:"required,min=1"`
}

// CompareRequest is the body of POST /api/compare
type CompareRequest struct {
	Groups        []GroupRequest `json:"groups" binding:"required,min=2,dive"`
	Parametric    *bool          `json:"parametric"`
	NormalityTest string         `json:"normality_test" binding:"omitempty,oneof=shapiro kstest"`
}

type statsQuery struct {
	Parameters []string `form:"parameters"`
	Conditions []string `form:"conditions"`
	Parametric *bool    `form:"parametric"`
	Normality  string   `form:"normality_test" binding:"omitempty,oneof=shapiro kstest"`
}

type representativeQuery struct {
	Parameters []string `form:"parameters"`
	Top        int      `form:"top" binding:"omitempty,min=1"`
	Normalize  *bool    `form:"normalize"`
}

type densityQuery struct {
	Area float64 `form:"area" binding:"omitempty,gt=0"`
}

func (q statsQuery) request() app.CompareRequest {
	return app.CompareRequest{
		Parameters: splitList(q.Parameters),
		Conditions: splitList(q.Conditions),
		Forced:     q.Parametric,
		Normality:  comparison.NormalityMethod(q.Normality),
	}
}

// splitList accepts both repeated and comma separated query values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperrors.CodeValidationError})
}

func assayID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assay id", "code": apperrors.CodeValidationError})
		return 0, false
	}
	return id, true
}

// Health reports service liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Compare runs one comparison over groups posted in the body
func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	groups := make([]comparison.Group, len(req.Groups))
	for i, g := range req.Groups {
		groups[i] = comparison.Group{Label: g.Label, Sample: g.Values}
	}
	gs, err := comparison.NewGroupSet(groups)
	if err != nil {
		h.fail(c, err)
		return
	}

	var opts []engine.CompareOption
	if req.NormalityTest != "" {
		opts = append(opts, engine.UsingNormality(comparison.NormalityMethod(req.NormalityTest)))
	}
	report, err := h.comparisons.Engine().CompareGroups(gs, req.Parametric, opts...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReportDTO(core.NewID().String(), report))
}

// ListAssays returns every stored assay, newest first
func (h *Handler) ListAssays(c *gin.Context) {
	assays, err := h.repo.ListAssays(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]AssayDTO, 0, len(assays))
	for _, a := range assays {
		out = append(out, newAssayDTO(a))
	}
	c.JSON(http.StatusOK, gin.H{"assays": out})
}

// GetAssay returns one assay with its stored parameters and conditions
func (h *Handler) GetAssay(c *gin.Context) {
	id, ok := assayID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	assay, err := h.repo.GetAssay(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	params, err := h.repo.Parameters(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	conds, err := h.repo.Conditions(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.repo.MeasurementCount(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assay":      newAssayDTO(*assay),
		"parameters": params,
		"conditions": conds,
		"rows":       rows,
	})
}

// AssayStats compares the selected parameters of an assay across conditions
func (h *Handler) AssayStats(c *gin.Context) {
	id, ok := assayID(c)
	if !ok {
		return
	}
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	batch, err := h.comparisons.CompareAssay(c.Request.Context(), id, q.request())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBatchDTO(core.NewID().String(), id, batch))
}

// AssayReport renders the assay comparison as an HTML page
func (h *Handler) AssayReport(c *gin.Context) {
	id, ok := assayID(c)
	if !ok {
		return
	}
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	assay, err := h.repo.GetAssay(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	batch, err := h.comparisons.CompareAssay(ctx, id, q.request())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", RenderHTML(assay.Name, batch))
}

// DeleteAssay removes an assay and its measurements
func (h *Handler) DeleteAssay(c *gin.Context) {
	id, ok := assayID(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteAssay(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Representative ranks the files of each condition by distance from the
// condition average
func (h *Handler) Representative(c *gin.Context) {
	id, ok := assayID(c)
	if !ok {
		return
	}
	q := representativeQuery{Top: 3}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	normalize := q.Normalize == nil || *q.Normalize
	res, err := h.morphology.RepresentativeFiles(c.Request.Context(), id, splitList(q.Parameters), normalize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRepresentativeDTO(id, res, q.Top))
}

// Density reports structure densities per image and condition
func (h *Handler) Density(c *gin.Context) {
	id, ok := assayID(c)
	if !ok {
		return
	}
	q := densityQuery{Area: app.DefaultImageArea}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.morphology.Density(c.Request.Context(), id, q.Area)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewDensityDTO(id, res))
}
