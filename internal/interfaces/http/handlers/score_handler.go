package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/domain/structure"
	"github.com/turtacn/dockrmsd/internal/infrastructure/cache/redis"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// Multipart field names of POST /api/v1/score.
const (
	FieldReference = "reference"
	FieldCandidate = "candidate"
)

// Scorer scores two parsed structures.
type Scorer interface {
	ScoreStructures(ctx context.Context, ref, cand *structure.Structure) (*scoring.Result, error)
}

// Cache memoizes scores by structure content.
type Cache interface {
	GetOrScore(ctx context.Context, ref, cand *structure.Structure, score redis.ScoreFunc) (*scoring.Result, bool, error)
}

type ScoreHandler struct {
	scorer   Scorer
	cache    Cache
	readOpts []structure.ReadOption
	logger   logging.Logger
}

type ScoreHandlerOption func(*ScoreHandler)

func WithCache(c Cache) ScoreHandlerOption {
	return func(h *ScoreHandler) { h.cache = c }
}

// WithReadOptions applies opts when parsing uploads.
func WithReadOptions(opts ...structure.ReadOption) ScoreHandlerOption {
	return func(h *ScoreHandler) { h.readOpts = append(h.readOpts, opts...) }
}

func NewScoreHandler(scorer Scorer, logger logging.Logger, opts ...ScoreHandlerOption) *ScoreHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &ScoreHandler{scorer: scorer, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ScoreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/score", h.Score)
}

// Score handles POST /api/v1/score. The form carries the two MOL2 files;
// ?mapping=true adds the atom correspondence to the response.
func (h *ScoreHandler) Score(c *gin.Context) {
	withMapping := false
	if v := c.Query("mapping"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeAppError(c, h.logger, errors.InvalidParam(fmt.Sprintf("mapping must be a boolean, got %q", v)))
			return
		}
		withMapping = b
	}

	ref, err := h.readPart(c, FieldReference)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	cand, err := h.readPart(c, FieldCandidate)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	score := func(ctx context.Context) (*scoring.Result, error) {
		return h.scorer.ScoreStructures(ctx, ref, cand)
	}

	var (
		res    *scoring.Result
		cached bool
	)
	if h.cache != nil {
		res, cached, err = h.cache.GetOrScore(ctx, ref, cand, score)
	} else {
		res, err = score(ctx)
	}
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}

	resp := res.Response(withMapping)
	resp.Cached = cached
	writeSuccess(c, http.StatusOK, resp)
}

func (h *ScoreHandler) readPart(c *gin.Context, field string) (*structure.Structure, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.InvalidParam("request body too large").WithDetail(fmt.Sprintf("limit=%d", tooLarge.Limit))
		}
		return nil, errors.InvalidParam(fmt.Sprintf("multipart file %q is required", field))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.NewParseError(fh.Filename, 0, "failed to open upload", err)
	}
	defer f.Close()

	return structure.Read(f, fh.Filename, h.readOpts...)
}

//Personal.AI order the ending
