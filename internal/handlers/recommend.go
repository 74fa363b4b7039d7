package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"github.com/branchmove/branch-service/internal/advisor"
	"github.com/branchmove/branch-service/internal/branch"
)

// Recommender produces branch recommendations
type Recommender interface {
	Recommend(ctx context.Context, req advisor.Request) (*advisor.Result, error)
	ProviderName() string
}

// RecommendRequest is the recommendation request body
type RecommendRequest struct {
	Region          string   `json:"region" binding:"required"`
	CurrentLocation string   `json:"currentLocation" binding:"required"`
	Priorities      []string `json:"priorities" binding:"omitempty,max=9,unique,dive,criterion"`
}

// recommendPayload decodes the body without binding rules so values can be
// trimmed before validation.
type recommendPayload struct {
	Region          string   `json:"region"`
	CurrentLocation string   `json:"currentLocation"`
	Priorities      []string `json:"priorities"`
}

// normalize trims every field; validation runs on the trimmed values.
func (r *RecommendRequest) normalize() {
	r.Region = branch.NormalizeName(r.Region)
	r.CurrentLocation = branch.NormalizeName(r.CurrentLocation)
	for i, p := range r.Priorities {
		r.Priorities[i] = branch.NormalizeName(p)
	}
}

func (r *RecommendRequest) toAdvisorRequest() advisor.Request {
	priorities := make([]branch.Criterion, len(r.Priorities))
	for i, p := range r.Priorities {
		priorities[i] = branch.Criterion(p)
	}
	return advisor.Request{
		Region:          r.Region,
		CurrentLocation: r.CurrentLocation,
		Priorities:      priorities,
	}
}

// RecommendResponse is the recommendation result
type RecommendResponse struct {
	Pick      string `json:"pick"`
	Rationale string `json:"rationale"`
	Nearest   string `json:"nearest"`
	Degraded  bool   `json:"degraded"`
	Stage     string `json:"stage,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

var recommender Recommender

// InitRecommender sets the recommender used by the handlers
// This should be called during application startup
func InitRecommender(r Recommender) {
	recommender = r
}

// Recommend handles branch recommendation requests
// @Summary Recommend a branch
// @Description Ranks the eligible branches near the customer's current branch by preference and distance, then asks the configured AI provider to pick one. Falls back to the nearest eligible branch when the provider is unavailable.
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body RecommendRequest true "Recommendation request"
// @Success 200 {object} RecommendResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/recommendations [post]
func Recommend(c *gin.Context) {
	if recommender == nil {
		abortWithError(c, http.StatusInternalServerError, CodeInternal, "recommender not initialized")
		return
	}

	var payload recommendPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, CodeInvalidRequest, "request body must be a JSON object: "+err.Error())
		return
	}
	req := RecommendRequest(payload)
	req.normalize()
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		code, message := validationCode(err)
		badRequest(c, code, message)
		return
	}

	result, err := recommender.Recommend(c.Request.Context(), req.toAdvisorRequest())
	if err != nil {
		switch {
		case errors.Is(err, advisor.ErrNotFound):
			abortWithError(c, http.StatusNotFound, CodeNotFound, "current location not found")
		case errors.Is(err, advisor.ErrDataSource):
			log.Error().Err(err).Msg("Branch data source failed")
			abortWithError(c, http.StatusInternalServerError, CodeDataSource, "branch data could not be loaded")
		default:
			log.Error().Err(err).Msg("Recommendation failed")
			abortWithError(c, http.StatusInternalServerError, CodeInternal, "an internal server error occurred")
		}
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Pick:      result.Pick,
		Rationale: result.Rationale,
		Nearest:   result.Nearest,
		Degraded:  result.Degraded,
		Stage:     string(result.Stage),
		Provider:  result.Provider,
	})
}
