package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/branchmove/branch-service/internal/branch"
	"github.com/branchmove/branch-service/internal/store"
)

// BranchesResponse lists branches
type BranchesResponse struct {
	Branches []branch.Location `json:"branches"`
	Count    int               `json:"count"`
}

// CriteriaResponse lists the supported preference criteria
type CriteriaResponse struct {
	Criteria []branch.Criterion `json:"criteria"`
}

var branchStore store.Store

// InitStore sets the branch store used by the listing and health handlers
func InitStore(s store.Store) {
	branchStore = s
}

// ListBranches handles branch listing
// @Summary List branches
// @Description Returns every branch in the dataset, optionally restricted to one region.
// @Tags branches
// @Produce json
// @Param region query string false "Region filter"
// @Success 200 {object} BranchesResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/branches [get]
func ListBranches(c *gin.Context) {
	if branchStore == nil {
		abortWithError(c, http.StatusInternalServerError, CodeInternal, "branch store not initialized")
		return
	}

	var (
		locs []branch.Location
		err  error
	)
	if region := strings.TrimSpace(c.Query("region")); region != "" {
		locs, err = branchStore.FindByRegion(c.Request.Context(), region)
	} else {
		locs, err = branchStore.FindAll(c.Request.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to list branches")
		abortWithError(c, http.StatusInternalServerError, CodeDataSource, "branch data could not be loaded")
		return
	}

	if locs == nil {
		locs = []branch.Location{}
	}
	c.JSON(http.StatusOK, BranchesResponse{Branches: locs, Count: len(locs)})
}

// ListCriteria handles criteria listing
// @Summary List preference criteria
// @Tags branches
// @Produce json
// @Success 200 {object} CriteriaResponse
// @Router /api/criteria [get]
func ListCriteria(c *gin.Context) {
	c.JSON(http.StatusOK, CriteriaResponse{Criteria: branch.KnownCriteria()})
}
