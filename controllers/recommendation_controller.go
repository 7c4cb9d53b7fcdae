package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bit2424/LunchLog/pkg/resp"
	"github.com/bit2424/LunchLog/services"
	"github.com/bit2424/LunchLog/utils"
)

type RecommendationController struct {
	Service *services.RecommendationService
}

func NewRecommendationController(s *services.RecommendationService) *RecommendationController {
	return &RecommendationController{Service: s}
}

func parseRecommendationConfig(c *gin.Context) services.RecommendationConfig {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	radius, _ := strconv.Atoi(c.DefaultQuery("radius", "0"))
	searchLimit, _ := strconv.Atoi(c.DefaultQuery("search_limit", "0"))
	return services.RecommendationConfig{Limit: limit, Radius: radius, SearchLimit: searchLimit}
}

func (ctl *RecommendationController) respond(c *gin.Context, recs []services.Recommendation, err error) {
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidConfig):
			resp.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrUpstreamUnavailable):
			resp.UpstreamUnavailable(c, err.Error())
		default:
			resp.ServerError(c, err)
		}
		return
	}
	resp.OK(c, gin.H{"items": recs})
}

func (ctl *RecommendationController) Good(c *gin.Context) {
	uid := utils.CurrentUserID(c)
	recs, err := ctl.Service.Good(c.Request.Context(), uid, parseRecommendationConfig(c))
	ctl.respond(c, recs, err)
}

func (ctl *RecommendationController) Cheap(c *gin.Context) {
	uid := utils.CurrentUserID(c)
	recs, err := ctl.Service.Cheap(c.Request.Context(), uid, parseRecommendationConfig(c))
	ctl.respond(c, recs, err)
}

func (ctl *RecommendationController) CuisineMatch(c *gin.Context) {
	uid := utils.CurrentUserID(c)
	recs, err := ctl.Service.CuisineMatch(c.Request.Context(), uid, parseRecommendationConfig(c))
	ctl.respond(c, recs, err)
}

func (ctl *RecommendationController) All(c *gin.Context) {
	uid := utils.CurrentUserID(c)
	all, err := ctl.Service.All(c.Request.Context(), uid, parseRecommendationConfig(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidConfig):
			resp.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrUpstreamUnavailable):
			resp.UpstreamUnavailable(c, err.Error())
		default:
			resp.ServerError(c, err)
		}
		return
	}
	resp.OK(c, all)
}
