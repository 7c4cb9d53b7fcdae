package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bit2424/LunchLog/pkg/resp"
	"github.com/bit2424/LunchLog/repository"
	"github.com/bit2424/LunchLog/utils"
)

type ProfileController struct {
	Repo *repository.StatsRepository
}

func NewProfileController(stats *repository.StatsRepository) *ProfileController {
	return &ProfileController{Repo: stats}
}

type VisitStatResponse struct {
	RestaurantID uint   `json:"restaurantId"`
	Restaurant   string `json:"restaurant"`
	VisitCount   int    `json:"visitCount"`
	LastVisit    string `json:"lastVisit"`
}

type CuisineStatResponse struct {
	Cuisine    string `json:"cuisine"`
	VisitCount int    `json:"visitCount"`
}

// Stats returns the caller's behavioral profile: most visited restaurants and
// favorite cuisines.
func (ctl *ProfileController) Stats(c *gin.Context) {
	uid := utils.CurrentUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	visits, err := ctl.Repo.TopVisits(uid, limit)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	cuisines, err := ctl.Repo.TopCuisines(uid, limit)
	if err != nil {
		resp.ServerError(c, err)
		return
	}

	visitItems := make([]VisitStatResponse, 0, len(visits))
	for _, v := range visits {
		visitItems = append(visitItems, VisitStatResponse{
			RestaurantID: v.RestaurantID,
			Restaurant:   v.Restaurant.Name,
			VisitCount:   v.VisitCount,
			LastVisit:    v.LastVisit.Format("2006-01-02"),
		})
	}
	cuisineItems := make([]CuisineStatResponse, 0, len(cuisines))
	for _, s := range cuisines {
		cuisineItems = append(cuisineItems, CuisineStatResponse{
			Cuisine:    s.Cuisine.Name,
			VisitCount: s.VisitCount,
		})
	}

	resp.OK(c, gin.H{
		"frequentRestaurants": visitItems,
		"preferredCuisines":   cuisineItems,
	})
}
