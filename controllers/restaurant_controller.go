package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bit2424/LunchLog/entity"
	"github.com/bit2424/LunchLog/pkg/resp"
	"github.com/bit2424/LunchLog/repository"
	"github.com/bit2424/LunchLog/services"
)

type RestaurantController struct {
	Repo  *repository.RestaurantRepository
	Tasks services.Enqueuer
}

func NewRestaurantController(repo *repository.RestaurantRepository, tasks services.Enqueuer) *RestaurantController {
	return &RestaurantController{Repo: repo, Tasks: tasks}
}

type RestaurantResponse struct {
	ID             uint     `json:"id"`
	PlaceID        string   `json:"placeId"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	PriceLevel     *int     `json:"priceLevel,omitempty"`
	BusinessStatus string   `json:"businessStatus,omitempty"`
	Cuisines       []string `json:"cuisines"`
	Stub           bool     `json:"stub"`
}

func (ctl *RestaurantController) List(c *gin.Context) {
	rests, err := ctl.Repo.FindAll()
	if err != nil {
		resp.ServerError(c, err)
		return
	}

	items := make([]RestaurantResponse, 0, len(rests))
	for i := range rests {
		items = append(items, mapToRestaurantResponse(&rests[i]))
	}
	resp.OK(c, gin.H{"items": items})
}

func (ctl *RestaurantController) Detail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	r, err := ctl.Repo.FindByID(uint(id))
	if err != nil {
		resp.NotFound(c, "restaurant not found")
		return
	}
	resp.OK(c, mapToRestaurantResponse(r))
}

// Refresh enqueues an enrichment pass for the restaurant, the manual-retry path
// for stubs whose resolution previously failed.
func (ctl *RestaurantController) Refresh(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	r, err := ctl.Repo.FindByID(uint(id))
	if err != nil {
		resp.NotFound(c, "restaurant not found")
		return
	}

	task, err := ctl.Tasks.Enqueue(r.ID)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"taskId": task.ID, "status": task.Status})
}

func mapToRestaurantResponse(r *entity.Restaurant) RestaurantResponse {
	cuisines := make([]string, 0, len(r.Cuisines))
	for _, cu := range r.Cuisines {
		cuisines = append(cuisines, cu.Name)
	}
	return RestaurantResponse{
		ID:             r.ID,
		PlaceID:        r.PlaceID,
		Name:           r.Name,
		Address:        r.Address,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Rating:         r.Rating,
		PriceLevel:     r.PriceLevel,
		BusinessStatus: r.BusinessStatus,
		Cuisines:       cuisines,
		Stub:           r.IsStub(),
	}
}
