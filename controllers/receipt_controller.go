package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bit2424/LunchLog/entity"
	"github.com/bit2424/LunchLog/pkg/resp"
	"github.com/bit2424/LunchLog/services"
	"github.com/bit2424/LunchLog/utils"
)

type ReceiptController struct {
	Service *services.ReceiptService
}

func NewReceiptController(s *services.ReceiptService) *ReceiptController {
	return &ReceiptController{Service: s}
}

type CreateReceiptReq struct {
	Date           string `json:"date" binding:"required"` // YYYY-MM-DD
	Price          int64  `json:"price" binding:"required,min=1"`
	ImageURL       string `json:"imageUrl"`
	RestaurantID   uint   `json:"restaurantId"`
	RestaurantName string `json:"restaurantName"`
	Address        string `json:"address"`
}

type ReceiptResponse struct {
	ID         uint               `json:"id"`
	Date       string             `json:"date"`
	Price      int64              `json:"price"`
	ImageURL   string             `json:"imageUrl,omitempty"`
	Restaurant RestaurantResponse `json:"restaurant"`
	CreatedAt  time.Time          `json:"createdAt"`
}

func (ctl *ReceiptController) Create(c *gin.Context) {
	uid := utils.CurrentUserID(c)

	var req CreateReceiptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		resp.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	receipt, err := ctl.Service.Create(uid, services.CreateReceiptReq{
		Date:           date,
		Price:          req.Price,
		ImageURL:       req.ImageURL,
		RestaurantID:   req.RestaurantID,
		RestaurantName: req.RestaurantName,
		Address:        req.Address,
	})
	if err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	resp.Created(c, mapToReceiptResponse(receipt))
}

func (ctl *ReceiptController) List(c *gin.Context) {
	uid := utils.CurrentUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	receipts, err := ctl.Service.ListForUser(uid, limit)
	if err != nil {
		resp.ServerError(c, err)
		return
	}

	items := make([]ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		items = append(items, mapToReceiptResponse(&receipts[i]))
	}
	resp.OK(c, gin.H{"items": items})
}

func (ctl *ReceiptController) Detail(c *gin.Context) {
	uid := utils.CurrentUserID(c)
	id, _ := strconv.Atoi(c.Param("id"))

	receipt, err := ctl.Service.GetForUser(uint(id), uid)
	if err != nil {
		if errors.Is(err, services.ErrReceiptNotFound) {
			resp.NotFound(c, "receipt not found")
			return
		}
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, mapToReceiptResponse(receipt))
}

func mapToReceiptResponse(r *entity.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:         r.ID,
		Date:       r.Date.Format("2006-01-02"),
		Price:      r.Price,
		ImageURL:   r.ImageURL,
		Restaurant: mapToRestaurantResponse(&r.Restaurant),
		CreatedAt:  r.CreatedAt,
	}
}
