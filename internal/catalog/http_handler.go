package catalog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/middleware"
	"github.com/VelocityMotors/VelocityMotors/internal/common/money"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HTTPHandler 目录的 REST 入口。
type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(db *gorm.DB) *HTTPHandler {
	return &HTTPHandler{svc: NewService(NewRepo(db))}
}

func NewHTTPHandlerWithService(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/cars", h.ListCars)
	r.GET("/cars/:id", h.GetCar)
}

// carView 对外车辆视图：price 以十进制金额输出（内部存分）。
type carView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	Price          decimal.Decimal `json:"price"`
	Image          string          `json:"image"`
	Images         StringList      `json:"images"`
	Category       string          `json:"category"`
	Year           int             `json:"year"`
	Mileage        int             `json:"mileage"`
	FuelType       string          `json:"fuelType"`
	Transmission   string          `json:"transmission"`
	Description    string          `json:"description"`
	Features       StringList      `json:"features"`
	Specifications StringMap       `json:"specifications"`
	IsFeatured     bool            `json:"isFeatured"`
	Available      bool            `json:"available"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func toView(c *Car) carView {
	return carView{
		ID:             c.ID,
		Name:           c.Name,
		Brand:          c.Brand,
		Price:          money.DecimalFromCents(c.PriceCents),
		Image:          c.Image,
		Images:         c.Images,
		Category:       c.Category,
		Year:           c.Year,
		Mileage:        c.Mileage,
		FuelType:       c.FuelType,
		Transmission:   c.Transmission,
		Description:    c.Description,
		Features:       c.Features,
		Specifications: c.Specifications,
		IsFeatured:     c.IsFeatured,
		Available:      c.Available,
		CreatedAt:      c.CreatedAt,
	}
}

func (h *HTTPHandler) ListCars(c *gin.Context) {
	f := ListCarsFilter{
		Category:     c.Query("category"),
		FeaturedOnly: c.Query("featured") == "true",
	}
	if v := c.Query("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}
	if v := c.Query("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}

	cars, _, err := h.svc.ListCars(c.Request.Context(), f)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	views := make([]carView, 0, len(cars))
	for i := range cars {
		views = append(views, toView(&cars[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (h *HTTPHandler) GetCar(c *gin.Context) {
	car, err := h.svc.GetCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(car))
}
