package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// /api/cart, /api/cart/items/{productId} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/cart")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.getView)
	g.POST("/items", h.addLine)
	g.PUT("/items/:productId", h.setQuantity)
	g.DELETE("/items/:productId", h.removeLine)
	g.DELETE("", h.clear)
}

func (h *CartHandler) getView(c echo.Context) error {
	owner, ok := getOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetView(c.Request().Context(), owner)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addLine(c echo.Context) error {
	owner, ok := getOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.AddOrUpdate(c.Request().Context(), owner, usecase.AddLineInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}); err != nil {
		return writeError(c, err)
	}

	// 変更後のカートを返す
	out, err := h.uc.GetView(c.Request().Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) setQuantity(c echo.Context) error {
	owner, ok := getOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetQuantity(c.Request().Context(), owner, productID, req.Quantity); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetView(c.Request().Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeLine(c echo.Context) error {
	owner, ok := getOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Remove(c.Request().Context(), owner, productID); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetView(c.Request().Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	owner, ok := getOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Clear(c.Request().Context(), owner); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// middlewareが入れたownerを取り出す
func getOwnerFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxOwnerKey)
	owner, ok := v.(string)
	if !ok || owner == "" {
		return "", false
	}
	return owner, true
}
