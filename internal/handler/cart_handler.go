package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP。ゲスト（X-Guest-Token）もログイン済みも同じルートを使う。
type CartHandler struct {
	uc      *usecase.CartUsecase
	mergeUC *usecase.CartMergeUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, mergeUC *usecase.CartMergeUsecase) *CartHandler {
	return &CartHandler{uc: uc, mergeUC: mergeUC}
}

type AddCartRequest struct {
	ItemID   string `json:"item_id"`
	Size     string `json:"size"`
	Quantity int64  `json:"quantity"`
}

type UpdateCartRequest struct {
	ItemID   string `json:"item_id"`
	Size     string `json:"size"`
	Quantity int64  `json:"quantity"`
}

type RemoveCartRequest struct {
	ItemID string `json:"item_id"`
	Size   string `json:"size"`
}

type MergeCartRequest struct {
	GuestToken string `json:"guest_token"`
}

// /cart 配下を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.ResolveSubject(cfg))

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PATCH("/items", h.updateItem)
	g.DELETE("/items", h.removeItem)
	g.POST("/clear", h.clearCart)

	//マージだけはログイン必須
	m := e.Group("/cart")
	m.Use(middleware.AuthJWT(cfg))
	m.POST("/merge", h.mergeCart)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), sub)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), sub, usecase.AddCartInput{
		ItemID: req.ItemID,
		Size:   req.Size,
		Delta:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetQuantity(c.Request().Context(), sub, usecase.UpdateCartInput{
		ItemID:   req.ItemID,
		Size:     req.Size,
		Quantity: req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req RemoveCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), sub, req.ItemID, req.Size)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clearCart(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ClearCart(c.Request().Context(), sub)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// ログイン直後にゲストカートを取り込む
func (h *CartHandler) mergeCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req MergeCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.GuestToken == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "guest_token required"})
	}

	merged, err := h.mergeUC.MergeOnLogin(c.Request().Context(), req.GuestToken, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_count": merged.TotalCount(),
	})
}
