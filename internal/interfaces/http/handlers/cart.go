// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/farmcrate-storefront/internal/cart"
	"github.com/your-org/farmcrate-storefront/internal/catalog"
	"github.com/your-org/farmcrate-storefront/internal/commerce"
	"github.com/your-org/farmcrate-storefront/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *commerce.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *commerce.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// addToCartRequest is the POST /cart/add body. final_price is advisory:
// the server reprices from the catalog.
type addToCartRequest struct {
	ProductID            string `json:"product_id" binding:"required"`
	Quantity             int    `json:"quantity" binding:"required,min=1"`
	SessionID            string `json:"session_id" binding:"required"`
	PurchaseType         string `json:"purchase_type" binding:"required"`
	SubscriptionInterval string `json:"subscription_interval"`
	DeliveryDay          int    `json:"delivery_day"`
	FinalPrice           *int64 `json:"final_price"`
}

// updateCartItemRequest is the PUT /cart/items/:id body
type updateCartItemRequest struct {
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	SessionID string `json:"session_id" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "session_id is required",
		})
		return
	}

	items, summary, err := h.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}
	if items == nil {
		items = []cart.Item{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data": gin.H{
			"cart_items": items,
			"summary":    summary,
		},
	})
}

// AddToCart handles POST /cart/add
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	item, summary, err := h.cartService.AddItem(c.Request.Context(), commerce.AddItemInput{
		SessionID:            req.SessionID,
		UserID:               userID,
		ProductID:            req.ProductID,
		Quantity:             req.Quantity,
		PurchaseType:         catalog.PurchaseType(req.PurchaseType),
		SubscriptionInterval: req.SubscriptionInterval,
		DeliveryDay:          req.DeliveryDay,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item added to cart successfully",
		"data": gin.H{
			"item":    item,
			"summary": summary,
		},
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	itemID := c.Param("id")

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	item, summary, err := h.cartService.UpdateItem(c.Request.Context(), req.SessionID, itemID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data": gin.H{
			"item":    item,
			"summary": summary,
		},
	})
}

// RemoveCartItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	itemID := c.Param("id")
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "session_id is required",
		})
		return
	}

	summary, err := h.cartService.RemoveItem(c.Request.Context(), sessionID, itemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item removed successfully",
		"data": gin.H{
			"summary": summary,
		},
	})
}
