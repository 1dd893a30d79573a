// internal/interfaces/http/handlers/delivery.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/farmcrate-storefront/internal/commerce"
)

// DeliveryHandler handles delivery stock endpoints
type DeliveryHandler struct {
	stock *commerce.StockLedger
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(stock *commerce.StockLedger) *DeliveryHandler {
	return &DeliveryHandler{stock: stock}
}

// GetDeliveryStock handles GET /delivery-stock. The snapshot is a
// point-in-time read: clients must treat it as advisory, not a
// reservation.
func (h *DeliveryHandler) GetDeliveryStock(c *gin.Context) {
	snapshot := h.stock.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery stock retrieved successfully",
		"data": gin.H{
			"days":        snapshot.Days,
			"closed_days": snapshot.ClosedDays,
		},
	})
}
