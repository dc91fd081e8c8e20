package handlers

import (
	"net/http"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/middleware"
	"cutordie_backend/internal/payment"
	"cutordie_backend/internal/services"
	"cutordie_backend/internal/services/dto"
	"cutordie_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	*BaseHandler
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(base *BaseHandler, purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler:     base,
		purchaseService: purchaseService,
	}
}

// RegisterRoutes wires the purchase flow. The webhook is unauthenticated
// because the provider calls it; everything it can do is bounded by the
// invoice lookup and the state machine.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/courses/webhook/payment", h.Webhook)

	buy := rg.Group("/courses")
	buy.Use(authMW)
	{
		buy.POST("/:id/purchase", h.Buy)
		buy.GET("/:id/payment", h.CheckPayment)
	}

	purchases := rg.Group("/purchases")
	purchases.Use(authMW)
	{
		purchases.GET("/me", h.ListMine)
		purchases.POST("/:id/grant", middleware.RequirePermission(auth.PermEntitlementsGrant), h.Grant)
	}
}

func (h *PurchaseHandler) Buy(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.BuyCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	invoice, err := h.purchaseService.BuyCourse(c.Request.Context(), db, userID, c.Param("id"), req.Currency)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// Webhook handles the provider's payment callback. Answers 200 for any
// delivery that has been fully absorbed, including repeats.
func (h *PurchaseHandler) Webhook(c *gin.Context) {
	var status payment.InvoiceStatus
	if err := c.ShouldBindJSON(&status); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid webhook body: "+err.Error()))
		return
	}

	db := h.GetDB(c)
	if err := h.purchaseService.HandleWebhook(c.Request.Context(), db, &status); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *PurchaseHandler) CheckPayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)
	purchase, err := h.purchaseService.CheckPayment(c.Request.Context(), db, userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

func (h *PurchaseHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)
	purchases, err := h.purchaseService.ListUserPurchases(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// Grant re-runs a failed entitlement grant for a paid purchase.
func (h *PurchaseHandler) Grant(c *gin.Context) {
	db := h.GetDB(c)
	purchase, err := h.purchaseService.GrantEntitlement(c.Request.Context(), db, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}
