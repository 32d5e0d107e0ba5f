package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"coupon-service/internal/model"
	"coupon-service/internal/service"
	apperr "coupon-service/pkg/errors"
)

// apiError is the error half of the response envelope.
type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Every response is {"data": ...} or {"error": {...}}, never both. The
// two helpers are the only way handlers write a body.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func respondError(c *gin.Context, err error) {
	status, body := mapError(err)
	c.JSON(status, gin.H{"error": body})
}

func mapError(err error) (int, apiError) {
	var (
		validationErr *apperr.ValidationError
		quotaErr      *apperr.QuotaExceededError
		invalidErr    *apperr.CouponInvalidError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, apiError{
			Code:    apperr.CodeValidation,
			Message: validationErr.Error(),
		}
	case errors.Is(err, apperr.ErrDuplicateCode):
		return http.StatusUnprocessableEntity, apiError{
			Code:    apperr.CodeValidation,
			Message: err.Error(),
		}
	case errors.As(err, &quotaErr):
		return http.StatusForbidden, apiError{
			Code:    apperr.CodeQuotaExceeded,
			Message: quotaErr.Error(),
			Details: map[string]any{"current": quotaErr.Current, "limit": quotaErr.Limit},
		}
	case errors.Is(err, apperr.ErrCouponNotFound):
		return http.StatusNotFound, apiError{
			Code:    apperr.CodeNotFound,
			Message: err.Error(),
		}
	case errors.As(err, &invalidErr):
		return http.StatusConflict, apiError{
			Code:    apperr.CodeCouponInvalid,
			Message: invalidErr.Error(),
			Details: map[string]any{"reason": invalidErr.Reason},
		}
	case errors.Is(err, apperr.ErrContention):
		return http.StatusServiceUnavailable, apiError{
			Code:    apperr.CodeContention,
			Message: err.Error(),
		}
	default:
		return http.StatusServiceUnavailable, apiError{
			Code:    apperr.CodeStorageUnavailable,
			Message: "storage unavailable",
		}
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": apiError{
		Code:    apperr.CodeValidation,
		Message: "invalid request body: " + err.Error(),
	}})
}

// createCouponHandler handles POST /api/sites/:siteId/coupons.
func createCouponHandler(svc *service.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}

		var req model.CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		coupon, err := svc.CreateCoupon(c.Request.Context(), userID, c.Param("siteId"), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, coupon)
	}
}

// listCouponsHandler handles GET /api/sites/:siteId/coupons.
func listCouponsHandler(svc *service.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

		coupons, err := svc.ListCoupons(c.Request.Context(), c.Param("siteId"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, coupons)
	}
}

// quotaHandler handles GET /api/sites/:siteId/coupons/quota.
func quotaHandler(svc *service.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}

		quota, err := svc.CanCreateCoupon(c.Request.Context(), userID, c.Param("siteId"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, quota)
	}
}

// updateCouponHandler handles PATCH /api/coupons/:id.
func updateCouponHandler(svc *service.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch model.CouponPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			bindError(c, err)
			return
		}

		coupon, err := svc.UpdateCoupon(c.Request.Context(), c.Param("id"), &patch)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, coupon)
	}
}

// deleteCouponHandler handles DELETE /api/coupons/:id.
func deleteCouponHandler(svc *service.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteCoupon(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"deleted": true})
	}
}

// validateCouponHandler handles POST /api/sites/:siteId/coupons/validate.
// Applicability is an answer, not an error, so a failing coupon still
// responds 200 with the reason in the data payload.
func validateCouponHandler(svc *service.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.RedeemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		var at time.Time
		if req.At != nil {
			at = *req.At
		}

		result, err := svc.ValidateCoupon(c.Request.Context(), c.Param("siteId"), req.Code, req.PurchaseAmount, at)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, model.ValidationResponse{
			Valid:    result.Valid,
			Discount: result.Discount,
			Reason:   string(result.Reason),
		})
	}
}

// applyCouponHandler handles POST /api/sites/:siteId/coupons/apply.
func applyCouponHandler(svc *service.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.RedeemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		applied, err := svc.ApplyCoupon(c.Request.Context(), c.Param("siteId"), req.Code, req.PurchaseAmount)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, applied)
	}
}
