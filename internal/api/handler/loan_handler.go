package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/froker/lending-system/internal/api/metrics"
	"github.com/froker/lending-system/internal/core/ports"
)

type LoanHandler struct {
	loans ports.LoanService
}

func NewLoanHandler(loans ports.LoanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

// Borrow disburses a loan against the user's purchase power.
//
// @Summary      Borrow against purchase power
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        body  body      borrowRequest  true  "Amount and tenure"
// @Success      200   {object}  borrowResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Security     BearerAuth
// @Router       /loans/borrow [post]
func (h *LoanHandler) Borrow(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req borrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.loans.Borrow(c.Request().Context(), ports.BorrowInput{
		UserID:       userID,
		BorrowAmount: req.BorrowAmount,
		TenureMonths: req.TenureMonths,
	})
	if err != nil {
		return err
	}

	metrics.LoansBorrowedTotal.Inc()
	metrics.BorrowedAmount.Observe(req.BorrowAmount)
	return c.JSON(http.StatusOK, borrowResponse{
		MonthlyRepayment: res.MonthlyRepayment,
		PurchasePower:    res.PurchasePower,
		BorrowedAmount:   res.BorrowedAmount,
		TenureMonths:     res.TenureMonths,
	})
}

// Recommend computes the user's safe borrowing limit. Read-only.
//
// @Summary      Borrowing-limit recommendation
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        body  body      recommendRequest  true  "Declared monthly expenses"
// @Success      200   {object}  recommendResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Security     BearerAuth
// @Router       /loans/recommendation [post]
func (h *LoanHandler) Recommend(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req recommendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.loans.Recommend(c.Request().Context(), userID, req.MonthlyExpenses)
	if err != nil {
		return err
	}

	metrics.RecommendationsTotal.Inc()
	return c.JSON(http.StatusOK, recommendResponse{
		ExistingDebt:        res.ExistingDebt,
		MonthlySalary:       res.MonthlySalary,
		MaxLoanAmount:       res.MaxLoanAmount,
		MaxMonthlyRepayment: res.MaxMonthlyRepayment,
		TenureMonths:        res.TenureMonths,
		Recommendation:      res.Narrative,
	})
}
