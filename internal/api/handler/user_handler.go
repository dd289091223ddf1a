package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/froker/lending-system/internal/core/domain"
	"github.com/froker/lending-system/internal/core/ports"
)

type UserHandler struct {
	loans ports.LoanService
}

func NewUserHandler(loans ports.LoanService) *UserHandler {
	return &UserHandler{loans: loans}
}

// Me returns the authenticated user's profile.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.loans.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		PurchasePower:      domain.Round2(user.PurchasePower),
		PhoneNumber:        user.PhoneNumber,
		Email:              user.Email,
		Name:               user.Name,
		DateOfRegistration: user.DateOfRegistration.Format(domain.DateOfBirthLayout),
		DateOfBirth:        user.DateOfBirth,
		MonthlySalary:      user.MonthlySalary,
		Status:             string(user.Status),
		BorrowedAmount:     domain.Round2(user.BorrowedAmount),
	})
}
