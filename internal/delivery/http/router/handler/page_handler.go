package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"userhub/config"
	deliverycontext "userhub/internal/delivery/context"
	"userhub/internal/delivery/http/middleware"
	"userhub/internal/delivery/http/render"
	domainerrors "userhub/internal/domain/errors"
	"userhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PageHandler serves the server-rendered pages: registration, login, dashboard and user admin forms.
type PageHandler struct {
	uc        usecase.UserUsecase
	session   *middleware.SessionMiddleware
	logger    *slog.Logger
	pageLimit int
}

// NewPageHandler is the constructor for PageHandler, injected by Fx.
func NewPageHandler(uc usecase.UserUsecase, session *middleware.SessionMiddleware, logger *slog.Logger, cfg *config.Config) *PageHandler {
	pageLimit := 100
	if cfg.Pagination != nil {
		pageLimit = cfg.Pagination.MaxLimit
	}

	return &PageHandler{
		uc:        uc,
		session:   session,
		logger:    logger,
		pageLimit: pageLimit,
	}
}

func (h *PageHandler) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, h.logger)
}

// Root redirects to the registration page.
func (h *PageHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusTemporaryRedirect, "/register")
}

// ShowRegisterForm returns a GET handler for a registration page.
// /register and /signup share the flow and differ only in template.
func (h *PageHandler) ShowRegisterForm(templateName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, templateName, render.Page{})
	}
}

// SubmitRegisterForm returns a POST handler that creates the account and redirects to the dashboard.
// Failures re-render the form with the submitted name and email.
func (h *PageHandler) SubmitRegisterForm(templateName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		input := new(usecase.RegisterUserInput)
		if err := c.Bind(input); err != nil {
			return h.renderFormError(c, templateName, domainerrors.ErrValidationFailed, input.Name, input.Email)
		}

		page := render.Page{Form: render.FormValues{Name: input.Name, Email: input.Email}}

		if err := c.Validate(input); err != nil {
			return h.renderFormError(c, templateName, err, input.Name, input.Email)
		}

		if _, err := h.uc.RegisterUser(c.Request().Context(), input); err != nil {
			var appErr domainerrors.AppError
			if errors.As(err, &appErr) && appErr.HTTPCode() < http.StatusInternalServerError {
				return h.renderFormError(c, templateName, err, input.Name, input.Email)
			}

			h.log(c.Request().Context()).Error("Registration failed", slog.Any("error", err))
			page.Error = "An unexpected error occurred. Please try again."

			return c.Render(http.StatusInternalServerError, templateName, page)
		}

		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
}

// ShowLoginForm renders the login page.
func (h *PageHandler) ShowLoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", render.Page{})
}

// SubmitLoginForm authenticates and starts the cookie session.
func (h *PageHandler) SubmitLoginForm(c echo.Context) error {
	input := new(usecase.LoginInput)
	if err := c.Bind(input); err != nil {
		return h.renderFormError(c, "login.html", domainerrors.ErrInvalidCredentials, "", input.Email)
	}
	if err := c.Validate(input); err != nil {
		return h.renderFormError(c, "login.html", domainerrors.ErrInvalidCredentials, "", input.Email)
	}

	user, err := h.uc.Authenticate(c.Request().Context(), input)
	if errors.Is(err, domainerrors.ErrInvalidCredentials) {
		return h.renderFormError(c, "login.html", err, "", input.Email)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	h.session.Start(c, user.ID)

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout clears the session cookie.
func (h *PageHandler) Logout(c echo.Context) error {
	h.session.End(c)

	return c.Redirect(http.StatusTemporaryRedirect, "/login")
}

// Dashboard lists users for a logged-in visitor.
func (h *PageHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.uc.ListUsers(ctx, &usecase.ListUsersInput{Offset: 0, Limit: h.pageLimit})
	if err != nil {
		return errors.WithStack(err)
	}

	total, err := h.uc.CountUsers(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "dashboard.html", h.page(c, render.Page{Users: users, Total: total}))
}

// Profile shows the logged-in user.
func (h *PageHandler) Profile(c echo.Context) error {
	userID, _ := deliverycontext.GetUserID(c)

	user, err := h.uc.GetUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "profile.html", h.page(c, render.Page{User: user}))
}

// ShowUpdateForm renders the edit form of a user.
func (h *PageHandler) ShowUpdateForm(c echo.Context) error {
	return h.showUser(c, "update_user.html")
}

// SubmitUpdateForm applies the edit form. A blank password keeps the current one.
func (h *PageHandler) SubmitUpdateForm(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.TrimSpace(c.FormValue("email"))
	input := &usecase.UpdateUserInput{Name: &name, Email: &email}
	if password := c.FormValue("password"); password != "" {
		input.Password = &password
	}

	if err := c.Validate(input); err != nil {
		return h.renderUpdateError(c, id, err)
	}

	if _, err := h.uc.UpdateUser(c.Request().Context(), id, input); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) || errors.Is(err, domainerrors.ErrValidationFailed) {
			return h.renderUpdateError(c, id, err)
		}

		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// ShowDeleteConfirm renders the delete confirmation page.
func (h *PageHandler) ShowDeleteConfirm(c echo.Context) error {
	return h.showUser(c, "confirm_delete.html")
}

// SubmitDelete removes a user. Deleting one's own account also ends the session.
func (h *PageHandler) SubmitDelete(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if _, err := h.uc.DeleteUser(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	if sessionUserID, ok := deliverycontext.GetUserID(c); ok && sessionUserID == id {
		h.session.End(c)

		return c.Redirect(http.StatusSeeOther, "/login")
	}

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *PageHandler) showUser(c echo.Context, templateName string) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.uc.GetUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, templateName, h.page(c, render.Page{User: user}))
}

func (h *PageHandler) renderUpdateError(c echo.Context, id int64, cause error) error {
	user, err := h.uc.GetUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	page := h.page(c, render.Page{User: user, Error: userMessage(cause)})

	return c.Render(statusOf(cause), "update_user.html", page)
}

func (h *PageHandler) renderFormError(c echo.Context, templateName string, cause error, name, email string) error {
	page := h.page(c, render.Page{
		Error: userMessage(cause),
		Form:  render.FormValues{Name: name, Email: email},
	})

	return c.Render(statusOf(cause), templateName, page)
}

// page fills the fields every template reads from the request.
func (h *PageHandler) page(c echo.Context, page render.Page) render.Page {
	if userID, ok := deliverycontext.GetUserID(c); ok {
		page.SessionUserID = userID
	}

	return page
}

// userMessage returns the text shown on a form for a failed submission.
func userMessage(err error) string {
	var appErr domainerrors.AppError
	if !errors.As(err, &appErr) {
		return domainerrors.ErrInternalError.Message()
	}
	if errors.Is(err, domainerrors.ErrValidationFailed) && appErr.Details() != "" {
		return appErr.Details()
	}

	return appErr.Message()
}

func statusOf(err error) int {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode()
	}

	return http.StatusInternalServerError
}
