package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/core/ports"
)

// DirectoryHandler serves user directory searches.
type DirectoryHandler struct {
	service ports.DirectoryService
}

func NewDirectoryHandler(service ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// Search handles GET /dev/users.
//
// @Summary      Search the user directory
// @Description  Development only. An empty query matches every user. limit defaults to 20 and is capped at 100.
// @Tags         dev
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  false  "Free-text query"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Param        offset  query     int     false  "Page offset"
// @Success      200     {object}  searchUsersResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /dev/users [get]
func (h *DirectoryHandler) Search(c echo.Context) error {
	page, err := h.service.SearchUsers(c.Request().Context(), ctxCaller(c), domain.DirectoryQuery{
		Query:  c.QueryParam("q"),
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSearchUsersResponse(page))
}

// queryInt reads an integer query parameter. Missing or malformed values
// read as 0 and get the service defaults.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

func toSearchUsersResponse(p *domain.DirectoryPage) searchUsersResponse {
	users := make([]directoryUserResponse, len(p.Users))
	for i, u := range p.Users {
		emails := u.Emails
		if emails == nil {
			emails = []string{}
		}
		users[i] = directoryUserResponse{
			ID:          u.ID,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
			Emails:      emails,
			CreatedAt:   u.CreatedAt,
		}
	}
	return searchUsersResponse{Users: users, TotalCount: p.TotalCount}
}
