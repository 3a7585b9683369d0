package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/UGONES/church-site-api/internal/model"
	"github.com/UGONES/church-site-api/internal/repository"
)

// FavoriteStore is the slice of the favorite repository the favorite
// endpoints need.
type FavoriteStore interface {
	Add(ctx context.Context, userID uint64, itemType string, itemID uint64) (*model.Favorite, error)
	Remove(ctx context.Context, userID uint64, itemType string, itemID uint64) error
	ListForUser(ctx context.Context, userID uint64, itemType string) ([]model.Favorite, error)
}

// FavoriteHandler serves the favorite toggle endpoints.  Double adds
// and double removes are reported as 409/404 conflicts, never as
// server errors: the client treats them as benign.
type FavoriteHandler struct {
	Store FavoriteStore
}

// NewFavoriteHandler constructs a FavoriteHandler and panics on a nil store.
func NewFavoriteHandler(store FavoriteStore) *FavoriteHandler {
	if store == nil {
		panic("nil store passed to NewFavoriteHandler")
	}
	return &FavoriteHandler{Store: store}
}

// Add handles POST /v1/favorites.  Body: {"item_type": "...",
// "item_id": N}.  Unknown item types are rejected with 400 before
// any write; a duplicate triple yields 409.
func (h *FavoriteHandler) Add(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ItemType string `json:"item_type"`
		ItemID   uint64 `json:"item_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.ItemType = strings.ToLower(strings.TrimSpace(body.ItemType))
	if !model.ValidItemType(body.ItemType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown item_type"})
	}
	if body.ItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id is required"})
	}

	fav, err := h.Store.Add(c.Request().Context(), userID, body.ItemType, body.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyFavorited) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already favorited"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add favorite"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":        fav.ID,
		"item_type": fav.ItemType,
		"item_id":   fav.ItemID,
	})
}

// Remove handles DELETE /v1/favorites/:type/:id.  A second remove of
// the same triple fails cleanly with 404.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemType := strings.ToLower(strings.TrimSpace(c.Param("type")))
	if !model.ValidItemType(itemType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown item_type"})
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	err = h.Store.Remove(c.Request().Context(), userID, itemType, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFavorited) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not favorited"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove favorite"})
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/favorites.  The optional ?type= query filters
// by item type; the client uses the result to pre-populate toggle
// state on content pages.
func (h *FavoriteHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if itemType != "" && !model.ValidItemType(itemType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown item_type"})
	}

	favs, err := h.Store.ListForUser(c.Request().Context(), userID, itemType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load favorites"})
	}
	items := make([]echo.Map, 0, len(favs))
	for _, f := range favs {
		items = append(items, echo.Map{
			"id":        f.ID,
			"item_type": f.ItemType,
			"item_id":   f.ItemID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
