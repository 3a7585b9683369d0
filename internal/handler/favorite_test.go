package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/UGONES/church-site-api/internal/model"
	"github.com/UGONES/church-site-api/internal/repository"
)

type fakeFavorites struct {
	addFav *model.Favorite
	addErr error

	removeErr error

	list    []model.Favorite
	listErr error

	gotType string
	gotID   uint64
}

func (f *fakeFavorites) Add(_ context.Context, userID uint64, itemType string, itemID uint64) (*model.Favorite, error) {
	f.gotType, f.gotID = itemType, itemID
	if f.addErr != nil {
		return nil, f.addErr
	}
	return f.addFav, nil
}

func (f *fakeFavorites) Remove(_ context.Context, userID uint64, itemType string, itemID uint64) error {
	f.gotType, f.gotID = itemType, itemID
	return f.removeErr
}

func (f *fakeFavorites) ListForUser(_ context.Context, userID uint64, itemType string) ([]model.Favorite, error) {
	f.gotType = itemType
	return f.list, f.listErr
}

func newFavoriteAdd(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/favorites", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	return c, rec
}

func TestFavoriteAdd(t *testing.T) {
	store := &fakeFavorites{addFav: &model.Favorite{ID: 11, UserID: 7, ItemType: model.ItemTypeSermon, ItemID: 3}}
	h := NewFavoriteHandler(store)

	c, rec := newFavoriteAdd(`{"item_type":"sermon","item_id":3}`)
	assert.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.ItemTypeSermon, store.gotType)
	assert.Equal(t, uint64(3), store.gotID)
}

func TestFavoriteAddNormalizesType(t *testing.T) {
	store := &fakeFavorites{addFav: &model.Favorite{ID: 12, ItemType: model.ItemTypeEvent, ItemID: 4}}
	h := NewFavoriteHandler(store)

	c, rec := newFavoriteAdd(`{"item_type":" Event ","item_id":4}`)
	assert.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.ItemTypeEvent, store.gotType)
}

func TestFavoriteAddRejectsUnknownType(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{})
	c, rec := newFavoriteAdd(`{"item_type":"podcast","item_id":3}`)
	assert.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoriteAddRejectsZeroID(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{})
	c, rec := newFavoriteAdd(`{"item_type":"sermon","item_id":0}`)
	assert.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoriteAddDuplicate(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{addErr: repository.ErrAlreadyFavorited})
	c, rec := newFavoriteAdd(`{"item_type":"sermon","item_id":3}`)
	assert.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func newFavoriteRemove(itemType, itemID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/favorites/"+itemType+"/"+itemID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("type", "id")
	c.SetParamValues(itemType, itemID)
	c.Set("user_id", uint64(7))
	return c, rec
}

func TestFavoriteRemove(t *testing.T) {
	store := &fakeFavorites{}
	h := NewFavoriteHandler(store)
	c, rec := newFavoriteRemove("sermon", "3")
	assert.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint64(3), store.gotID)
}

func TestFavoriteRemoveMissing(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{removeErr: repository.ErrNotFavorited})
	c, rec := newFavoriteRemove("sermon", "3")
	assert.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoriteRemoveBadType(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{})
	c, rec := newFavoriteRemove("podcast", "3")
	assert.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoriteList(t *testing.T) {
	store := &fakeFavorites{list: []model.Favorite{
		{ID: 1, ItemType: model.ItemTypeSermon, ItemID: 3},
		{ID: 2, ItemType: model.ItemTypeEvent, ItemID: 5},
	}}
	h := NewFavoriteHandler(store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/favorites?type=sermon", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))

	assert.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ItemTypeSermon, store.gotType)
	assert.Len(t, decodeBody(t, rec)["items"].([]any), 2)
}

func TestFavoriteListBadTypeFilter(t *testing.T) {
	h := NewFavoriteHandler(&fakeFavorites{})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/favorites?type=podcast", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))

	assert.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
