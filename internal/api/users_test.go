package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterUser(t *testing.T) {
	a := setupAPI(t)

	body := gin.H{
		"email":      "anna@example.com",
		"username":   "anna.k",
		"first_name": "Anna",
		"last_name":  "K",
		"password":   "long-password-1",
	}
	w := a.do(http.MethodPost, "/api/users", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1,"email":"anna@example.com","username":"anna.k","first_name":"Anna","last_name":"K"}`, w.Body.String())

	w = a.do(http.MethodPost, "/api/users", body, "")
	assertError(t, w, http.StatusBadRequest, "email")

	body["email"] = "other@example.com"
	body["username"] = "bad name!"
	w = a.do(http.MethodPost, "/api/users", body, "")
	assertError(t, w, http.StatusBadRequest, "username")

	delete(body, "first_name")
	body["username"] = "fine"
	w = a.do(http.MethodPost, "/api/users", body, "")
	assertError(t, w, http.StatusBadRequest, "first_name")
}

func TestListUsersPaginates(t *testing.T) {
	a := setupAPI(t)
	viewer := testhelpers.CreateUser(t, a.db, "viewer")
	author := testhelpers.CreateUser(t, a.db, "author")
	testhelpers.CreateUser(t, a.db, "third")
	testhelpers.Subscribe(t, a.db, viewer, author)

	w := a.do(http.MethodGet, "/api/users", nil, a.token(viewer))
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.User]](t, w)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Results, 2)
	assert.False(t, page.Results[0].IsSubscribed)
	assert.True(t, page.Results[1].IsSubscribed)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/users?limit=2&page=2", *page.Next)
	assert.Nil(t, page.Previous)

	w = a.do(http.MethodGet, "/api/users?page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[types.Page[types.User]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "third", page.Results[0].Username)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/users?limit=2", *page.Previous)

	w = a.do(http.MethodGet, "/api/users?limit=1&offset=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[types.Page[types.User]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "author", page.Results[0].Username)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/users?limit=1&offset=2", *page.Next)

	w = a.do(http.MethodGet, "/api/users?page=zero", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/users?page=3", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(http.MethodGet, "/api/users?page=99", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, limit := range []string{"abc", "0", "-1"} {
		w = a.do(http.MethodGet, "/api/users?limit="+limit, nil, "")
		assertError(t, w, http.StatusBadRequest, "limit")
	}
}

func TestListUsersEmptyFirstPage(t *testing.T) {
	a := setupAPI(t)

	w := a.do(http.MethodGet, "/api/users?page=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.User]](t, w)
	assert.Zero(t, page.Count)
	assert.Empty(t, page.Results)
}

func TestGetUser(t *testing.T) {
	a := setupAPI(t)
	user := testhelpers.CreateUser(t, a.db, "cook")

	w := a.do(http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.User](t, w)
	assert.Equal(t, "cook@example.com", got.Email)
	assert.False(t, got.IsSubscribed)
	assert.Empty(t, got.Avatar)

	w = a.do(http.MethodGet, "/api/users/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/users/abc", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodGet, "/api/users/1", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetPassword(t *testing.T) {
	a := setupAPI(t)
	user := testhelpers.CreateUser(t, a.db, "cook")
	token := a.token(user)

	w := a.do(http.MethodPost, "/api/users/set_password", gin.H{"current_password": "nope", "new_password": "brand-new-1"}, token)
	assertError(t, w, http.StatusBadRequest, "current_password")

	w = a.do(http.MethodPost, "/api/users/set_password", gin.H{"current_password": testhelpers.DefaultPassword, "new_password": "brand-new-1"}, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodPost, "/api/auth/token/login", gin.H{"email": "cook@example.com", "password": "brand-new-1"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAvatar(t *testing.T) {
	a := setupAPI(t)
	user := testhelpers.CreateUser(t, a.db, "cook")
	token := a.token(user)

	w := a.do(http.MethodPut, "/api/users/me/avatar", gin.H{"avatar": testhelpers.PNGDataURL}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[types.AvatarResponse](t, w).Avatar
	assert.True(t, a.images.Has(first))

	w = a.do(http.MethodPut, fmt.Sprintf("/api/users/%d/avatar", user.ID), gin.H{"avatar": testhelpers.PNGDataURL}, token)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[types.AvatarResponse](t, w).Avatar
	assert.NotEqual(t, first, second)
	assert.False(t, a.images.Has(first))

	w = a.do(http.MethodPut, "/api/users/me/avatar", gin.H{"avatar": "not a data url"}, token)
	assertError(t, w, http.StatusBadRequest, "avatar")

	w = a.do(http.MethodPut, "/api/users/me/avatar", gin.H{}, token)
	assertError(t, w, http.StatusBadRequest, "avatar")

	w = a.do(http.MethodDelete, "/api/users/me/avatar", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, a.images.Len())

	var stored models.User
	require.NoError(t, a.db.First(&stored, user.ID).Error)
	assert.Empty(t, stored.Avatar)
}

func TestSubscriptions(t *testing.T) {
	a := setupAPI(t)
	reader := testhelpers.CreateUser(t, a.db, "reader")
	author := testhelpers.CreateUser(t, a.db, "author")
	tag := testhelpers.CreateTag(t, a.db, "Lunch", "lunch")
	for _, name := range []string{"soup", "salad", "stew"} {
		testhelpers.CreateRecipe(t, a.db, author, name, []*models.Tag{tag})
	}
	token := a.token(reader)

	w := a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe?recipes_limit=2", reader.ID), nil, token)
	assertError(t, w, http.StatusBadRequest, "author")

	w = a.do(http.MethodPost, "/api/users/999/subscribe", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe?recipes_limit=2", author.ID), nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[types.Subscription](t, w)
	assert.Equal(t, "author", sub.Username)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 2)
	assert.Equal(t, int64(3), sub.RecipesCount)

	w = a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", author.ID), nil, token)
	assertError(t, w, http.StatusBadRequest, "author")

	w = a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe?recipes_limit=x", author.ID), nil, token)
	assertError(t, w, http.StatusBadRequest, "recipes_limit")

	w = a.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.Subscription]](t, w)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 1)

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", author.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", author.ID), nil, token)
	assertError(t, w, http.StatusBadRequest, "author")

	w = a.do(http.MethodGet, "/api/users/subscriptions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
