package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"parlor/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingBody() fiber.Map {
	return fiber.Map{
		"title":       "Fade Factory",
		"description": "Cuts and colors",
		"imageSrc":    "https://example.com/cover.jpg",
		"category":    "barbershop",
		"location":    "Oakland",
		"address":     "12 Grand Ave",
		"zipCode":     "94610",
		"services": []fiber.Map{
			{"name": "Haircut", "price": 45, "category": "hair"},
			{"name": "Beard Trim", "price": 20, "category": "hair"},
		},
		"storeHours": []fiber.Map{
			{"day_of_week": "Monday", "open_time": "09:00", "close_time": "18:00"},
		},
		"employees": []string{"Sam", "Riley"},
	}
}

func createListingViaAPI(t *testing.T, app *fiber.App, auth string) *models.ListingView {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/listings/", auth, listingBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var view models.ListingView
	decodeBody(t, resp, &view)
	return &view
}

func TestCreateAndGetListing(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t, nil)
	auth, owner := signupUser(t, app, "owner")

	created := createListingViaAPI(t, app, auth)
	assert.Equal(t, owner.ID, created.UserID)
	require.Len(t, created.Services, 2)

	// Public fetch without auth returns the normalized view.
	resp := doJSON(t, app, http.MethodGet, "/api/listings/"+uintPath(created.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]json.RawMessage
	decodeBody(t, resp, &raw)
	assert.JSONEq(t, `"https://example.com/cover.jpg"`, string(raw["cover_image"]))
	assert.JSONEq(t, `[]`, string(raw["follower_ids"]))
	assert.JSONEq(t, `[]`, string(raw["gallery_images"]))

	var view models.ListingView
	require.NoError(t, json.Unmarshal(mustMarshal(t, raw), &view))
	require.Len(t, view.Employees, 2)
	assert.Equal(t, "Sam", view.Employees[0].Name)
	require.Len(t, view.StoreHours, 1)
	assert.Equal(t, "Monday", view.StoreHours[0].DayOfWeek)
}

func TestCreateListingStringEncodedChildren(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t, nil)
	auth, _ := signupUser(t, app, "owner")

	// Multipart-style clients send child arrays as JSON strings.
	body := listingBody()
	body["services"] = `[{"name": "Haircut", "price": 45}]`
	body["storeHours"] = `[{"day_of_week": "Tuesday"}]`

	resp := doJSON(t, app, http.MethodPost, "/api/listings/", auth, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var view models.ListingView
	decodeBody(t, resp, &view)
	require.Len(t, view.Services, 1)
	assert.Equal(t, 45.0, view.Services[0].Price)
	require.Len(t, view.StoreHours, 1)
	assert.Equal(t, "Tuesday", view.StoreHours[0].DayOfWeek)
}

func TestCreateListingValidation(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t, nil)
	auth, _ := signupUser(t, app, "owner")

	body := listingBody()
	delete(body, "title")
	delete(body, "services")

	resp := doJSON(t, app, http.MethodPost, "/api/listings/", auth, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := errBody(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
	assert.Contains(t, out["error"], "title")
	assert.Contains(t, out["error"], "services")
}

func TestListListingsFilters(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t, nil)
	auth, owner := signupUser(t, app, "owner")

	createListingViaAPI(t, app, auth)
	spa := listingBody()
	spa["title"] = "Glow Studio"
	spa["category"] = "spa"
	resp := doJSON(t, app, http.MethodPost, "/api/listings/", auth, spa)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var views []models.ListingView

	resp = doJSON(t, app, http.MethodGet, "/api/listings/?category=spa", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "Glow Studio", views[0].Title)

	resp = doJSON(t, app, http.MethodGet, "/api/listings/?userId="+uintPath(owner.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &views)
	assert.Len(t, views, 2)
}

func TestUpdateListingAuthorization(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t, nil)
	ownerAuth, _ := signupUser(t, app, "owner")
	otherAuth, _ := signupUser(t, app, "other")

	created := createListingViaAPI(t, app, ownerAuth)

	body := listingBody()
	body["title"] = "Renamed"

	resp := doJSON(t, app, http.MethodPut, "/api/listings/"+uintPath(created.ID), otherAuth, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/listings/"+uintPath(created.ID), ownerAuth, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view models.ListingView
	decodeBody(t, resp, &view)
	assert.Equal(t, "Renamed", view.Title)
}

func TestDeleteListing(t *testing.T) {
	t.Parallel()
	_, app, _ := newTestServer(t, nil)
	auth, _ := signupUser(t, app, "owner")

	created := createListingViaAPI(t, app, auth)

	resp := doJSON(t, app, http.MethodDelete, "/api/listings/"+uintPath(created.ID), auth, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/listings/"+uintPath(created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
