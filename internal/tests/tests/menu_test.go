package tests

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gophergrub/internal/session"
	"gophergrub/internal/tests/suite"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestMenu_RequiresLogin(t *testing.T) {
	s := suite.New(t, "Pancakes")

	p := get(t, s, "/menu?diningHall=Worcester&date=2024-05-01&mealtime=breakfast")

	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/login", p.Location)
	assert.Equal(t, []string{"/refresh"}, s.Backend.Calls())
}

func TestMenu_SearchAndToggle(t *testing.T) {
	s := suite.New(t, "Pancakes", "Waffles")

	s.MockStorage.On("Save", mock.Anything, mock.Anything, session.KeyDisplayName, "Gopher").
		Return(nil).Twice()

	signupAndLogin(t, s, "gopher@uni.edu", "pw", "Gopher")

	p := get(t, s, "/menu?diningHall=Worcester&date=2024-05-01&mealtime=breakfast")
	require.Equal(t, http.StatusOK, p.Status, p.Body)
	assert.Contains(t, p.Body, "Pancakes")
	assert.Contains(t, p.Body, "Waffles")
	assert.Equal(t, 2, strings.Count(p.Body, ">Prefer<"))

	p = post(t, s, "/menu/preference", url.Values{
		"id": {"1"}, "meal": {"Pancakes"}, "isPreferred": {"false"},
		"diningHall": {"Worcester"}, "date": {"2024-05-01"}, "mealtime": {"breakfast"},
	})
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)

	p = get(t, s, p.Location)
	require.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, 1, strings.Count(p.Body, ">Prefer<"))
	assert.Equal(t, 1, strings.Count(p.Body, ">Remove preference<"))
}

func TestMenu_InvalidDate(t *testing.T) {
	s := suite.New(t, "Pancakes")

	p := get(t, s, "/menu?diningHall=Worcester&date=05/01/2024")

	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Contains(t, p.Body, "YYYY-MM-DD")
	assert.Empty(t, s.Backend.Calls())
}

func TestMetrics_Exposed(t *testing.T) {
	s := suite.New(t)

	get(t, s, "/health")
	p := get(t, s, "/metrics")

	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, `test_http_requests_total{method="GET",route="/health",status_code="200"} 1`)
}
