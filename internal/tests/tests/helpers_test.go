package tests

import (
	"github.com/stretchr/testify/require"
	"gophergrub/internal/tests/suite"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

type page struct {
	Status   int
	Location string
	Body     string
	Cookies  []*http.Cookie
}

func get(t *testing.T, s *suite.Suite, path string) page {
	t.Helper()

	resp, err := s.Browser.Get(s.Front.URL + path)
	require.NoError(t, err)
	return read(t, resp)
}

func post(t *testing.T, s *suite.Suite, path string, form url.Values) page {
	t.Helper()

	resp, err := s.Browser.Post(s.Front.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	return read(t, resp)
}

func read(t *testing.T, resp *http.Response) page {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return page{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Body:     string(body),
		Cookies:  resp.Cookies(),
	}
}

func signupAndLogin(t *testing.T, s *suite.Suite, email, password, name string) {
	t.Helper()

	p := post(t, s, "/signup", url.Values{"email": {email}, "password": {password}, "displayName": {name}})
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)

	p = post(t, s, "/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)
	require.Equal(t, "/menu", p.Location)
}
