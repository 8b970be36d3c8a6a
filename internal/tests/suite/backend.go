package suite

import (
	"encoding/json"
	"github.com/google/uuid"
	"gophergrub/internal/model"
	"net/http"
	"sync"
)

type user struct {
	password    string
	displayName string
	preferences map[string]bool
}

// Backend is an in-memory stand-in for the dining backend speaking its wire
// protocol: refresh_token cookie sessions, {detail} errors and the menu API.
type Backend struct {
	mu       sync.Mutex
	users    map[string]*user
	sessions map[string]string
	access   map[string]string
	menu     []string
	calls    []string
}

func NewBackend(menu ...string) *Backend {
	return &Backend{
		users:    make(map[string]*user),
		sessions: make(map[string]string),
		access:   make(map[string]string),
		menu:     menu,
	}
}

func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", b.signup)
	mux.HandleFunc("POST /login", b.login)
	mux.HandleFunc("POST /logout", b.logout)
	mux.HandleFunc("POST /refresh", b.refresh)
	mux.HandleFunc("GET /getMenu", b.getMenu)
	mux.HandleFunc("POST /addFoodPreference", b.preference(true))
	mux.HandleFunc("POST /removeFoodPreference", b.preference(false))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.URL.Path)
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorEnvelope{Detail: msg})
}

func (b *Backend) signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.users[req.Email]; ok {
		detail(w, http.StatusConflict, "user already exists")
		return
	}
	b.users[req.Email] = &user{password: req.Password, displayName: req.DisplayName, preferences: map[string]bool{}}
	w.WriteHeader(http.StatusCreated)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[req.Email]
	if !ok || u.password != req.Password {
		detail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	refresh := uuid.NewString()
	b.sessions[refresh] = req.Email
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: refresh, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, model.LoginData{DisplayName: u.displayName})
}

func (b *Backend) sessionUser(r *http.Request) (string, bool) {
	c, err := r.Cookie("refresh_token")
	if err != nil {
		return "", false
	}
	email, ok := b.sessions[c.Value]
	return email, ok
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.sessionUser(r); !ok {
		detail(w, http.StatusUnauthorized, "invalid jwt")
		return
	}
	c, _ := r.Cookie("refresh_token")
	delete(b.sessions, c.Value)

	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	email, ok := b.sessionUser(r)
	if !ok {
		detail(w, http.StatusUnauthorized, "invalid jwt")
		return
	}

	access := uuid.NewString()
	b.access[access] = email
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (b *Backend) getMenu(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	email, ok := b.access[r.URL.Query().Get("accessToken")]
	if !ok {
		detail(w, http.StatusUnauthorized, model.DetailUnauthenticated)
		return
	}

	prefs := b.users[email].preferences
	items := make([]model.MenuItem, 0, len(b.menu))
	for i, meal := range b.menu {
		items = append(items, model.MenuItem{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i)}).String(), Meal: meal, IsPreferred: prefs[meal]})
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) preference(add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.PreferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			detail(w, http.StatusBadRequest, "invalid body")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		email, ok := b.access[req.AccessToken]
		if !ok {
			detail(w, http.StatusUnauthorized, model.DetailUnauthenticated)
			return
		}
		if add {
			b.users[email].preferences[req.Meal] = true
		} else {
			delete(b.users[email].preferences, req.Meal)
		}
		w.WriteHeader(http.StatusOK)
	}
}
