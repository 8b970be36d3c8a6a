package web

import (
	"gophergrub/internal/model"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	name, err := h.grub.DisplayName(r.Context(), sess)
	if err != nil {
		h.log.Warn("display name unavailable", slog.String("error", err.Error()))
	}

	h.render(w, sess, http.StatusOK, "home", homeData{DisplayName: name})
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, sessionFrom(r), http.StatusOK, "login", formData{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "web.Login"
	sess := sessionFrom(r)

	if err := r.ParseForm(); err != nil {
		h.render(w, sess, http.StatusBadRequest, "login", formData{Error: "invalid form"})
		return
	}
	email := r.PostFormValue("email")

	res, err := h.grub.Login(r.Context(), sess, email, r.PostFormValue("password"))
	if err != nil {
		h.fail(w, r, sess, op, err)
		return
	}
	if !res.IsOk() {
		h.render(w, sess, http.StatusBadRequest, "login", formData{Error: res.Err(), Email: email})
		return
	}

	h.redirect(w, r, sess, "/menu")
}

func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, sessionFrom(r), http.StatusOK, "signup", formData{})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	const op = "web.Signup"
	sess := sessionFrom(r)

	if err := r.ParseForm(); err != nil {
		h.render(w, sess, http.StatusBadRequest, "signup", formData{Error: "invalid form"})
		return
	}
	email := r.PostFormValue("email")
	displayName := r.PostFormValue("displayName")

	res, err := h.grub.Signup(r.Context(), sess, email, r.PostFormValue("password"), displayName)
	if err != nil {
		h.fail(w, r, sess, op, err)
		return
	}
	if !res.IsOk() {
		h.render(w, sess, http.StatusBadRequest, "signup", formData{Error: res.Err(), Email: email, DisplayName: displayName})
		return
	}

	h.redirect(w, r, sess, "/menu")
}

type menuData struct {
	DiningHall string
	Date       string
	Mealtime   model.Mealtime
	Mealtimes  []model.Mealtime
	Searched   bool
	Items      []model.MenuItem
	Error      string
}

func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	const op = "web.Menu"
	sess := sessionFrom(r)

	q := r.URL.Query()
	query := model.MealQuery{
		DiningHall: q.Get("diningHall"),
		Date:       q.Get("date"),
		Mealtime:   model.ParseMealtime(q.Get("mealtime")),
	}

	data := menuData{
		DiningHall: query.DiningHall,
		Date:       query.Date,
		Mealtime:   query.Mealtime,
		Mealtimes:  model.Mealtimes,
	}

	if query.DiningHall == "" && query.Date == "" {
		data.Date = model.NormalizeDate(time.Now())
		h.render(w, sess, http.StatusOK, "menu", data)
		return
	}

	res, err := h.grub.GetMenu(r.Context(), sess, query)
	if err != nil {
		h.fail(w, r, sess, op, err)
		return
	}
	if !res.IsOk() {
		data.Error = res.Err()
		h.render(w, sess, http.StatusBadRequest, "menu", data)
		return
	}

	data.Searched = true
	data.Items = res.Data()
	h.render(w, sess, http.StatusOK, "menu", data)
}

func (h *Handler) TogglePreference(w http.ResponseWriter, r *http.Request) {
	const op = "web.TogglePreference"
	sess := sessionFrom(r)

	if err := r.ParseForm(); err != nil {
		h.render(w, sess, http.StatusBadRequest, "error", errorData{Message: "invalid form"})
		return
	}

	preferred, err := strconv.ParseBool(r.PostFormValue("isPreferred"))
	if err != nil {
		h.render(w, sess, http.StatusBadRequest, "error", errorData{Message: "isPreferred must be true or false"})
		return
	}
	item := model.MenuItem{
		ID:          r.PostFormValue("id"),
		Meal:        r.PostFormValue("meal"),
		IsPreferred: preferred,
	}

	res, err := h.grub.TogglePreference(r.Context(), sess, item)
	if err != nil {
		h.fail(w, r, sess, op, err)
		return
	}
	if !res.IsOk() {
		h.render(w, sess, http.StatusBadRequest, "error", errorData{Message: res.Err()})
		return
	}

	back := url.Values{}
	back.Set("diningHall", r.PostFormValue("diningHall"))
	back.Set("date", r.PostFormValue("date"))
	back.Set("mealtime", r.PostFormValue("mealtime"))
	h.redirect(w, r, sess, "/menu?"+back.Encode())
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "web.Logout"
	sess := sessionFrom(r)

	res, err := h.grub.Logout(r.Context(), sess)
	if err != nil {
		h.fail(w, r, sess, op, err)
		return
	}
	if !res.IsOk() {
		h.render(w, sess, http.StatusBadRequest, "error", errorData{Message: res.Err()})
		return
	}

	h.redirect(w, r, sess, "/")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
