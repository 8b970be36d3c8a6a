package grub

import (
	"context"
	"errors"
	"fmt"
	"gophergrub/internal/model"
	"gophergrub/internal/provider/backend"
	"gophergrub/internal/result"
	"gophergrub/internal/session"
	"gophergrub/internal/storage"
	"gophergrub/internal/web"
	"log/slog"
)

type Grub struct {
	provider backend.Provider
	storage  storage.Storage
	log      *slog.Logger
}

func NewService(provider backend.Provider, storage storage.Storage, log *slog.Logger) web.Grub {
	return &Grub{
		provider: provider,
		storage:  storage,
		log:      log,
	}
}

func (g *Grub) Login(ctx context.Context, sess *session.Session, email, password string) (result.Result[model.LoginData, string], error) {
	const op = "grub.Login"

	res, err := g.provider.Login(ctx, sess, email, password)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	if !res.IsOk() {
		return res, nil
	}

	g.remember(ctx, op, sess, res.Data().DisplayName)
	g.log.Info("user logged in", slog.String("op", op), slog.String("session", sess.ID))

	return res, nil
}

func (g *Grub) Signup(ctx context.Context, sess *session.Session, email, password, displayName string) (result.Result[struct{}, string], error) {
	const op = "grub.Signup"

	res, err := g.provider.Signup(ctx, sess, email, password, displayName)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	if !res.IsOk() {
		return res, nil
	}

	// the backend answers signup with an empty body, so the chosen name is kept
	g.remember(ctx, op, sess, displayName)
	g.log.Info("user signed up", slog.String("op", op), slog.String("session", sess.ID))

	return res, nil
}

// Logout ends the session on the backend and always forgets it locally, even
// when the backend refuses or cannot be reached.
func (g *Grub) Logout(ctx context.Context, sess *session.Session) (result.Result[struct{}, string], error) {
	const op = "grub.Logout"

	res, err := g.provider.Logout(ctx, sess)

	if clearErr := g.storage.Clear(ctx, sess.ID); clearErr != nil {
		g.log.Warn("failed to clear session data",
			slog.String("op", op),
			slog.String("session", sess.ID),
			slog.String("error", clearErr.Error()))
	}
	sess.Forget()

	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (g *Grub) DisplayName(ctx context.Context, sess *session.Session) (string, error) {
	const op = "grub.DisplayName"

	name, err := g.storage.Get(ctx, sess.ID, session.KeyDisplayName)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	sess.DisplayName = name
	return name, nil
}

func (g *Grub) GetMenu(ctx context.Context, sess *session.Session, q model.MealQuery) (result.Result[[]model.MenuItem, string], error) {
	const op = "grub.GetMenu"

	if err := q.Validate(); err != nil {
		return result.Err[[]model.MenuItem](err.Error()), nil
	}

	res, err := g.provider.GetMenu(ctx, sess, q.Date, q.Mealtime, q.DiningHall)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SetPreference marks the item as preferred or not. The returned item only
// carries the new flag when the backend accepted the change.
func (g *Grub) SetPreference(ctx context.Context, sess *session.Session, item model.MenuItem, preferred bool) (result.Result[model.MenuItem, string], error) {
	const op = "grub.SetPreference"

	call := g.provider.RemoveFoodPreference
	if preferred {
		call = g.provider.AddFoodPreference
	}

	res, err := call(ctx, sess, item.Meal)
	if err != nil {
		return result.Result[model.MenuItem, string]{}, fmt.Errorf("%s: %w", op, err)
	}
	if !res.IsOk() {
		return result.Err[model.MenuItem](res.Err()), nil
	}

	item.IsPreferred = preferred
	return result.Ok[model.MenuItem, string](item), nil
}

func (g *Grub) TogglePreference(ctx context.Context, sess *session.Session, item model.MenuItem) (result.Result[model.MenuItem, string], error) {
	return g.SetPreference(ctx, sess, item, !item.IsPreferred)
}

func (g *Grub) remember(ctx context.Context, op string, sess *session.Session, displayName string) {
	sess.DisplayName = displayName

	if err := g.storage.Save(ctx, sess.ID, session.KeyDisplayName, displayName); err != nil {
		g.log.Warn("failed to persist display name",
			slog.String("op", op),
			slog.String("session", sess.ID),
			slog.String("error", err.Error()))
	}
}
