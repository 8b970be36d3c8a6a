package mock

import (
	"context"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"gophergrub/internal/model"
	"gophergrub/internal/result"
	"gophergrub/internal/session"
)

// ===================== PROVIDER =====================

type MockProvider struct {
	mock.Mock
}

func NewProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Login(ctx context.Context, sess *session.Session, email, password string) (result.Result[model.LoginData, string], error) {
	args := m.Called(ctx, sess, email, password)
	return args.Get(0).(result.Result[model.LoginData, string]), args.Error(1)
}

func (m *MockProvider) Signup(ctx context.Context, sess *session.Session, email, password, displayName string) (result.Result[struct{}, string], error) {
	args := m.Called(ctx, sess, email, password, displayName)
	return args.Get(0).(result.Result[struct{}, string]), args.Error(1)
}

func (m *MockProvider) Logout(ctx context.Context, sess *session.Session) (result.Result[struct{}, string], error) {
	args := m.Called(ctx, sess)
	return args.Get(0).(result.Result[struct{}, string]), args.Error(1)
}

func (m *MockProvider) Refresh(ctx context.Context, sess *session.Session) (result.Result[string, string], error) {
	args := m.Called(ctx, sess)
	return args.Get(0).(result.Result[string, string]), args.Error(1)
}

func (m *MockProvider) GetMenu(ctx context.Context, sess *session.Session, day string, mealtime model.Mealtime, diningHall string) (result.Result[[]model.MenuItem, string], error) {
	args := m.Called(ctx, sess, day, mealtime, diningHall)
	return args.Get(0).(result.Result[[]model.MenuItem, string]), args.Error(1)
}

func (m *MockProvider) AddFoodPreference(ctx context.Context, sess *session.Session, meal string) (result.Result[struct{}, string], error) {
	args := m.Called(ctx, sess, meal)
	return args.Get(0).(result.Result[struct{}, string]), args.Error(1)
}

func (m *MockProvider) RemoveFoodPreference(ctx context.Context, sess *session.Session, meal string) (result.Result[struct{}, string], error) {
	args := m.Called(ctx, sess, meal)
	return args.Get(0).(result.Result[struct{}, string]), args.Error(1)
}

// ===================== STORAGE =====================

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Save(ctx context.Context, sessionID, key, value string) error {
	args := m.Called(ctx, sessionID, key, value)
	return args.Error(0)
}

func (m *MockStorage) Get(ctx context.Context, sessionID, key string) (string, error) {
	args := m.Called(ctx, sessionID, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// ===================== REDIS CLIENT =====================

type MockRedisClient struct {
	mock.Mock
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{}
}

func (m *MockRedisClient) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	args := m.Called(ctx, key, field)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	args := m.Called(ctx, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]redis.Cmder), args.Error(1)
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	args := m.Called(ctx)
	return args.Get(0).(*redis.StatusCmd)
}

// ===================== GRUB SERVICE =====================

type MockGrub struct {
	mock.Mock
}

func NewMockGrub() *MockGrub {
	return &MockGrub{}
}

func (m *MockGrub) Login(ctx context.Context, sess *session.Session, email, password string) (result.Result[model.LoginData, string], error) {
	args := m.Called(ctx, sess, email, password)
	return args.Get(0).(result.Result[model.LoginData, string]), args.Error(1)
}

func (m *MockGrub) Signup(ctx context.Context, sess *session.Session, email, password, displayName string) (result.Result[struct{}, string], error) {
	args := m.Called(ctx, sess, email, password, displayName)
	return args.Get(0).(result.Result[struct{}, string]), args.Error(1)
}

func (m *MockGrub) Logout(ctx context.Context, sess *session.Session) (result.Result[struct{}, string], error) {
	args := m.Called(ctx, sess)
	return args.Get(0).(result.Result[struct{}, string]), args.Error(1)
}

func (m *MockGrub) DisplayName(ctx context.Context, sess *session.Session) (string, error) {
	args := m.Called(ctx, sess)
	return args.String(0), args.Error(1)
}

func (m *MockGrub) GetMenu(ctx context.Context, sess *session.Session, q model.MealQuery) (result.Result[[]model.MenuItem, string], error) {
	args := m.Called(ctx, sess, q)
	return args.Get(0).(result.Result[[]model.MenuItem, string]), args.Error(1)
}

func (m *MockGrub) SetPreference(ctx context.Context, sess *session.Session, item model.MenuItem, preferred bool) (result.Result[model.MenuItem, string], error) {
	args := m.Called(ctx, sess, item, preferred)
	return args.Get(0).(result.Result[model.MenuItem, string]), args.Error(1)
}

func (m *MockGrub) TogglePreference(ctx context.Context, sess *session.Session, item model.MenuItem) (result.Result[model.MenuItem, string], error) {
	args := m.Called(ctx, sess, item)
	return args.Get(0).(result.Result[model.MenuItem, string]), args.Error(1)
}
