package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"bulut3d/apps/coupon"
	"bulut3d/apps/user/model"
	"bulut3d/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type grants struct {
	mu    sync.Mutex
	users []uint
}

func (g *grants) GrantWelcome(_ context.Context, userID uint) (coupon.Coupon, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users = append(g.users, userID)
	return coupon.Coupon{UserID: userID, Code: "HOSGELDIN10"}, nil
}

func newTestService(t *testing.T) (*Service, *grants, *miniredis.Miniredis) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	g := &grants{}
	return NewService(db, rdb, jwt.NewSigner("test-secret", time.Hour), "Info@Bulut3DBaski.com", g), g, mr
}

func TestRegisterAndLogin(t *testing.T) {
	s, g, _ := newTestService(t)
	ctx := context.Background()

	res, err := s.Register(ctx, RegisterInput{Email: " Ayse@Example.com ", Password: "secret1", FullName: "Ayşe"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ayse@example.com", res.User.Email)
	assert.False(t, res.Session.IsAdmin)

	_, err = s.Register(ctx, RegisterInput{Email: "ayse@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.Login(ctx, "ayse@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := s.Login(ctx, "AYSE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.Session.UserID)

	assert.Equal(t, []uint{res.User.ID, res.User.ID}, g.users)
}

func TestRegisterValidates(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: "123"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdminFlagIgnoresCase(t *testing.T) {
	s, _, _ := newTestService(t)
	res, err := s.Register(context.Background(), RegisterInput{Email: "info@bulut3dbaski.com", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, res.Session.IsAdmin)
	assert.True(t, res.User.IsAdmin)

	sess, err := s.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin)
}

func TestLogoutRevokesToken(t *testing.T) {
	s, _, mr := newTestService(t)
	ctx := context.Background()
	res, err := s.Register(ctx, RegisterInput{Email: "ali@example.com", Password: "secret1"})
	require.NoError(t, err)

	sess, err := s.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx, sess))

	_, err = s.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrRevoked)
	assert.Greater(t, mr.TTL("jwt:revoked:"+sess.TokenID), time.Duration(0))

	_, err = s.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestProfileAndPassword(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	res, err := s.Register(ctx, RegisterInput{Email: "ali@example.com", Password: "secret1", FullName: "Ali"})
	require.NoError(t, err)
	id := res.User.ID

	p, err := s.UpdateProfile(ctx, id, "", "5551234567", "Ankara")
	require.NoError(t, err)
	assert.Equal(t, "Ali", p.FullName)
	assert.Equal(t, "5551234567", p.Phone)

	assert.ErrorIs(t, s.ChangePassword(ctx, id, "wrong", "newsecret"), ErrInvalidCredentials)
	require.NoError(t, s.ChangePassword(ctx, id, "secret1", "newsecret"))
	_, err = s.Login(ctx, "ali@example.com", "newsecret")
	assert.NoError(t, err)

	_, err = s.Me(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
