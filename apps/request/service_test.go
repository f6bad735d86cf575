package request

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"bulut3d/pkg/blob"
	"bulut3d/pkg/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&CustomRequest{}))
	return db
}

type outbox struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (o *outbox) Send(_ context.Context, to, subject, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, to+"|"+subject+"|"+body)
	return nil
}

func submission() Submission {
	return Submission{
		Name:        "Mehmet Kaya",
		Email:       "mehmet@example.com",
		Phone:       "5550001122",
		Material:    "PETG",
		Description: "Drone için yedek pervane koruması",
	}
}

func TestSubmitAndList(t *testing.T) {
	dir := t.TempDir()
	s := NewService(setupTestDB(t), blob.Local{Dir: dir}, &outbox{}, events.Nop{})
	ctx := context.Background()

	r, err := s.Submit(ctx, submission(), &Upload{
		Filename: "../../guard.stl", ContentType: "model/stl", Body: strings.NewReader("solid guard"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusNew, r.Status)
	require.True(t, strings.HasPrefix(r.FileURL, "file://"+dir))
	assert.True(t, strings.HasSuffix(r.FileURL, "/guard.stl"))
	raw, err := os.ReadFile(strings.TrimPrefix(r.FileURL, "file://"))
	require.NoError(t, err)
	assert.Equal(t, "solid guard", string(raw))

	_, err = s.Submit(ctx, submission(), nil)
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSubmitValidates(t *testing.T) {
	s := NewService(setupTestDB(t), nil, nil, nil)
	in := submission()
	in.Email = "not-an-email"
	in.Description = " "
	_, err := s.Submit(context.Background(), in, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Submit(context.Background(), submission(), &Upload{Filename: "x.stl", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReview(t *testing.T) {
	s := NewService(setupTestDB(t), nil, &outbox{}, nil)
	ctx := context.Background()
	r, err := s.Submit(ctx, submission(), nil)
	require.NoError(t, err)

	got, err := s.Review(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReviewed, got.Status)
	got, err = s.Review(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReviewed, got.Status)

	_, err = s.SendOffer(ctx, r.ID, decimal.NewFromInt(100), "")
	require.NoError(t, err)
	_, err = s.Review(ctx, r.ID)
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)

	_, err = s.Review(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendOfferFromNewSkipsReview(t *testing.T) {
	mail := &outbox{}
	s := NewService(setupTestDB(t), nil, mail, nil)
	ctx := context.Background()
	r, err := s.Submit(ctx, submission(), nil)
	require.NoError(t, err)

	got, err := s.SendOffer(ctx, r.ID, decimal.NewFromInt(250), "3 gün içinde teslim")
	require.NoError(t, err)
	assert.Equal(t, StatusOffered, got.Status)
	assert.Equal(t, "250", got.OfferPrice.Decimal.String())

	stored, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOffered, stored.Status)
	require.True(t, stored.OfferPrice.Valid)
	assert.True(t, stored.OfferPrice.Decimal.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "3 gün içinde teslim", stored.OfferNote)
	assert.NotNil(t, stored.OfferDate)

	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0], "mehmet@example.com|")
	assert.Contains(t, mail.sent[0], "250.00 TL")
}

func TestSendOfferValidatesAndSurvivesMailFailure(t *testing.T) {
	mail := &outbox{err: errors.New("sendgrid down")}
	s := NewService(setupTestDB(t), nil, mail, nil)
	ctx := context.Background()
	r, err := s.Submit(ctx, submission(), nil)
	require.NoError(t, err)

	_, err = s.SendOffer(ctx, r.ID, decimal.Zero, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.SendOffer(ctx, 404, decimal.NewFromInt(10), "")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.SendOffer(ctx, r.ID, decimal.RequireFromString("99.90"), "")
	require.NoError(t, err)
	assert.Equal(t, StatusOffered, got.Status)
}
