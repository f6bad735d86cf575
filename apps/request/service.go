package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"bulut3d/pkg/blob"
	"bulut3d/pkg/events"
	"bulut3d/pkg/mailer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("request: not found")
	ErrInvalidInput         = errors.New("request: invalid input")
	ErrTransitionNotAllowed = errors.New("request: status transition not allowed")
)

type Submission struct {
	Name        string
	Email       string
	Phone       string
	Material    string
	Description string
}

// Upload is an optional attachment (STL, sketch, photo).
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type Service struct {
	db        *gorm.DB
	store     blob.Store
	mail      mailer.Sender
	publisher events.Publisher
	now       func() time.Time
}

func NewService(db *gorm.DB, store blob.Store, mail mailer.Sender, publisher events.Publisher) *Service {
	if mail == nil {
		mail = mailer.Log{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{db: db, store: store, mail: mail, publisher: publisher, now: time.Now}
}

func (in Submission) validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if !strings.Contains(in.Email, "@") {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// Submit stores a new request in status Yeni. The attachment, if any, is
// uploaded first so a failed upload leaves nothing behind.
func (s *Service) Submit(ctx context.Context, in Submission, file *Upload) (CustomRequest, error) {
	if err := in.validate(); err != nil {
		return CustomRequest{}, err
	}
	r := CustomRequest{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Material:    in.Material,
		Description: strings.TrimSpace(in.Description),
		Status:      StatusNew,
	}
	if file != nil && file.Body != nil {
		if s.store == nil {
			return r, fmt.Errorf("%w: uploads are disabled", ErrInvalidInput)
		}
		name := fmt.Sprintf("requests/%s/%s", uuid.NewString(), path.Base("/"+file.Filename))
		url, err := s.store.Put(ctx, name, file.ContentType, file.Body)
		if err != nil {
			return r, fmt.Errorf("upload request file: %w", err)
		}
		r.FileURL = url
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return r, fmt.Errorf("create custom request: %w", err)
	}
	events.Emit(ctx, s.publisher, events.RequestSubmitted, r)
	return r, nil
}

func (s *Service) Get(ctx context.Context, id uint) (CustomRequest, error) {
	var r CustomRequest
	err := s.db.WithContext(ctx).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r, ErrNotFound
	}
	return r, err
}

func (s *Service) List(ctx context.Context) ([]CustomRequest, error) {
	var list []CustomRequest
	err := s.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&list).Error
	return list, err
}

// Review marks a new request as seen. Reviewing twice is a no-op; a request
// that already has an offer cannot go back.
func (s *Service) Review(ctx context.Context, id uint) (CustomRequest, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return r, err
	}
	switch r.Status {
	case StatusReviewed:
		return r, nil
	case StatusOffered:
		return r, fmt.Errorf("%w: offer already sent", ErrTransitionNotAllowed)
	}
	err = s.db.WithContext(ctx).Model(&CustomRequest{}).Where("id = ?", id).Update("status", StatusReviewed).Error
	if err != nil {
		return r, fmt.Errorf("review custom request: %w", err)
	}
	r.Status = StatusReviewed
	return r, nil
}

// SendOffer records a price quote from any status and mails it to the
// customer. A failed mail does not undo the offer.
func (s *Service) SendOffer(ctx context.Context, id uint, price decimal.Decimal, note string) (CustomRequest, error) {
	if !price.IsPositive() {
		return CustomRequest{}, fmt.Errorf("%w: offer price must be positive", ErrInvalidInput)
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return r, err
	}
	now := s.now()
	note = strings.TrimSpace(note)
	err = s.db.WithContext(ctx).Model(&CustomRequest{}).Where("id = ?", id).Updates(map[string]any{
		"status":      StatusOffered,
		"offer_price": price,
		"offer_note":  note,
		"offer_date":  now,
	}).Error
	if err != nil {
		return r, fmt.Errorf("send offer: %w", err)
	}
	r.Status = StatusOffered
	r.OfferPrice = decimal.NewNullDecimal(price)
	r.OfferNote = note
	r.OfferDate = &now

	if err := s.mail.Send(ctx, r.Email, offerSubject(r), offerBody(r)); err != nil {
		log.Printf("[request] offer mail for #%d failed: %v", r.ID, err)
	}
	events.Emit(ctx, s.publisher, events.RequestOfferSent, r)
	return r, nil
}

func offerSubject(r CustomRequest) string {
	return fmt.Sprintf("Bulut 3D Baskı - Özel sipariş teklifiniz (#%d)", r.ID)
}

func offerBody(r CustomRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Merhaba %s,\n\n", r.Name)
	fmt.Fprintf(&b, "Özel baskı talebiniz için teklifimiz: %s TL\n", r.OfferPrice.Decimal.StringFixed(2))
	if r.OfferNote != "" {
		fmt.Fprintf(&b, "\nNot: %s\n", r.OfferNote)
	}
	b.WriteString("\nBulut 3D Baskı\n")
	return b.String()
}
