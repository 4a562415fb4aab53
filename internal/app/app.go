package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"barrabusiness/internal/notify"
	"barrabusiness/internal/store"
	"barrabusiness/pkg/domain"
)

// AdminID is the fixed identifier of the bootstrap administrator.
const AdminID = "super-admin-001"

const maxDescriptionRunes = 280

// AdminIdentity is the reference identity enforced on every load.
// It is supplied through configuration, never compiled in.
type AdminIdentity struct {
	Name     string
	Email    string
	Password string
}

// Config wires the application's collaborators.
type Config struct {
	Store       store.Store
	Notifier    *notify.Notifier
	Admin       AdminIdentity
	RegionMatch RegionPolicy
}

// App is the matching and record engine. Every operation is one
// load-repair, one or more entity mutations, one save.
type App struct {
	store    store.Store
	notifier *notify.Notifier
	admin    AdminIdentity
	region   RegionPolicy
}

// New validates the wiring and constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if strings.TrimSpace(cfg.Admin.Email) == "" || cfg.Admin.Password == "" {
		return nil, fmt.Errorf("admin email and password are required")
	}
	if cfg.Admin.Name == "" {
		cfg.Admin.Name = "Administrador Master"
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.New(nil, nil)
	}
	region := cfg.RegionMatch
	if region == "" {
		region = RegionSubstring
	}
	if region != RegionSubstring && region != RegionExact {
		return nil, fmt.Errorf("unknown region match policy %q", region)
	}
	return &App{
		store:    cfg.Store,
		notifier: notifier,
		admin:    cfg.Admin,
		region:   region,
	}, nil
}

// load fetches the document and enforces the administrator invariant:
// exactly one user with AdminID whose email and password match the
// configured identity. Any repair is persisted before load returns so
// downstream readers always observe a healed document.
func (a *App) load(ctx context.Context) (domain.Document, error) {
	doc, err := a.store.Load(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load store: %w", err)
	}
	if a.ensureAdmin(&doc) {
		if err := a.store.Save(ctx, doc); err != nil {
			return domain.Document{}, fmt.Errorf("persist admin bootstrap: %w", err)
		}
	}
	return doc, nil
}

// ensureAdmin heals or creates the bootstrap administrator in place and
// reports whether the document changed.
func (a *App) ensureAdmin(doc *domain.Document) bool {
	for i := range doc.Users {
		if doc.Users[i].ID != AdminID {
			continue
		}
		if doc.Users[i].Email == a.admin.Email && doc.Users[i].Password == a.admin.Password {
			return false
		}
		doc.Users[i].Email = a.admin.Email
		doc.Users[i].Password = a.admin.Password
		return true
	}
	doc.Users = append(doc.Users, domain.User{
		ID:        AdminID,
		Name:      a.admin.Name,
		Email:     a.admin.Email,
		Password:  a.admin.Password,
		Role:      domain.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	})
	return true
}

// --- properties ---

// AddProperty validates and appends a listing. New registrations always
// enter moderation: the stored status is PENDING regardless of input.
func (a *App) AddProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	if err := validateProperty(p); err != nil {
		return domain.Property{}, err
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	p.Status = domain.PropertyPending
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	doc, err := a.load(ctx)
	if err != nil {
		return domain.Property{}, err
	}
	doc.Properties = append(doc.Properties, p)
	if err := a.store.Save(ctx, doc); err != nil {
		return domain.Property{}, fmt.Errorf("save property: %w", err)
	}
	a.notifier.Notify(ctx, notify.EventNewProperty, p.ID)
	return p, nil
}

// ListProperties returns all listings. Records persisted before the
// moderation workflow existed carry no status; they are reported as
// APPROVED without rewriting storage.
func (a *App) ListProperties(ctx context.Context) ([]domain.Property, error) {
	doc, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return withDefaultStatus(doc.Properties), nil
}

// SetPropertyStatus moves a listing to the given moderation state.
// Returns false when no listing carries the id; racing with a deletion
// is not an error.
func (a *App) SetPropertyStatus(ctx context.Context, id string, status domain.PropertyStatus) (bool, error) {
	if !domain.ValidPropertyStatus(status) {
		return false, fmt.Errorf("%w: unknown property status %q", ErrInvalid, status)
	}
	doc, err := a.load(ctx)
	if err != nil {
		return false, err
	}
	idx := findProperty(doc.Properties, id)
	if idx < 0 {
		return false, nil
	}
	doc.Properties[idx].Status = status
	if err := a.store.Save(ctx, doc); err != nil {
		return false, fmt.Errorf("save property status: %w", err)
	}
	return true, nil
}

// RemoveProperty deletes a listing. Matches referencing it are kept;
// they are weak references and readers tolerate the dangle.
func (a *App) RemoveProperty(ctx context.Context, id string) (bool, error) {
	doc, err := a.load(ctx)
	if err != nil {
		return false, err
	}
	idx := findProperty(doc.Properties, id)
	if idx < 0 {
		return false, nil
	}
	doc.Properties = append(doc.Properties[:idx], doc.Properties[idx+1:]...)
	if err := a.store.Save(ctx, doc); err != nil {
		return false, fmt.Errorf("save property removal: %w", err)
	}
	return true, nil
}

// ToggleFeatured flips the highlight flag on a listing.
func (a *App) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	doc, err := a.load(ctx)
	if err != nil {
		return false, err
	}
	idx := findProperty(doc.Properties, id)
	if idx < 0 {
		return false, nil
	}
	doc.Properties[idx].IsFeatured = !doc.Properties[idx].IsFeatured
	if err := a.store.Save(ctx, doc); err != nil {
		return false, fmt.Errorf("save featured toggle: %w", err)
	}
	return true, nil
}

// --- interests ---

// AddInterest appends a buyer's criteria, matches them against approved
// listings and materializes one lead per qualifying property. The
// created leads are returned alongside the stored interest.
func (a *App) AddInterest(ctx context.Context, interest domain.BuyerInterest) (domain.BuyerInterest, []domain.LeadMatch, error) {
	if err := validateInterest(interest); err != nil {
		return domain.BuyerInterest{}, nil, err
	}
	if strings.TrimSpace(interest.ID) == "" {
		interest.ID = uuid.NewString()
	}
	if interest.CreatedAt.IsZero() {
		interest.CreatedAt = time.Now().UTC()
	}
	doc, err := a.load(ctx)
	if err != nil {
		return domain.BuyerInterest{}, nil, err
	}
	doc.Interests = append(doc.Interests, interest)

	created := make([]domain.LeadMatch, 0)
	for _, p := range withDefaultStatus(doc.Properties) {
		if !matches(p, interest, a.region) {
			continue
		}
		lead := domain.LeadMatch{
			ID:           uuid.NewString(),
			PropertyID:   p.ID,
			BuyerID:      interest.ID,
			BuyerName:    interest.BuyerName,
			BuyerContact: interest.BuyerPhone,
			Status:       domain.MatchPending,
			CreatedAt:    time.Now().UTC(),
		}
		if appendMatch(&doc, lead) {
			created = append(created, lead)
		}
	}
	if err := a.store.Save(ctx, doc); err != nil {
		return domain.BuyerInterest{}, nil, fmt.Errorf("save interest: %w", err)
	}
	for _, lead := range created {
		a.notifier.Notify(ctx, notify.EventNewLead, lead.ID)
	}
	return interest, created, nil
}

// ListInterests returns all declared criteria verbatim.
func (a *App) ListInterests(ctx context.Context) ([]domain.BuyerInterest, error) {
	doc, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Interests, nil
}

// --- matches ---

// AddMatch stores a lead unless one already exists for the same
// (property, buyer contact) pair. The stored status is always PENDING.
// Returns false on the duplicate no-op.
func (a *App) AddMatch(ctx context.Context, m domain.LeadMatch) (bool, error) {
	if strings.TrimSpace(m.PropertyID) == "" || strings.TrimSpace(m.BuyerContact) == "" {
		return false, fmt.Errorf("%w: propertyId and buyerContact are required", ErrInvalid)
	}
	if strings.TrimSpace(m.ID) == "" {
		m.ID = uuid.NewString()
	}
	m.Status = domain.MatchPending
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	doc, err := a.load(ctx)
	if err != nil {
		return false, err
	}
	if !appendMatch(&doc, m) {
		return false, nil
	}
	if err := a.store.Save(ctx, doc); err != nil {
		return false, fmt.Errorf("save match: %w", err)
	}
	a.notifier.Notify(ctx, notify.EventNewLead, m.ID)
	return true, nil
}

// ListMatches returns all leads, including ones whose property has been
// removed since.
func (a *App) ListMatches(ctx context.Context) ([]domain.LeadMatch, error) {
	doc, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Matches, nil
}

// UpdateMatchStatus sets a lead's workflow state. All transitions among
// the three states are allowed; ordering discipline belongs to the UI.
func (a *App) UpdateMatchStatus(ctx context.Context, id string, status domain.MatchStatus) (bool, error) {
	if !domain.ValidMatchStatus(status) {
		return false, fmt.Errorf("%w: unknown match status %q", ErrInvalid, status)
	}
	doc, err := a.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range doc.Matches {
		if doc.Matches[i].ID != id {
			continue
		}
		doc.Matches[i].Status = status
		if err := a.store.Save(ctx, doc); err != nil {
			return false, fmt.Errorf("save match status: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// --- users ---

// ListUsers returns all staff accounts.
func (a *App) ListUsers(ctx context.Context) ([]domain.User, error) {
	doc, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Users, nil
}

// AddUser appends a staff account. Emails are unique, compared exactly.
func (a *App) AddUser(ctx context.Context, u domain.User) (domain.User, error) {
	if strings.TrimSpace(u.Email) == "" || u.Password == "" {
		return domain.User{}, fmt.Errorf("%w: email and password are required", ErrInvalid)
	}
	if u.Role != domain.RoleAdmin && u.Role != domain.RoleManager {
		u.Role = domain.RoleManager
	}
	if strings.TrimSpace(u.ID) == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	doc, err := a.load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, existing := range doc.Users {
		if existing.Email == u.Email {
			return domain.User{}, ErrDuplicateEmail
		}
	}
	doc.Users = append(doc.Users, u)
	if err := a.store.Save(ctx, doc); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// RemoveUser deletes a staff account. The bootstrap administrator can
// never be removed.
func (a *App) RemoveUser(ctx context.Context, id string) (bool, error) {
	if id == AdminID {
		return false, ErrProtectedRecord
	}
	doc, err := a.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range doc.Users {
		if doc.Users[i].ID != id {
			continue
		}
		doc.Users = append(doc.Users[:i], doc.Users[i+1:]...)
		if err := a.store.Save(ctx, doc); err != nil {
			return false, fmt.Errorf("save user removal: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// --- notifications ---

// PendingNotifications reports which dashboard badges are waiting.
func (a *App) PendingNotifications(ctx context.Context) (notify.Pending, error) {
	return a.notifier.Pending(ctx)
}

// AckNotifications clears all pending dashboard badges.
func (a *App) AckNotifications(ctx context.Context) error {
	return a.notifier.Ack(ctx)
}

// --- helpers ---

// findProperty compares ids as trimmed strings; older clients submitted
// numeric ids and the comparison must tolerate both shapes.
func findProperty(properties []domain.Property, id string) int {
	want := strings.TrimSpace(id)
	for i := range properties {
		if strings.TrimSpace(properties[i].ID) == want {
			return i
		}
	}
	return -1
}

func withDefaultStatus(properties []domain.Property) []domain.Property {
	res := make([]domain.Property, len(properties))
	for i, p := range properties {
		if p.Status == "" {
			p.Status = domain.PropertyApproved
		}
		res[i] = p
	}
	return res
}

// appendMatch enforces the (propertyId, buyerContact) uniqueness
// invariant and reports whether the lead was appended.
func appendMatch(doc *domain.Document, lead domain.LeadMatch) bool {
	for _, m := range doc.Matches {
		if m.PropertyID == lead.PropertyID && m.BuyerContact == lead.BuyerContact {
			return false
		}
	}
	doc.Matches = append(doc.Matches, lead)
	return true
}

func validateProperty(p domain.Property) error {
	if !domain.ValidPropertyType(p.Type) {
		return fmt.Errorf("%w: unknown property type %q", ErrInvalid, p.Type)
	}
	if p.Bedrooms < 0 {
		return fmt.Errorf("%w: bedrooms must be >= 0", ErrInvalid)
	}
	if p.Area < 0 {
		return fmt.Errorf("%w: area must be >= 0", ErrInvalid)
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalid)
	}
	if utf8.RuneCountInString(p.Description) > maxDescriptionRunes {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalid, maxDescriptionRunes)
	}
	return nil
}

func validateInterest(i domain.BuyerInterest) error {
	if !domain.ValidPropertyType(i.Type) {
		return fmt.Errorf("%w: unknown property type %q", ErrInvalid, i.Type)
	}
	if i.MinBedrooms < 0 {
		return fmt.Errorf("%w: minBedrooms must be >= 0", ErrInvalid)
	}
	if i.MinArea < 0 {
		return fmt.Errorf("%w: minArea must be >= 0", ErrInvalid)
	}
	if i.MaxPrice != nil && *i.MaxPrice < 0 {
		return fmt.Errorf("%w: maxPrice must be >= 0", ErrInvalid)
	}
	return nil
}
