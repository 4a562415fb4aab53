package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"barrabusiness/internal/store"
	"barrabusiness/pkg/domain"
)

var testAdmin = AdminIdentity{
	Name:     "Administrador Master",
	Email:    "admin@example.com",
	Password: "reference-secret",
}

func newTestApp(t *testing.T) (*App, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	a, err := New(Config{Store: mem, Admin: testAdmin})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, mem
}

func seedDocument(t *testing.T, mem *store.MemoryStore, doc domain.Document) {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal seed document: %v", err)
	}
	mem.SeedRaw(data)
}

func loadDocument(t *testing.T, mem *store.MemoryStore) domain.Document {
	t.Helper()
	doc, err := mem.Load(context.Background())
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

func TestBootstrapCreatesAdminOnEmptyStore(t *testing.T) {
	a, mem := newTestApp(t)

	users, err := a.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(users))
	}
	admin := users[0]
	if admin.ID != AdminID || admin.Email != testAdmin.Email || admin.Password != testAdmin.Password {
		t.Fatalf("unexpected admin record: %+v", admin)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("admin role = %q, want %q", admin.Role, domain.RoleAdmin)
	}

	// The repair must be persisted before the load returns.
	doc := loadDocument(t, mem)
	if len(doc.Users) != 1 || doc.Users[0].ID != AdminID {
		t.Fatalf("admin not persisted: %+v", doc.Users)
	}
}

func TestBootstrapHealsTamperedAdmin(t *testing.T) {
	a, mem := newTestApp(t)
	seedDocument(t, mem, domain.Document{
		Users: []domain.User{{
			ID:        AdminID,
			Name:      "Administrador Master",
			Email:     "attacker@example.com",
			Password:  "stolen",
			Role:      domain.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		}},
	})

	users, err := a.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(users))
	}
	if users[0].Email != testAdmin.Email || users[0].Password != testAdmin.Password {
		t.Fatalf("admin not healed: %+v", users[0])
	}
}

func TestBootstrapIsIdempotentAcrossLoads(t *testing.T) {
	a, mem := newTestApp(t)

	for i := 0; i < 3; i++ {
		if _, err := a.ListUsers(context.Background()); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	doc := loadDocument(t, mem)
	admins := 0
	for _, u := range doc.Users {
		if u.ID == AdminID {
			admins++
		}
	}
	if admins != 1 {
		t.Fatalf("expected exactly one admin after repeated loads, got %d", admins)
	}
}

func TestAddPropertyForcesPendingStatus(t *testing.T) {
	a, _ := newTestApp(t)

	created, err := a.AddProperty(context.Background(), domain.Property{
		Type:   domain.TypeApartment,
		Region: "Barra",
		Status: domain.PropertyApproved,
	})
	if err != nil {
		t.Fatalf("add property: %v", err)
	}
	if created.Status != domain.PropertyPending {
		t.Fatalf("status = %q, want PENDING", created.Status)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}

	properties, err := a.ListProperties(context.Background())
	if err != nil {
		t.Fatalf("list properties: %v", err)
	}
	if len(properties) != 1 || properties[0].Status != domain.PropertyPending {
		t.Fatalf("unexpected stored properties: %+v", properties)
	}
}

func TestAddPropertyRejectsInvalidInput(t *testing.T) {
	a, _ := newTestApp(t)

	cases := []struct {
		name     string
		property domain.Property
	}{
		{"unknown type", domain.Property{Type: "Iglu"}},
		{"negative bedrooms", domain.Property{Type: domain.TypeHouse, Bedrooms: -1}},
		{"negative area", domain.Property{Type: domain.TypeHouse, Area: -10}},
	}
	for _, tc := range cases {
		if _, err := a.AddProperty(context.Background(), tc.property); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestListPropertiesDefaultsLegacyStatusWithoutRewriting(t *testing.T) {
	a, mem := newTestApp(t)
	seedDocument(t, mem, domain.Document{
		Properties: []domain.Property{{
			ID:     "legacy-1",
			Type:   domain.TypeHouse,
			Region: "Recreio",
		}},
	})

	properties, err := a.ListProperties(context.Background())
	if err != nil {
		t.Fatalf("list properties: %v", err)
	}
	if len(properties) != 1 || properties[0].Status != domain.PropertyApproved {
		t.Fatalf("legacy status not defaulted: %+v", properties)
	}

	// Read-time migration only: storage keeps the record as-is.
	doc := loadDocument(t, mem)
	if doc.Properties[0].Status != "" {
		t.Fatalf("storage was rewritten: %+v", doc.Properties[0])
	}
}

func TestSetPropertyStatusMissingIDIsNoOp(t *testing.T) {
	a, mem := newTestApp(t)
	if _, err := a.AddProperty(context.Background(), domain.Property{Type: domain.TypeLand}); err != nil {
		t.Fatalf("add property: %v", err)
	}
	before := loadDocument(t, mem)

	changed, err := a.SetPropertyStatus(context.Background(), "missing-id", domain.PropertyApproved)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if changed {
		t.Fatal("expected no-op for missing id")
	}
	after := loadDocument(t, mem)
	if len(after.Properties) != len(before.Properties) || after.Properties[0].Status != before.Properties[0].Status {
		t.Fatalf("store modified by missing-id update: %+v", after.Properties)
	}
}

func TestSetPropertyStatusToleratesWhitespaceIDs(t *testing.T) {
	a, _ := newTestApp(t)
	created, err := a.AddProperty(context.Background(), domain.Property{Type: domain.TypeApartment})
	if err != nil {
		t.Fatalf("add property: %v", err)
	}

	changed, err := a.SetPropertyStatus(context.Background(), "  "+created.ID+" ", domain.PropertyApproved)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !changed {
		t.Fatal("expected trimmed id to match")
	}
}

func TestRemovePropertyKeepsMatches(t *testing.T) {
	a, _ := newTestApp(t)
	created, err := a.AddProperty(context.Background(), domain.Property{Type: domain.TypeApartment})
	if err != nil {
		t.Fatalf("add property: %v", err)
	}
	if _, err := a.AddMatch(context.Background(), domain.LeadMatch{
		PropertyID:   created.ID,
		BuyerContact: "21999990000",
	}); err != nil {
		t.Fatalf("add match: %v", err)
	}

	removed, err := a.RemoveProperty(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("remove property: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}

	// Dangling matches stay readable.
	matches, err := a.ListMatches(context.Background())
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(matches) != 1 || matches[0].PropertyID != created.ID {
		t.Fatalf("expected dangling match to survive: %+v", matches)
	}
}

func TestToggleFeatured(t *testing.T) {
	a, _ := newTestApp(t)
	created, err := a.AddProperty(context.Background(), domain.Property{Type: domain.TypeHouse})
	if err != nil {
		t.Fatalf("add property: %v", err)
	}

	for _, want := range []bool{true, false} {
		toggled, err := a.ToggleFeatured(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if !toggled {
			t.Fatal("expected toggle to find the property")
		}
		properties, err := a.ListProperties(context.Background())
		if err != nil {
			t.Fatalf("list properties: %v", err)
		}
		if properties[0].IsFeatured != want {
			t.Fatalf("isFeatured = %v, want %v", properties[0].IsFeatured, want)
		}
	}

	toggled, err := a.ToggleFeatured(context.Background(), "missing-id")
	if err != nil {
		t.Fatalf("toggle missing: %v", err)
	}
	if toggled {
		t.Fatal("expected no-op for missing id")
	}
}

func TestAddMatchIsIdempotentPerPropertyAndContact(t *testing.T) {
	a, _ := newTestApp(t)
	match := domain.LeadMatch{
		PropertyID:   "prop-1",
		BuyerID:      "buyer-1",
		BuyerName:    "Ana",
		BuyerContact: "21988887777",
		Status:       domain.MatchClosed, // must not be caller-overridable
	}

	created, err := a.AddMatch(context.Background(), match)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if !created {
		t.Fatal("expected first add to store the match")
	}

	created, err = a.AddMatch(context.Background(), match)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if created {
		t.Fatal("expected duplicate pair to be a no-op")
	}

	matches, err := a.ListMatches(context.Background())
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one stored match, got %d", len(matches))
	}
	if matches[0].Status != domain.MatchPending {
		t.Fatalf("initial status = %q, want PENDING", matches[0].Status)
	}
}

func TestUpdateMatchStatusTransitions(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.AddMatch(context.Background(), domain.LeadMatch{
		ID:           "lead-1",
		PropertyID:   "prop-1",
		BuyerContact: "21911112222",
	}); err != nil {
		t.Fatalf("add match: %v", err)
	}

	for _, status := range []domain.MatchStatus{domain.MatchContacted, domain.MatchClosed, domain.MatchPending} {
		changed, err := a.UpdateMatchStatus(context.Background(), "lead-1", status)
		if err != nil {
			t.Fatalf("update to %s: %v", status, err)
		}
		if !changed {
			t.Fatalf("update to %s did not find the match", status)
		}
	}

	changed, err := a.UpdateMatchStatus(context.Background(), "missing", domain.MatchClosed)
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if changed {
		t.Fatal("expected no-op for missing match id")
	}

	if _, err := a.UpdateMatchStatus(context.Background(), "lead-1", "ARCHIVED"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestAddUserDuplicateEmailLeavesStoreUnchanged(t *testing.T) {
	a, mem := newTestApp(t)
	if _, err := a.AddUser(context.Background(), domain.User{
		Name:     "Joana",
		Email:    "joana@example.com",
		Password: "pw",
	}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	before := loadDocument(t, mem)

	_, err := a.AddUser(context.Background(), domain.User{
		Name:     "Outra Joana",
		Email:    "joana@example.com",
		Password: "pw2",
	})
	if err != ErrDuplicateEmail {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
	after := loadDocument(t, mem)
	if len(after.Users) != len(before.Users) {
		t.Fatalf("store changed on duplicate email: %d -> %d users", len(before.Users), len(after.Users))
	}
}

func TestRemoveUserProtectsBootstrapAdmin(t *testing.T) {
	a, mem := newTestApp(t)
	if _, err := a.ListUsers(context.Background()); err != nil {
		t.Fatalf("prime store: %v", err)
	}
	before := loadDocument(t, mem)

	_, err := a.RemoveUser(context.Background(), AdminID)
	if err != ErrProtectedRecord {
		t.Fatalf("err = %v, want ErrProtectedRecord", err)
	}
	after := loadDocument(t, mem)
	if len(after.Users) != len(before.Users) {
		t.Fatal("store changed while removing protected record")
	}
}

func TestRemoveUser(t *testing.T) {
	a, _ := newTestApp(t)
	created, err := a.AddUser(context.Background(), domain.User{
		Name: "Carlos", Email: "carlos@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}

	removed, err := a.RemoveUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("remove user: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}

	removed, err = a.RemoveUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("remove again: %v", err)
	}
	if removed {
		t.Fatal("expected second removal to be a no-op")
	}
}

func TestLoadSaveRoundTripIsStable(t *testing.T) {
	a, mem := newTestApp(t)
	if _, err := a.AddProperty(context.Background(), domain.Property{Type: domain.TypeCommercial, Region: "Centro"}); err != nil {
		t.Fatalf("add property: %v", err)
	}
	if _, _, err := a.AddInterest(context.Background(), domain.BuyerInterest{Type: domain.TypeCommercial, Region: "Centro"}); err != nil {
		t.Fatalf("add interest: %v", err)
	}

	first := loadDocument(t, mem)
	// Load through the app (repairing) and write back unchanged.
	doc, err := a.load(context.Background())
	if err != nil {
		t.Fatalf("app load: %v", err)
	}
	if err := mem.Save(context.Background(), doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := loadDocument(t, mem)

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Fatalf("round trip changed document:\n%s\n%s", firstJSON, secondJSON)
	}
}

func TestCorruptStoreRecoversToEmptyDocument(t *testing.T) {
	a, mem := newTestApp(t)
	mem.SeedRaw([]byte("{not json"))

	properties, err := a.ListProperties(context.Background())
	if err != nil {
		t.Fatalf("list after corruption: %v", err)
	}
	if len(properties) != 0 {
		t.Fatalf("expected empty recovery, got %+v", properties)
	}
	// Bootstrap still runs on the recovered document.
	users, err := a.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].ID != AdminID {
		t.Fatalf("expected bootstrap admin after recovery, got %+v", users)
	}
}
