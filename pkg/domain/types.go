package domain

import "time"

// PropertyType classifies a listing. Wire values follow the labels the
// intake forms use.
type PropertyType string

const (
	TypeApartment  PropertyType = "Apartamento"
	TypeHouse      PropertyType = "Casa"
	TypePenthouse  PropertyType = "Cobertura"
	TypeLand       PropertyType = "Terreno"
	TypeCommercial PropertyType = "Comercial"
)

// ValidPropertyType reports whether t is one of the known listing types.
func ValidPropertyType(t PropertyType) bool {
	switch t {
	case TypeApartment, TypeHouse, TypePenthouse, TypeLand, TypeCommercial:
		return true
	}
	return false
}

// PropertyStatus is the moderation state gating a listing's visibility.
type PropertyStatus string

const (
	PropertyPending  PropertyStatus = "PENDING"
	PropertyApproved PropertyStatus = "APPROVED"
	PropertyRejected PropertyStatus = "REJECTED"
)

// ValidPropertyStatus reports whether s names a moderation state.
func ValidPropertyStatus(s PropertyStatus) bool {
	switch s {
	case PropertyPending, PropertyApproved, PropertyRejected:
		return true
	}
	return false
}

// MatchStatus is the contact workflow state of a lead.
type MatchStatus string

const (
	MatchPending   MatchStatus = "PENDING"
	MatchContacted MatchStatus = "CONTACTED"
	MatchClosed    MatchStatus = "CLOSED"
)

// ValidMatchStatus reports whether s names a lead workflow state.
func ValidMatchStatus(s MatchStatus) bool {
	switch s {
	case MatchPending, MatchContacted, MatchClosed:
		return true
	}
	return false
}

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleManager UserRole = "MANAGER"
)

// Property is a unit of real estate submitted for sale.
// Status may be empty for records persisted before moderation existed;
// readers treat that as APPROVED.
type Property struct {
	ID          string         `json:"id"`
	Type        PropertyType   `json:"type"`
	Region      string         `json:"region"`
	CondoName   string         `json:"condoName"`
	Bedrooms    int            `json:"bedrooms"`
	Area        float64        `json:"area"`
	Price       *float64       `json:"price,omitempty"`
	VideoURL    string         `json:"videoUrl,omitempty"`
	Description string         `json:"description"`
	OwnerName   string         `json:"ownerName"`
	OwnerPhone  string         `json:"ownerPhone"`
	Images      []string       `json:"images"`
	IsFeatured  bool           `json:"isFeatured,omitempty"`
	Status      PropertyStatus `json:"status,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// BuyerInterest is a buyer's declared search criteria.
type BuyerInterest struct {
	ID              string       `json:"id"`
	Type            PropertyType `json:"type"`
	Region          string       `json:"region"`
	MinBedrooms     int          `json:"minBedrooms"`
	MinArea         float64      `json:"minArea"`
	MaxPrice        *float64     `json:"maxPrice,omitempty"`
	Characteristics string       `json:"characteristics,omitempty"`
	BuyerName       string       `json:"buyerName"`
	BuyerPhone      string       `json:"buyerPhone"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// LeadMatch associates one property with one buyer whose criteria it
// satisfies. PropertyID is a weak reference; the listing may have been
// removed since.
type LeadMatch struct {
	ID           string      `json:"id"`
	PropertyID   string      `json:"propertyId"`
	BuyerID      string      `json:"buyerId"`
	BuyerName    string      `json:"buyerName"`
	BuyerContact string      `json:"buyerContact"`
	Status       MatchStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// User is a staff account. Password is stored as an opaque string;
// credential verification lives outside this service.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is the single persisted record set. Every store operation
// reads and writes it wholesale.
type Document struct {
	Properties []Property      `json:"properties"`
	Interests  []BuyerInterest `json:"interests"`
	Matches    []LeadMatch     `json:"matches"`
	Users      []User          `json:"users"`
}

// EmptyDocument returns a document with all collections initialized.
func EmptyDocument() Document {
	return Document{
		Properties: []Property{},
		Interests:  []BuyerInterest{},
		Matches:    []LeadMatch{},
		Users:      []User{},
	}
}

// Normalize replaces nil collections with empty ones so that persisted
// payloads from older versions round-trip predictably.
func (d *Document) Normalize() {
	if d.Properties == nil {
		d.Properties = []Property{}
	}
	if d.Interests == nil {
		d.Interests = []BuyerInterest{}
	}
	if d.Matches == nil {
		d.Matches = []LeadMatch{}
	}
	if d.Users == nil {
		d.Users = []User{}
	}
}
