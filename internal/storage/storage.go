package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates that a record could not be located in the backing store.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientCredits is returned when a profile has no credits left to reserve.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrProfileExists is returned when registering an email that is already taken.
	ErrProfileExists = errors.New("profile already exists")
)

// FlowType selects which prompt path produced a result.
type FlowType string

const (
	FlowDesign FlowType = "design"
	FlowDecor  FlowType = "decor"
)

// Valid reports whether the flow is one of the known variants.
func (f FlowType) Valid() bool {
	return f == FlowDesign || f == FlowDecor
}

// CurrentSchemaVersion is stamped on every record written by this build.
const CurrentSchemaVersion = 1

// Suggestions groups the three recommendation lists returned by the model.
type Suggestions struct {
	General   []string `json:"general"`
	LowBudget []string `json:"lowBudget"`
	DIY       []string `json:"diy"`
}

// Result is one persisted generation: the original image, its variations and suggestions.
type Result struct {
	ID                 string      `json:"id"`
	Type               FlowType    `json:"type"`
	ImageBase64        string      `json:"imageBase64,omitempty"`
	ImageMimeType      string      `json:"imageMimeType,omitempty"`
	GeneratedImages    []string    `json:"generatedImageBase64"`
	GeneratedImageURLs []string    `json:"generatedImageUrls,omitempty"`
	Style              string      `json:"style"`
	Details            string      `json:"details"`
	Suggestions        Suggestions `json:"suggestions"`
	Holiday            string      `json:"holiday,omitempty"`
	Event              string      `json:"event,omitempty"`
	SeasonalTheme      string      `json:"seasonalTheme,omitempty"`
	SchemaVersion      int         `json:"schemaVersion"`
	CreatedAt          time.Time   `json:"createdAt"`
}

// Normalize fills the invariants every stored result must satisfy.
func (r *Result) Normalize() {
	if r.Suggestions.General == nil {
		r.Suggestions.General = []string{}
	}
	if r.Suggestions.LowBudget == nil {
		r.Suggestions.LowBudget = []string{}
	}
	if r.Suggestions.DIY == nil {
		r.Suggestions.DIY = []string{}
	}
	if r.GeneratedImages == nil {
		r.GeneratedImages = []string{}
	}
	if r.SchemaVersion == 0 {
		r.SchemaVersion = CurrentSchemaVersion
	}
}

// Renderable reports whether the result has at least one variation to show.
func (r *Result) Renderable() bool {
	return r != nil && len(r.GeneratedImages) > 0
}

// Profile is an account with its credit balance.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Credits      int       `json:"credits"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResultStore persists generation results keyed by id.
type ResultStore interface {
	// Initialize opens the store once; concurrent callers share the outcome.
	Initialize(ctx context.Context) error
	// Put inserts or overwrites the record keyed by its ID and returns that ID.
	Put(ctx context.Context, result Result) (string, error)
	// Get returns nil, nil when the id is unknown.
	Get(ctx context.Context, id string) (*Result, error)
	Close() error
}

// ProfileStore is the account service: profiles and their credit balances.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile Profile) (Profile, error)
	GetProfile(ctx context.Context, id string) (Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	// ReserveCredit atomically takes one credit and returns the remaining balance.
	ReserveCredit(ctx context.Context, id string) (int, error)
	RefundCredit(ctx context.Context, id string) (int, error)
	SetCredits(ctx context.Context, id string, credits int) error
	Close()
}

// Available initializes the store and reports whether persistence can be used.
func Available(ctx context.Context, store ResultStore) bool {
	if store == nil {
		return false
	}
	return store.Initialize(ctx) == nil
}
