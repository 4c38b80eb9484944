// Package store provides SQLite-backed persistence for the kenisa records
// core. The engine runs entirely in memory over ncruces/go-sqlite3; its
// whole image is serialized into a vault key after every mutation.
package store

// Member is a person tracked by the community.
//
// MarriageDate is meaningful only when SocialStatus is "married", and
// IsDeacon only when Gender is "male"; neither rule is enforced by the
// storage engine. ID is assigned by the store on insert and is immutable.
type Member struct {
	ID              int64    `json:"id"`
	FirstName       string   `json:"firstName"`
	FatherName      string   `json:"fatherName"`
	GrandfatherName string   `json:"grandfatherName,omitempty"`
	FamilyName      string   `json:"familyName"`
	Phone1          string   `json:"phone1,omitempty"`
	Phone1WhatsApp  bool     `json:"phone1WhatsApp"`
	Phone2          string   `json:"phone2,omitempty"`
	Phone2WhatsApp  bool     `json:"phone2WhatsApp"`
	Gender          string   `json:"gender"`                // "male" | "female"
	BirthDate       string   `json:"birthDate,omitempty"`   // YYYY-MM-DD
	SocialStatus    string   `json:"socialStatus"`          // "single" | "married" | "widowed" | "divorced"
	MarriageDate    string   `json:"marriageDate,omitempty"`
	Church          string   `json:"church,omitempty"`
	ConfessionStart string   `json:"confessionStart,omitempty"`
	Occupation      string   `json:"occupation,omitempty"`
	Services        []string `json:"services"`
	PersonalTags    []string `json:"personalTags"`
	IsDeacon        bool     `json:"isDeacon"`
	IsDeceased      bool     `json:"isDeceased"`
	IsArchived      bool     `json:"isArchived"`
	Notes           string   `json:"notes,omitempty"`
	SpouseName      string   `json:"spouseName,omitempty"`
	SpousePhone     string   `json:"spousePhone,omitempty"`
	Children        []Child  `json:"children"`
	Photo           string   `json:"photo,omitempty"`

	// CustomFields is an open, caller-defined attribute map. Values
	// round-trip through the JSON column coercion: strings, booleans and
	// arrays keep their types, numbers come back as float64.
	CustomFields map[string]any `json:"customFields"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Child is an ordered sub-record of a Member, not an entity of its own.
type Child struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Log is one confession session. MemberID must reference an existing
// member at creation time; logs have no independent existence once their
// owner is deleted (the repository cascades).
type Log struct {
	ID        int64    `json:"id"`
	MemberID  int64    `json:"memberId"`
	Date      string   `json:"date"` // YYYY-MM-DD
	Notes     string   `json:"notes,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"createdAt"`
}

// Template is a reusable notification text. The body carries positional
// placeholder tokens resolved by the messaging UI at send time.
type Template struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Settings keys. Each key holds a JSON-encoded list of unique strings used
// to populate choice controls; uniqueness is the caller's responsibility.
const (
	SettingOccupations    = "occupations"
	SettingServices       = "services"
	SettingPersonalTags   = "personal-tags"
	SettingConfessionTags = "confession-tags"
)

// Storer defines the repository contract exposed to collaborators.
// Store is the sole implementation.
type Storer interface {
	// Members
	InsertMember(m *Member) error
	GetMember(id int64) (*Member, error)
	ListMembers() ([]*Member, error)
	UpdateMember(id int64, patch map[string]any) error
	DeleteMember(id int64) error
	CountMembers() (int, error)

	// Logs
	InsertLog(l *Log) error
	ListLogs() ([]*Log, error)
	LogsForMember(memberID int64) ([]*Log, error)
	UpdateLog(id int64, patch map[string]any) error
	DeleteLog(id int64) error

	// Templates
	InsertTemplate(t *Template) error
	ListTemplates() ([]*Template, error)
	UpdateTemplate(id int64, patch map[string]any) error
	DeleteTemplate(id int64) error

	// Settings
	Setting(key string) ([]string, error)
	PutSetting(key string, values []string) error

	// Engine image
	Persist() error
	SerializeImage() ([]byte, error)
	ImportImage(data []byte) error

	// Lifecycle
	Close() error
}
