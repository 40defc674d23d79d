package models

import "time"

// AuctionType decides how an item's winner is chosen
type AuctionType string

const (
	// Silent items are won by the highest bid when the admin closes them
	Silent AuctionType = "silent"
	// Live items get their winner and price set by the admin
	Live AuctionType = "live"
)

// Valid reports whether t is a known auction type
func (t AuctionType) Valid() bool {
	return t == Silent || t == Live
}

// NotificationKind classifies a notification
type NotificationKind string

const (
	KindOutbid    NotificationKind = "outbid"
	KindWon       NotificationKind = "won"
	KindLost      NotificationKind = "lost"
	KindInvited   NotificationKind = "invited"
	KindRemoved   NotificationKind = "removed"
	KindPublished NotificationKind = "published"
	KindArchived  NotificationKind = "archived"
	KindItemOpen  NotificationKind = "item_open"
	KindPaid      NotificationKind = "paid"
)

// User represents an account that can administer auctions and bid in others
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(128);not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(30)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(150)" json:"last_name"`
	Email        string     `gorm:"type:varchar(254)" json:"email"`
	Balance      int64      `gorm:"not null;default:0" json:"balance"` // cents owed for won, unpaid items
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"date_joined"`
	UpdatedAt    time.Time  `json:"-"`
}

// Auction represents a named event with an admin, participants and items
type Auction struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(200);not null" json:"name"`
	Description      string    `gorm:"type:text;not null;default:''" json:"description"`
	AdminID          uint      `gorm:"index;not null" json:"admin_id"`
	EntryCode        string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"entry_code,omitempty"`
	ImageURL         string    `gorm:"type:text" json:"image_url,omitempty"`
	Published        bool      `gorm:"not null;default:false" json:"published"`
	OpenedForBidding bool      `gorm:"not null;default:false" json:"opened_for_bidding"`
	Archived         bool      `gorm:"not null;default:false" json:"archived"`
	CreatedAt        time.Time `json:"time_created"`
	UpdatedAt        time.Time `json:"-"`
}

// IsAdmin reports whether userID administers the auction
func (a Auction) IsAdmin(userID uint) bool {
	return a.AdminID == userID
}

// Participant links a user to an auction they were invited to or joined
type Participant struct {
	AuctionID uint      `gorm:"primaryKey;autoIncrement:false" json:"auction_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
}

// TableName keeps the join table name stable
func (Participant) TableName() string {
	return "auction_participants"
}

// Item represents a good being sold in an auction
type Item struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	AuctionID     uint        `gorm:"index;not null" json:"auction_id"`
	Name          string      `gorm:"type:varchar(200);not null" json:"name"`
	Description   string      `gorm:"type:text;not null;default:''" json:"description"`
	StartingPrice int64       `gorm:"not null" json:"starting_price"`
	CurrentPrice  int64       `gorm:"not null" json:"current_price"`
	BidIncrement  int64       `gorm:"not null;default:100" json:"bid_increment"`
	MinBid        int64       `gorm:"not null" json:"min_bid"`
	AuctionType   AuctionType `gorm:"type:varchar(6);not null;default:'silent'" json:"auction_type"`
	IsSold        bool        `gorm:"not null;default:false" json:"is_sold"`
	IsPaid        bool        `gorm:"not null;default:false" json:"is_paid"`
	IsOpen        bool        `gorm:"not null;default:false" json:"is_open"`
	PaidTime      *time.Time  `json:"paid_time,omitempty"`
	WinnerID      *uint       `gorm:"index" json:"winner_id,omitempty"`
	ImageURL      string      `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"-"`
}

// Bid represents a participant's priced offer on an item
type Bid struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemID    uint      `gorm:"index;not null" json:"item_id"`
	BidderID  uint      `gorm:"index;not null" json:"bidder_id"`
	Price     int64     `gorm:"not null" json:"price"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Won       bool      `gorm:"not null;default:false" json:"won"`
}

// Notification is a message delivered to a single user
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"index;not null" json:"user_id"`
	AuctionID *uint            `json:"auction_id,omitempty"`
	ItemID    *uint            `json:"item_id,omitempty"`
	Kind      NotificationKind `gorm:"type:varchar(16);not null" json:"kind"`
	Text      string           `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time        `gorm:"not null;index" json:"timestamp"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
}

// BalanceSummary aggregates what a user won and paid for
type BalanceSummary struct {
	Balance   int64 `json:"balance"`
	WonItems  int   `json:"won_items"`
	PaidItems int   `json:"paid_items"`
	TotalWon  int64 `json:"total_won"`
	TotalPaid int64 `json:"total_paid"`
}

// AuctionList splits a user's auctions by role
type AuctionList struct {
	Administered []Auction `json:"administered"`
	Joined       []Auction `json:"joined"`
}

// AllModels lists every table managed by the schema migration
func AllModels() []any {
	return []any{&User{}, &Auction{}, &Participant{}, &Item{}, &Bid{}, &Notification{}}
}
