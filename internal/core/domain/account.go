package domain

import "time"

// Subscription is the service tier attached to an account.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// DefaultSubscription is assigned to every new account.
const DefaultSubscription = SubscriptionStarter

// Valid reports whether s is one of the known tiers.
func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// Account models a registered user.
//
// Token holds the single live bearer token; an empty string means the account
// is logged out.
type Account struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Subscription Subscription `json:"subscription"`
	Token        string       `json:"-"`
	AvatarURL    string       `json:"avatarURL,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// LoggedIn reports whether the account currently holds a token.
func (a *Account) LoggedIn() bool {
	return a.Token != ""
}
