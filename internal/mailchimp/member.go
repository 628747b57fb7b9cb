package mailchimp

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const (
	StatusSubscribed = "subscribed"

	TagActive   = "active"
	TagInactive = "inactive"
)

type MembersResults struct {
	Members    []Member `json:"members"`
	TotalItems int      `json:"total_items"`
}

type Member struct {
	Id           string          `json:"id"`
	EmailAddress string          `json:"email_address"`
	FullName     string          `json:"full_name,omitempty"`
	Status       string          `json:"status"`
	Interests    map[string]bool `json:"interests,omitempty"`
	Tags         []MemberTag     `json:"tags,omitempty"`
	MergeFields  MergeFields     `json:"merge_fields"`
}

type MemberTag struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type MergeFields struct {
	FirstName string `json:"FNAME,omitempty"`
	LastName  string `json:"LNAME,omitempty"`
}

// Names returns the member's first and last name. When merge_fields does not carry them
// they are derived from full_name.
func (member Member) Names() (string, string) {

	firstName := member.MergeFields.FirstName
	lastName := member.MergeFields.LastName
	fullName := strings.TrimSpace(member.FullName)

	if len(fullName) == 0 {
		return firstName, lastName
	}

	parts := strings.Fields(fullName)

	if len(strings.TrimSpace(firstName)) == 0 {
		firstName = parts[0]
	}

	if len(strings.TrimSpace(lastName)) == 0 && len(parts) > 1 {
		lastName = parts[len(parts)-1]
	}

	return firstName, lastName
}

// SubscriberHash returns the id Mailchimp uses for a member in place of its email address:
// the hex MD5 digest of the lowercased address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

type memberInterestsUpdate struct {
	Interests map[string]bool `json:"interests"`
}

type tagUpdate struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type memberTagsUpdate struct {
	Tags []tagUpdate `json:"tags"`
}
