package models

import "time"

// Follow is a directed edge: FollowingUser follows FollowedUser.
type Follow struct {
	ID            string    `json:"id"`
	FollowingUser string    `json:"following_user"`
	FollowedUser  string    `json:"followed_user"`
	CreatedAt     time.Time `json:"created_at"`
}

// FollowedUserName is attached to a freshly created edge for display.
type FollowedUserName struct {
	Name     string `json:"name"`
	LastName string `json:"lastname"`
}

// FollowDetails is the result of a follow action.
type FollowDetails struct {
	Follow
	FollowedUserName FollowedUserName `json:"followed_user_details"`
}

// FollowWithUser is an edge together with the public profile of the user on
// the other side (the followed user for "following" listings, the follower
// for "followers" listings).
type FollowWithUser struct {
	Follow
	User PublicUser `json:"user"`
}

// RelatedIDs lists whom a user follows and who follows them.
type RelatedIDs struct {
	Following []string `json:"following"`
	Followers []string `json:"followers"`
}

// EmptyRelatedIDs returns RelatedIDs with non-nil empty slices.
func EmptyRelatedIDs() RelatedIDs {
	return RelatedIDs{Following: []string{}, Followers: []string{}}
}

// Mutual describes the relationship between a viewer and a profile.
// Nil edges mean "no relationship".
type Mutual struct {
	Following  *Follow `json:"following"`
	FollowedBy *Follow `json:"followed_by"`
}

// Counters are per-user totals.
type Counters struct {
	UserID       string `json:"user_id"`
	Following    int64  `json:"following"`
	Followers    int64  `json:"followers"`
	Publications int64  `json:"publications"`
}
