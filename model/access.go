package model

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
	"time"
)

// ReservedUserID is the one filter value for which the access flag is false.
var ReservedUserID = strconv.FormatInt(DefaultUserID, 10)

// ReservedFlag is the access flag of a listing: true unless the filter is
// exactly the reserved user id. It says nothing about ownership of the data.
func ReservedFlag(filter *string) bool {
	return filter == nil || *filter != ReservedUserID
}

// AccessPolicy selects how the notes view computes its access flag.
type AccessPolicy string

const (
	// PolicyReserved compares the requested id with ReservedUserID.
	PolicyReserved AccessPolicy = "reserved"
	// PolicySession compares the requested id with the requester's own id.
	PolicySession AccessPolicy = "session"
)

// Flag returns true when access to the notes of filter must be denied for a
// requester with the given session user id.
func (p AccessPolicy) Flag(filter *string, sessionUserID int64) bool {
	if p == PolicySession {
		return filter == nil || *filter != strconv.FormatInt(sessionUserID, 10)
	}
	return ReservedFlag(filter)
}

// ViewState is the screen the notes view shows.
type ViewState int

const (
	ViewAuthorized ViewState = iota
	ViewDenied
)

func (v ViewState) String() string {
	if v == ViewDenied {
		return "denied"
	}
	return "authorized"
}

// Decide maps an access flag to a view state. It is evaluated once per fetch.
func Decide(flag bool) ViewState {
	if flag {
		return ViewDenied
	}
	return ViewAuthorized
}

// Incident is the decoy shown on the access-denied screen.
type Incident struct {
	Hash    string // "SHA-256:" followed by 64 random hex digits
	LogID   int64
	At      time.Time
	Variant int
}

// DeniedVariants is the number of cosmetic access-denied screens.
const DeniedVariants = 3

// NewIncident returns a fresh decoy. The hash is random and not derived from
// anything.
func NewIncident() (Incident, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return Incident{}, err
	}
	logID, err := rand.Int(rand.Reader, big.NewInt(999999))
	if err != nil {
		return Incident{}, err
	}
	variant, err := rand.Int(rand.Reader, big.NewInt(DeniedVariants))
	if err != nil {
		return Incident{}, err
	}
	return Incident{
		Hash:    "SHA-256:" + hex.EncodeToString(b),
		LogID:   logID.Int64(),
		At:      time.Now().UTC(),
		Variant: int(variant.Int64()),
	}, nil
}
