package services

import (
	"errors"

	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/repository"
)

var (
	ErrForbidden = errors.New("principal does not have access to this booking")
)

// AccessGuard decides whether a principal may read or mutate a booking's work
// breakdown. It fails closed: lookup errors and missing records deny.
type AccessGuard struct {
	userRepo repository.UserRepository
}

// NewAccessGuard creates a new AccessGuard
func NewAccessGuard(userRepo repository.UserRepository) *AccessGuard {
	return &AccessGuard{userRepo: userRepo}
}

// CanAccess reports whether the user may see or mutate the booking: the
// booking's client, its provider, or any admin.
func (g *AccessGuard) CanAccess(user *models.User, booking *models.Booking) bool {
	if user == nil || booking == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return user.ID == booking.ClientID || user.ID == booking.ProviderID
}

// CheckMutate resolves the acting principal and returns ErrForbidden unless
// they may mutate the booking.
func (g *AccessGuard) CheckMutate(actorID uint64, booking *models.Booking) (*models.User, error) {
	actor, err := g.userRepo.FindByID(actorID)
	if err != nil {
		return nil, ErrForbidden
	}
	if !g.CanAccess(actor, booking) {
		return nil, ErrForbidden
	}
	return actor, nil
}

// CheckResolve enforces counterpart resolution on an approval record: the
// resolver must be on the booking and must not be the original requester.
// Admins may resolve anything, including their own requests.
func (g *AccessGuard) CheckResolve(resolverID uint64, booking *models.Booking, record *models.ApprovalRecord) (*models.User, error) {
	resolver, err := g.userRepo.FindByID(resolverID)
	if err != nil {
		return nil, ErrForbidden
	}
	if resolver.IsAdmin() {
		return resolver, nil
	}
	if !g.CanAccess(resolver, booking) {
		return nil, ErrForbidden
	}
	if record.RequesterID == resolverID {
		return nil, ErrForbidden
	}
	return resolver, nil
}
