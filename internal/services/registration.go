package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"guestregistration/internal/domain"
	"guestregistration/internal/monitoring"
)

// maxIdentifierAttempts bounds how often a submission is retried when a
// generated registration ID or check-in token collides with an existing one.
const maxIdentifierAttempts = 3

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type registrationService struct {
	uow            domain.UnitOfWork
	invitations    *InvitationLedger
	capacity       CapacityLedger
	ids            domain.IdentifierIssuer
	dispatcher     domain.SideEffectDispatcher
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewRegistrationService returns the RegistrationService that coordinates the
// invitation ledger, the capacity ledger and the registrant stores inside one
// unit of work, then hands committed registrations to dispatcher.
func NewRegistrationService(
	uow domain.UnitOfWork,
	invitations *InvitationLedger,
	ids domain.IdentifierIssuer,
	dispatcher domain.SideEffectDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		uow:            uow,
		invitations:    invitations,
		ids:            ids,
		dispatcher:     dispatcher,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *registrationService) InspectInvitation(ctx context.Context, token string) (*domain.InvitationSummary, error) {
	var summary *domain.InvitationSummary
	err := s.uow.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		inv, err := s.invitations.Inspect(ctx, st.Invitations(), token)
		if err != nil {
			return err
		}
		event, err := st.Events().GetByID(ctx, inv.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				return err
			}
			return fmt.Errorf("get event: %w", err)
		}
		summary = &domain.InvitationSummary{
			Email:           inv.Email,
			ExpiresAt:       inv.ExpiresAt,
			EventID:         event.ID,
			EventName:       event.Name,
			EventStartsAt:   event.StartsAt,
			EventLocation:   event.Location,
			WaitlistEnabled: event.WaitlistEnabled,
			SeatsAvailable:  event.AvailableSeats() > 0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Submit validates and consumes the invitation, takes the capacity decision
// and persists the party in one unit of work. Side effects are scheduled only
// after that unit commits and never affect the returned result.
func (s *registrationService) Submit(ctx context.Context, in *domain.SubmitRegistrationInput) (*domain.RegistrationResult, error) {
	if err := normalizeSubmission(in); err != nil {
		monitoring.TrackSubmissionFailure(failureReason(err))
		return nil, err
	}

	// Once accepted, a submission runs to commit or rollback regardless of the caller.
	ctx, cancel := s.detachedContext(ctx)
	defer cancel()

	start := s.now()
	var (
		result *domain.RegistrationResult
		event  *domain.Event
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, event, err = s.submitOnce(ctx, in)
		if err == nil || !errors.Is(err, domain.ErrDuplicateIdentifier) || attempt >= maxIdentifierAttempts {
			break
		}
		s.logger.WarnContext(ctx, "registration identifier collision, retrying", "attempt", attempt)
	}
	monitoring.ObserveSubmit(s.now().Sub(start))
	if err != nil {
		monitoring.TrackSubmissionFailure(failureReason(err))
		if errors.Is(err, domain.ErrCapacityInvariant) {
			s.logger.ErrorContext(ctx, "capacity invariant violated", "err", err)
		}
		return nil, err
	}

	monitoring.TrackAdmission(string(result.Outcome))
	s.logger.InfoContext(ctx, "registration committed",
		"registration_id", result.Registrant.RegistrationID,
		"event_id", result.Registrant.EventID,
		"outcome", result.Outcome,
		"party_size", in.PartySize(),
	)

	msg := &domain.RegistrationCommitted{
		Event:       *event,
		Registrant:  *result.Registrant,
		Outcome:     result.Outcome,
		CommittedAt: result.Registrant.CreatedAt,
	}
	if result.Companion != nil {
		companion := *result.Companion
		msg.Companion = &companion
	}
	s.dispatch(context.WithoutCancel(ctx), msg)

	return result, nil
}

// dispatch hands msg to the dispatcher. The registration has already
// committed, so nothing the dispatcher does may reach the caller.
func (s *registrationService) dispatch(ctx context.Context, msg *domain.RegistrationCommitted) {
	defer func() {
		if p := recover(); p != nil {
			monitoring.TrackDispatchDropped("panic")
			s.logger.ErrorContext(ctx, "side effect dispatch panicked",
				"registration_id", msg.Registrant.RegistrationID,
				"panic", fmt.Sprint(p),
			)
		}
	}()
	s.dispatcher.Dispatch(ctx, msg)
}

func (s *registrationService) submitOnce(ctx context.Context, in *domain.SubmitRegistrationInput) (*domain.RegistrationResult, *domain.Event, error) {
	var (
		result *domain.RegistrationResult
		event  *domain.Event
	)
	err := s.uow.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		inv, err := s.invitations.Validate(ctx, st.Invitations(), in.InvitationToken)
		if err != nil {
			return err
		}

		event, err = st.Events().GetByID(ctx, inv.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				return err
			}
			return fmt.Errorf("get event: %w", err)
		}
		if !event.RegistrationOpen {
			return domain.ErrRegistrationClosed
		}

		outcome, err := s.capacity.Admit(ctx, st.Events(), event.ID, in.PartySize())
		if err != nil {
			return err
		}
		if outcome == domain.AdmissionWaitlisted && !event.WaitlistEnabled {
			return domain.ErrEventFull
		}
		if outcome == domain.AdmissionConfirmed {
			event.CurrentRegistrations += in.PartySize()
		}

		registrationID, err := s.ids.NewRegistrationID()
		if err != nil {
			return fmt.Errorf("issue registration id: %w", err)
		}
		checkInToken, err := s.ids.NewCheckInToken()
		if err != nil {
			return fmt.Errorf("issue check-in token: %w", err)
		}

		now := s.now()
		reg := &domain.Registrant{
			ID:             uuid.New().String(),
			EventID:        event.ID,
			InvitationID:   inv.ID,
			Name:           in.Registrant.Name,
			Company:        in.Registrant.Company,
			Title:          in.Registrant.Title,
			Email:          in.Registrant.Email,
			Status:         outcome.Status(),
			RegistrationID: registrationID,
			CheckInToken:   checkInToken,
			HasCompanion:   in.Companion != nil,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := st.Registrants().Create(ctx, reg); err != nil {
			return wrapStoreErr("create registrant", err)
		}

		var companion *domain.Companion
		if in.Companion != nil {
			companionToken, err := s.ids.NewCheckInToken()
			if err != nil {
				return fmt.Errorf("issue companion check-in token: %w", err)
			}
			companion = &domain.Companion{
				ID:             uuid.New().String(),
				RegistrantID:   reg.ID,
				Name:           in.Companion.Name,
				Company:        in.Companion.Company,
				Title:          in.Companion.Title,
				Email:          in.Companion.Email,
				RegistrationID: s.ids.CompanionRegistrationID(registrationID),
				CheckInToken:   companionToken,
				CreatedAt:      now,
			}
			if err := st.Companions().Create(ctx, companion); err != nil {
				return wrapStoreErr("create companion", err)
			}
		}

		if err := s.invitations.Consume(ctx, st.Invitations(), inv); err != nil {
			return err
		}

		result = &domain.RegistrationResult{Registrant: reg, Companion: companion, Outcome: outcome}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, event, nil
}

// Cancel moves a registrant to CANCELLED and, if the party held seats,
// returns them to the event in the same unit of work. Waitlisted parties are
// not promoted into released seats.
func (s *registrationService) Cancel(ctx context.Context, registrantID string) (*domain.Registrant, error) {
	registrantID = strings.TrimSpace(registrantID)
	if registrantID == "" {
		return nil, fmt.Errorf("%w: registrant id is required", domain.ErrInvalidInput)
	}
	ctx, cancel := s.detachedContext(ctx)
	defer cancel()

	var (
		cancelled   *domain.Registrant
		priorStatus domain.RegistrationStatus
	)
	err := s.uow.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		reg, err := st.Registrants().GetByIDForUpdate(ctx, registrantID)
		if err != nil {
			if errors.Is(err, domain.ErrRegistrantNotFound) {
				return err
			}
			return fmt.Errorf("get registrant: %w", err)
		}
		if reg.Status == domain.StatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		priorStatus = reg.Status

		at := s.now()
		if err := st.Registrants().Cancel(ctx, reg.ID, at); err != nil {
			return wrapStoreErr("cancel registrant", err)
		}
		if priorStatus == domain.StatusConfirmed {
			if err := s.capacity.Release(ctx, st.Events(), reg.EventID, reg.PartySize()); err != nil {
				return err
			}
		}
		reg.Status = domain.StatusCancelled
		reg.CancelledAt = &at
		reg.UpdatedAt = at
		cancelled = reg
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityInvariant) {
			s.logger.ErrorContext(ctx, "capacity invariant violated on cancel", "registrant_id", registrantID, "err", err)
		}
		return nil, err
	}

	monitoring.TrackCancellation(string(priorStatus))
	s.logger.InfoContext(ctx, "registration cancelled",
		"registration_id", cancelled.RegistrationID,
		"event_id", cancelled.EventID,
		"prior_status", priorStatus,
	)
	return cancelled, nil
}

// CheckIn admits the holder of a check-in token, which may belong to either a
// registrant or a companion. Only confirmed parties may check in, once.
func (s *registrationService) CheckIn(ctx context.Context, checkInToken string) (*domain.CheckInResult, error) {
	checkInToken = strings.TrimSpace(checkInToken)
	if checkInToken == "" {
		return nil, domain.ErrCheckInTokenNotFound
	}

	var result *domain.CheckInResult
	err := s.uow.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		at := s.now()
		reg, err := st.Registrants().GetByCheckInToken(ctx, checkInToken)
		switch {
		case err == nil:
			if err := checkInEligible(reg); err != nil {
				return err
			}
			if err := st.Registrants().MarkCheckedIn(ctx, reg.ID, at); err != nil {
				return wrapStoreErr("mark registrant checked in", err)
			}
			result = &domain.CheckInResult{
				Kind:           domain.CheckInPrimary,
				RegistrationID: reg.RegistrationID,
				Name:           reg.Name,
				EventID:        reg.EventID,
				CheckedInAt:    at,
			}
			return nil
		case !errors.Is(err, domain.ErrRegistrantNotFound):
			return fmt.Errorf("get registrant by check-in token: %w", err)
		}

		companion, err := st.Companions().GetByCheckInToken(ctx, checkInToken)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrCheckInTokenNotFound
			}
			return fmt.Errorf("get companion by check-in token: %w", err)
		}
		owner, err := st.Registrants().GetByID(ctx, companion.RegistrantID)
		if err != nil {
			return fmt.Errorf("get companion owner: %w", err)
		}
		if err := checkInEligible(owner); err != nil {
			return err
		}
		if companion.CheckedInAt != nil {
			return domain.ErrAlreadyCheckedIn
		}
		if err := st.Companions().MarkCheckedIn(ctx, companion.ID, at); err != nil {
			return wrapStoreErr("mark companion checked in", err)
		}
		result = &domain.CheckInResult{
			Kind:           domain.CheckInCompanion,
			RegistrationID: companion.RegistrationID,
			Name:           companion.Name,
			EventID:        owner.EventID,
			CheckedInAt:    at,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.TrackCheckIn(string(result.Kind))
	s.logger.InfoContext(ctx, "checked in",
		"registration_id", result.RegistrationID,
		"event_id", result.EventID,
		"kind", result.Kind,
	)
	return result, nil
}

func (s *registrationService) detachedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.contextTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, s.contextTimeout)
}

func checkInEligible(reg *domain.Registrant) error {
	switch reg.Status {
	case domain.StatusCancelled:
		return domain.ErrRegistrationCancelled
	case domain.StatusConfirmed:
	default:
		return domain.ErrNotConfirmed
	}
	if reg.CheckedInAt != nil {
		return domain.ErrAlreadyCheckedIn
	}
	return nil
}

// wrapStoreErr adds context to unexpected store errors but passes domain
// sentinels through untouched so callers can match them.
func wrapStoreErr(op string, err error) error {
	for _, sentinel := range []error{
		domain.ErrDuplicateIdentifier,
		domain.ErrInvitationAlreadyUsed,
		domain.ErrAlreadyCancelled,
		domain.ErrAlreadyCheckedIn,
		domain.ErrRegistrantNotFound,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func normalizeSubmission(in *domain.SubmitRegistrationInput) error {
	if in == nil {
		return fmt.Errorf("%w: submission is required", domain.ErrInvalidInput)
	}
	in.InvitationToken = strings.TrimSpace(in.InvitationToken)
	if in.InvitationToken == "" {
		return domain.ErrInvitationNotFound
	}
	if err := normalizePerson(&in.Registrant, "registrant"); err != nil {
		return err
	}
	if in.Companion != nil {
		if err := normalizePerson(in.Companion, "companion"); err != nil {
			return err
		}
	}
	return nil
}

func normalizePerson(p *domain.PersonDetails, role string) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Company = strings.TrimSpace(p.Company)
	p.Title = strings.TrimSpace(p.Title)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Name == "" {
		return fmt.Errorf("%w: %s name is required", domain.ErrInvalidInput, role)
	}
	if !emailRegexp.MatchString(p.Email) {
		return fmt.Errorf("%w: %s email is invalid", domain.ErrInvalidInput, role)
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvitationNotFound):
		return "invitation_not_found"
	case errors.Is(err, domain.ErrInvitationAlreadyUsed):
		return "invitation_used"
	case errors.Is(err, domain.ErrInvitationExpired):
		return "invitation_expired"
	case errors.Is(err, domain.ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, domain.ErrRegistrationClosed):
		return "registration_closed"
	case errors.Is(err, domain.ErrEventFull):
		return "event_full"
	case errors.Is(err, domain.ErrCapacityInvariant):
		return "capacity_invariant"
	case errors.Is(err, domain.ErrDuplicateIdentifier):
		return "duplicate_identifier"
	default:
		return "internal"
	}
}
