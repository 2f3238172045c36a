package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid customization input")
	// ErrInvalidTransition signals the wizard cannot perform the operation at its current step.
	ErrInvalidTransition = errors.New("invalid wizard transition")
	// ErrGenerationInProgress rejects a second submission or edit while a generation is outstanding.
	ErrGenerationInProgress = errors.New("a generation is already in progress for this session")
	// ErrZeroCostGeneration rejects a submission that changes nothing when zero-cost generation is disabled.
	ErrZeroCostGeneration = errors.New("select a new breed, coat or outfit before generating")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrUpstreamUnavailable = errors.New("portrait generation is temporarily unavailable")
	ErrIdempotencyConflict = ports.ErrIdempotencyConflict
	ErrSessionNotFound     = ports.ErrSessionNotFound
	ErrGenerationNotFound  = ports.ErrGenerationNotFound
)

// InsufficientCreditsError carries what the customer needs to top up.
type InsufficientCreditsError struct {
	Required    int
	Balance     int
	PurchaseURL string
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: %d required, %d available", e.Required, e.Balance)
}

func (e *InsufficientCreditsError) Unwrap() error { return ErrInsufficientCredits }

// GenerationFailedError surfaces the platform's rejection message.
type GenerationFailedError struct {
	Message string
}

func (e *GenerationFailedError) Error() string {
	if e.Message == "" {
		return ErrGenerationFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrGenerationFailed, e.Message)
}

func (e *GenerationFailedError) Unwrap() error { return ErrGenerationFailed }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrWrongStep) ||
		errors.Is(err, domain.ErrBreedChoiceRequired) ||
		errors.Is(err, domain.ErrCoatChoiceRequired) ||
		errors.Is(err, domain.ErrTerminalStep) ||
		errors.Is(err, domain.ErrNoPreviousStep) ||
		errors.Is(err, domain.ErrNotAtPreview) {
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	if errors.Is(err, domain.ErrEmptyID) ||
		errors.Is(err, domain.ErrUnknownBreed) ||
		errors.Is(err, domain.ErrCoatNotCompatible) ||
		errors.Is(err, domain.ErrUnknownOutfit) ||
		errors.Is(err, domain.ErrOutfitNotCompatible) ||
		errors.Is(err, domain.ErrMissingImageID) ||
		errors.Is(err, domain.ErrMissingImageData) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func (s *Service) mapGenerationError(err error, required, balance int) error {
	if errors.Is(err, ports.ErrUpstreamInsufficientCredits) {
		return &InsufficientCreditsError{Required: required, Balance: balance, PurchaseURL: s.purchaseURL}
	}
	var rejected *ports.GenerationRejectedError
	if errors.As(err, &rejected) {
		return &GenerationFailedError{Message: rejected.Message}
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}
