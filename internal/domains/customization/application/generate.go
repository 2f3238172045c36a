package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

// Generate submits the previewed selection. At most one generation is outstanding per
// session; the credit pre-flight runs before any upstream call. On success the platform's
// remaining balance (or a fresh lookup when it is omitted) replaces the local one and
// enrichment starts in the background. The submit outlives a cancelled caller.
func (s *Service) Generate(ctx context.Context, input custtypes.GenerateInput) (*custtypes.GenerateResult, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLength {
		return nil, fmt.Errorf("%w: idempotency key exceeds %d characters", ErrInvalidInput, maxIdempotencyKeyLength)
	}
	session, err := s.sessions.Get(ctx, input.SessionID)
	if err != nil {
		return nil, mapError(err)
	}

	session.Lock()
	if session.Generating {
		session.Unlock()
		return nil, ErrGenerationInProgress
	}
	req, err := session.Wizard.BuildRequest()
	if err != nil {
		session.Unlock()
		return nil, mapError(err)
	}
	required := req.Credits().Total()
	if required == 0 && !s.allowZeroCost {
		session.Unlock()
		return nil, ErrZeroCostGeneration
	}
	var fingerprint string
	if key != "" && s.idempotency != nil {
		fingerprint, err = FingerprintGeneration(session.ID, req)
		if err != nil {
			session.Unlock()
			return nil, err
		}
		replay, err := s.replay(ctx, session, scopedIdempotencyKey(session.ID, key), fingerprint)
		if err != nil || replay != nil {
			session.Unlock()
			return replay, err
		}
	}
	if session.Balance < required {
		balance := session.Balance
		session.Unlock()
		return nil, &InsufficientCreditsError{Required: required, Balance: balance, PurchaseURL: s.purchaseURL}
	}
	session.Generating = true
	session.ProgressMessages = nil
	creds := session.Credentials
	balance := session.Balance
	session.Unlock()

	messages := s.progressMessages(ctx, creds, req)
	session.Lock()
	session.ProgressMessages = messages
	session.Unlock()

	// The platform debits credits once the submit lands, so a client disconnect must not
	// abandon the call or the bookkeeping after it.
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.generationTimeout)
	defer cancel()

	outcome, err := s.generator.Generate(submitCtx, creds, req)
	if err == nil && (outcome == nil || len(outcome.Variations) == 0) {
		err = &ports.GenerationRejectedError{Message: domain.ErrNoVariations.Error()}
	}
	if err != nil {
		session.Lock()
		session.Generating = false
		session.ProgressMessages = nil
		session.Unlock()
		return nil, s.mapGenerationError(err, required, balance)
	}

	remaining := outcome.CreditsRemaining
	if remaining == nil {
		remaining = s.refreshBalance(submitCtx, creds)
	}
	record, err := domain.NewGenerationRecord(s.newID(), session.ID, req, outcome.Variations, remaining)
	if err != nil {
		session.Lock()
		session.Generating = false
		session.Unlock()
		return nil, err
	}

	session.Lock()
	session.Generating = false
	session.ProgressMessages = nil
	if remaining != nil {
		session.Balance, session.BalanceKnown = *remaining, true
	} else {
		session.Balance, session.BalanceKnown = 0, false
	}
	session.Variations = append([]domain.GeneratedVariation(nil), outcome.Variations...)
	session.LastGenerationID = record.ID
	session.Description = ""
	breedName := session.Wizard.TargetBreedName()
	view := s.view(session)
	session.Unlock()

	generation := s.recordGeneration(submitCtx, record)
	if fingerprint != "" {
		s.rememberIdempotencyKey(submitCtx, scopedIdempotencyKey(session.ID, key), fingerprint, record.ID)
	}
	s.startEnrichment(session, record, outcome.Variations, breedName, creds)

	return &custtypes.GenerateResult{Session: view, Generation: generation}, nil
}

// replay returns the recorded result for a retried submission. Callers hold the session lock.
func (s *Service) replay(ctx context.Context, session *custtypes.Session, key, fingerprint string) (*custtypes.GenerateResult, error) {
	existing, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.RequestHash != fingerprint {
		return nil, ErrIdempotencyConflict
	}
	result := &custtypes.GenerateResult{Session: s.view(session), Replayed: true}
	if s.history != nil {
		generation, err := s.history.GetByID(ctx, existing.GenerationID)
		if err != nil && !errors.Is(err, ports.ErrGenerationNotFound) {
			return nil, err
		}
		result.Generation = generation
	}
	return result, nil
}

// refreshBalance asks the platform for the post-debit balance when the generation response
// omitted it. Nil means the balance is unknown until the next successful lookup.
func (s *Service) refreshBalance(ctx context.Context, creds custtypes.Credentials) *int {
	balance, err := s.credits.Balance(ctx, creds)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "credit balance unavailable after generation", slog.String("error", err.Error()))
		return nil
	}
	return &balance
}

func (s *Service) progressMessages(ctx context.Context, creds custtypes.Credentials, req domain.GenerationRequest) []string {
	callCtx, cancel := context.WithTimeout(ctx, s.progressTimeout)
	defer cancel()
	messages, err := s.generator.ProgressMessages(callCtx, creds, req)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "progress messages unavailable", slog.String("error", err.Error()))
	}
	cleaned := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg = strings.TrimSpace(msg); msg != "" {
			cleaned = append(cleaned, msg)
		}
	}
	if len(cleaned) == 0 {
		return []string{DefaultProgressMessage}
	}
	return cleaned
}

func (s *Service) recordGeneration(ctx context.Context, record *domain.GenerationRecord) *custtypes.GenerationProjection {
	if s.history == nil {
		return &custtypes.GenerationProjection{Entity: record}
	}
	saved, err := s.history.Save(ctx, record)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to record generation",
			slog.String("generation.id", record.ID),
			slog.String("error", err.Error()),
		)
		return &custtypes.GenerationProjection{Entity: record}
	}
	return saved
}

func (s *Service) rememberIdempotencyKey(ctx context.Context, key, fingerprint, generationID string) {
	_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, GenerationID: generationID})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to store idempotency key",
			slog.String("generation.id", generationID),
			slog.String("error", err.Error()),
		)
	}
}

// startEnrichment describes the first variation in the background. The work is bound to
// the session lifetime; its failure never affects the generation result.
func (s *Service) startEnrichment(session *custtypes.Session, record *domain.GenerationRecord, variations []domain.GeneratedVariation, breedName string, creds custtypes.Credentials) {
	if s.enrichment == nil || len(variations) == 0 {
		return
	}
	first := variations[0]
	image := first.ImageData
	if s.images != nil && len(image) > 0 {
		if thumb, err := s.images.Thumbnail(image); err == nil {
			image = thumb
		}
	}
	input := custtypes.EnrichmentInput{
		GenerationID: record.ID,
		SessionID:    session.ID,
		Credentials:  creds,
		VariationIDs: append([]string(nil), record.VariationIDs...),
		ImageData:    image,
		Filename:     first.Filename,
		BreedName:    breedName,
	}
	ctx := session.Context()
	go func() {
		result, err := s.enrichment.Enrich(ctx, input)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "description enrichment failed",
				slog.String("generation.id", input.GenerationID),
				slog.String("error", err.Error()),
			)
		}
		if result == nil || result.Description == "" {
			return
		}
		session.Lock()
		defer session.Unlock()
		if session.LastGenerationID != input.GenerationID {
			return
		}
		session.Description = result.Description
		for i := range session.Variations {
			session.Variations[i].Description = result.Description
		}
	}()
}
