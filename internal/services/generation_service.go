package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cozylogic-backend/internal/lifecycle"
	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/openai"
	"cozylogic-backend/internal/prompts"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Short machine codes stored in rooms.generation_error.
const (
	ReasonLimitReached    = "limit_reached"
	ReasonAdmissionFailed = "admission_failed"
	ReasonDownloadFailed  = "download_failed"
	ReasonTidyFailed      = "tidy_failed"
	ReasonStyleFailed     = "style_failed"
	ReasonUploadFailed    = "upload_failed"
	ReasonPersistFailed   = "persist_failed"
	ReasonTimeout         = "timeout"
)

const (
	ProviderOpenAI = "openai"

	defaultRecommendationTemperature = 0.4
)

type GenerationConfig struct {
	InputsBucket  string
	OutputsBucket string
	ImageModel    string
	TextModel     string
	// CallTimeout bounds each external call. Zero means unbounded.
	CallTimeout               time.Duration
	RecommendationTemperature float64
}

// Pruner is the retention hook run after a successful generation.
type Pruner interface {
	Prune(ctx context.Context, userID uuid.UUID) (PruneResult, error)
}

type GenerationResult struct {
	RoomID          uuid.UUID
	GenerationID    uuid.UUID
	OutputImagePath string
}

type GenerationService struct {
	rooms   RoomStore
	gens    GenerationStore
	ledger  *Ledger
	objects ObjectStore
	images  ImageEditor
	text    TextCompleter
	pruner  Pruner
	cfg     GenerationConfig
	log     *logger.Logger
}

func NewGenerationService(
	rooms RoomStore,
	gens GenerationStore,
	ledger *Ledger,
	objects ObjectStore,
	images ImageEditor,
	text TextCompleter,
	pruner Pruner,
	cfg GenerationConfig,
	log *logger.Logger,
) *GenerationService {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.RecommendationTemperature == 0 {
		cfg.RecommendationTemperature = defaultRecommendationTemperature
	}
	return &GenerationService{
		rooms:   rooms,
		gens:    gens,
		ledger:  ledger,
		objects: objects,
		images:  images,
		text:    text,
		pruner:  pruner,
		cfg:     cfg,
		log:     log,
	}
}

// Start runs one generation attempt for a room to completion. Admission
// failures leave no side effects except the limit_reached marker; pipeline
// failures return the consumed quota and are reported as ErrGenerationFailed.
func (s *GenerationService) Start(ctx context.Context, roomID, callerID uuid.UUID) (*GenerationResult, error) {
	room, err := loadOwnedRoom(ctx, s.rooms, roomID, callerID)
	if err != nil {
		return nil, err
	}
	if !room.Complete() {
		return nil, ErrRoomIncomplete
	}
	if lifecycle.InFlight(room.Status, room.GenerationStatus) {
		return nil, ErrAlreadyGenerating
	}

	queued, err := s.rooms.TransitionRoom(ctx, room.ID, callerID, lifecycle.GenQueued, "")
	if err != nil {
		return nil, fmt.Errorf("failed to queue room: %w", err)
	}
	if !queued {
		return nil, ErrAlreadyGenerating
	}

	log := s.log.With("room_id", room.ID, "user_id", callerID)

	// Past this point caller cancellation is ignored so the room always
	// reaches done or error. External calls carry their own timeouts.
	work := context.WithoutCancel(ctx)

	admission, err := s.ledger.Admit(work, callerID)
	if err != nil {
		if errors.Is(err, ErrLimitReached) {
			log.Info("generation rejected: monthly limit reached")
			s.fail(work, log, room, ReasonLimitReached)
			return nil, ErrLimitReached
		}
		log.Error("quota admission failed", "error", err)
		s.fail(work, log, room, ReasonAdmissionFailed)
		return nil, ErrGenerationFailed
	}

	gen, reason, err := s.run(work, log, room, admission)
	if err != nil {
		log.Error("generation failed", "reason", reason, "error", err)
		if rbErr := s.ledger.Rollback(work, admission); rbErr != nil {
			log.Error("quota rollback failed", "error", rbErr)
		}
		s.fail(work, log, room, reason)
		return nil, ErrGenerationFailed
	}

	bestEffort(log, "recommendations", func() error {
		return s.enrich(work, gen, room)
	})

	done, err := s.rooms.TransitionRoom(work, room.ID, callerID, lifecycle.GenDone, "")
	if err != nil || !done {
		log.Error("failed to mark room done", "generation_id", gen.ID, "applied", done, "error", err)
		s.fail(work, log, room, ReasonPersistFailed)
		return nil, ErrGenerationFailed
	}

	if s.pruner != nil {
		bestEffort(log, "retention", func() error {
			_, err := s.pruner.Prune(work, callerID)
			return err
		})
	}

	log.Info("generation complete", "generation_id", gen.ID, "prompt_version", gen.PromptVersion)
	return &GenerationResult{
		RoomID:          room.ID,
		GenerationID:    gen.ID,
		OutputImagePath: gen.OutputImagePath,
	}, nil
}

// run executes download, both passes, upload and the generation insert in
// fixed order. The returned reason is set whenever err is.
func (s *GenerationService) run(ctx context.Context, log *logger.Logger, room *models.Room, a Admission) (*models.Generation, string, error) {
	in := prompts.InputsFor(room)

	src, err := withTimeout(ctx, s.cfg.CallTimeout, func(c context.Context) ([]byte, error) {
		return s.objects.Download(c, s.cfg.InputsBucket, room.InputImagePath.String)
	})
	if err != nil {
		return nil, reasonFor(err, ReasonDownloadFailed), fmt.Errorf("download source: %w", err)
	}

	s.advance(ctx, log, room, lifecycle.GenTidy)
	tidied, err := s.edit(ctx, prompts.TidyPrompt(in), src, "")
	if err != nil {
		return nil, reasonFor(err, ReasonTidyFailed), fmt.Errorf("tidy pass: %w", err)
	}

	pass, fidelity := lifecycle.GenRedesign, openai.FidelityLow
	if room.BudgetTier.RearrangeOnly() {
		pass, fidelity = lifecycle.GenRearrange, openai.FidelityHigh
	}
	s.advance(ctx, log, room, pass)
	styled, err := s.edit(ctx, prompts.StylePrompt(in), tidied, fidelity)
	if err != nil {
		return nil, reasonFor(err, ReasonStyleFailed), fmt.Errorf("style pass: %w", err)
	}

	s.advance(ctx, log, room, lifecycle.GenUploading)
	mt := mimetype.Detect(styled)
	ext := mt.Extension()
	if ext == "" {
		ext = ".png"
	}
	path := fmt.Sprintf("%s/%s%s", room.UserID, uuid.New(), ext)
	_, err = withTimeout(ctx, s.cfg.CallTimeout, func(c context.Context) (struct{}, error) {
		return struct{}{}, s.objects.Upload(c, s.cfg.OutputsBucket, path, styled, mt.String())
	})
	if err != nil {
		return nil, reasonFor(err, ReasonUploadFailed), fmt.Errorf("upload output: %w", err)
	}

	gen, err := s.gens.CreateGeneration(ctx, &models.Generation{
		ID:              uuid.New(),
		RoomID:          room.ID,
		UserID:          room.UserID,
		Provider:        ProviderOpenAI,
		PromptVersion:   prompts.PromptVersion(room.BudgetTier),
		OutputImagePath: path,
		Watermarked:     a.Plan.Watermarked(),
		Explanation:     prompts.Explanation(room.BudgetTier),
	})
	if err != nil {
		bestEffort(log, "orphan cleanup", func() error {
			return s.objects.Remove(ctx, s.cfg.OutputsBucket, []string{path})
		})
		return nil, ReasonPersistFailed, fmt.Errorf("persist generation: %w", err)
	}
	return gen, "", nil
}

func (s *GenerationService) edit(ctx context.Context, prompt string, image []byte, fidelity string) ([]byte, error) {
	if !openai.CapabilitiesFor(s.cfg.ImageModel).InputFidelity {
		fidelity = ""
	}
	return withTimeout(ctx, s.cfg.CallTimeout, func(c context.Context) ([]byte, error) {
		return s.images.EditImage(c, openai.ImageEditRequest{
			Model:         s.cfg.ImageModel,
			Prompt:        prompt,
			Image:         image,
			Size:          openai.DefaultImageSize,
			Quality:       openai.DefaultImageQuality,
			OutputFormat:  openai.DefaultOutputFormat,
			InputFidelity: fidelity,
		})
	})
}

// enrich asks for product recommendations and stores whatever came back.
func (s *GenerationService) enrich(ctx context.Context, gen *models.Generation, room *models.Room) error {
	if s.text == nil {
		return nil
	}
	in := prompts.InputsFor(room)
	reply, err := withTimeout(ctx, s.cfg.CallTimeout, func(c context.Context) (string, error) {
		return s.text.Complete(c, openai.CompletionRequest{
			Model:       s.cfg.TextModel,
			Temperature: s.cfg.RecommendationTemperature,
			Messages: []openai.Message{
				{Role: "system", Content: prompts.RecommendationSystemPrompt},
				{Role: "user", Content: prompts.RecommendationPrompt(in)},
			},
		})
	})
	if err != nil {
		return fmt.Errorf("completion: %w", err)
	}

	var parsed json.RawMessage
	if recs, ok := ParseRecommendations(reply); ok {
		if parsed, err = json.Marshal(recs); err != nil {
			parsed = nil
		}
	}
	return s.gens.SetRecommendations(ctx, gen.ID, gen.UserID, parsed, reply)
}

// advance is a best-effort intermediate status write.
func (s *GenerationService) advance(ctx context.Context, log *logger.Logger, room *models.Room, to lifecycle.GenerationStatus) {
	ok, err := s.rooms.TransitionRoom(ctx, room.ID, room.UserID, to, "")
	if err != nil {
		log.Warn("status write failed", "to", to, "error", err)
		return
	}
	if !ok {
		log.Warn("status write skipped", "to", to)
	}
}

// fail is the reliable terminal error write.
func (s *GenerationService) fail(ctx context.Context, log *logger.Logger, room *models.Room, reason string) {
	ok, err := s.rooms.TransitionRoom(ctx, room.ID, room.UserID, lifecycle.GenError, reason)
	if err != nil || !ok {
		log.Error("failed to mark room error", "reason", reason, "applied", ok, "error", err)
	}
}

func reasonFor(err error, fallback string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return fallback
}

func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	c, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(c)
}

// bestEffort runs fn and logs any error or panic without propagating it.
func bestEffort(log *logger.Logger, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("best-effort task panicked", "task", name, "panic", r)
		}
	}()
	if err := fn(); err != nil {
		log.Warn("best-effort task failed", "task", name, "error", err)
	}
}
