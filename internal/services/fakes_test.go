package services_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"cozylogic-backend/internal/lifecycle"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/openai"
	"cozylogic-backend/internal/services"
	"cozylogic-backend/internal/supabase"

	"github.com/google/uuid"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)
)

// events is a shared, ordered log of store and provider calls.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

type fakeRooms struct {
	mu        sync.Mutex
	rooms     map[uuid.UUID]*models.Room
	ev        *events
	createErr error
	// staleRead, when set, is returned by GetRoom in place of the stored row.
	staleRead *models.Room
}

func newFakeRooms(ev *events) *fakeRooms {
	return &fakeRooms{rooms: map[uuid.UUID]*models.Room{}, ev: ev}
}

func (f *fakeRooms) put(r *models.Room) *models.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.rooms[r.ID] = &cp
	return r
}

func (f *fakeRooms) get(id uuid.UUID) models.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.rooms[id]
}

func (f *fakeRooms) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.ev.add("create_room")
	f.put(room)
	return room, nil
}

func (f *fakeRooms) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleRead != nil {
		cp := *f.staleRead
		return &cp, nil
	}
	r, ok := f.rooms[roomID]
	if !ok || r.DeletedAt.Valid {
		return nil, supabase.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRooms) UpdateSelections(ctx context.Context, roomID, userID uuid.UUID, sel models.Selections) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok || r.UserID != userID || r.DeletedAt.Valid || r.Status.InFlight() {
		return nil, supabase.ErrNotFound
	}
	if sel.RoomType != nil {
		r.RoomType = *sel.RoomType
	}
	if sel.Goal != nil {
		r.Goal = *sel.Goal
	}
	if sel.StyleKey != nil {
		r.StyleKey = *sel.StyleKey
	}
	if sel.BudgetTier != nil {
		r.BudgetTier = *sel.BudgetTier
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRooms) TransitionRoom(ctx context.Context, roomID, userID uuid.UUID, to lifecycle.GenerationStatus, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok || r.UserID != userID || r.DeletedAt.Valid {
		return false, nil
	}
	if lifecycle.Transition(r.GenerationStatus, to) != nil {
		return false, nil
	}
	if to == lifecycle.GenQueued && r.Status.InFlight() {
		return false, nil
	}
	r.GenerationStatus = to
	r.Status = lifecycle.RoomStatusFor(to)
	switch to {
	case lifecycle.GenError:
		r.GenerationError = sql.NullString{String: reason, Valid: true}
	case lifecycle.GenQueued:
		r.GenerationError = sql.NullString{}
	}
	f.ev.add("status:%s", to)
	return true, nil
}

func (f *fakeRooms) SoftDeleteRoom(ctx context.Context, roomID, userID uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok || r.UserID != userID {
		return false, supabase.ErrNotFound
	}
	if r.DeletedAt.Valid {
		return true, nil
	}
	if r.Status.InFlight() {
		return false, supabase.ErrRoomBusy
	}
	r.DeletedAt = sql.NullTime{Time: at, Valid: true}
	return false, nil
}

type fakeGenerations struct {
	mu        sync.Mutex
	gens      map[uuid.UUID]*models.Generation
	ev        *events
	clock     time.Time
	createErr error
	setRecErr error
}

func newFakeGenerations(ev *events) *fakeGenerations {
	return &fakeGenerations{
		gens:  map[uuid.UUID]*models.Generation{},
		ev:    ev,
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// seed adds n live generations for a user, oldest first. Every row gets
// its own output path.
func (f *fakeGenerations) seed(userID, roomID uuid.UUID, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range n {
		id := uuid.New()
		g, _ := f.CreateGeneration(context.Background(), &models.Generation{
			ID:              id,
			RoomID:          roomID,
			UserID:          userID,
			OutputImagePath: fmt.Sprintf("%s/%s.png", userID, id),
		})
		ids[i] = g.ID
	}
	return ids
}

func (f *fakeGenerations) CreateGeneration(ctx context.Context, g *models.Generation) (*models.Generation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Second)
	cp := *g
	cp.CreatedAt = f.clock
	f.gens[g.ID] = &cp
	f.ev.add("create_generation")
	out := cp
	return &out, nil
}

func (f *fakeGenerations) SetRecommendations(ctx context.Context, generationID, userID uuid.UUID, parsed json.RawMessage, raw string) error {
	if f.setRecErr != nil {
		return f.setRecErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gens[generationID]
	if !ok || g.UserID != userID {
		return supabase.ErrNotFound
	}
	if len(parsed) > 0 {
		g.Recommendations = parsed
		g.RecommendationsRaw = sql.NullString{}
	} else {
		g.RecommendationsRaw = sql.NullString{String: raw, Valid: true}
	}
	f.ev.add("set_recommendations")
	return nil
}

func (f *fakeGenerations) GetGeneration(ctx context.Context, generationID, userID uuid.UUID) (*models.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gens[generationID]
	if !ok || g.UserID != userID {
		return nil, supabase.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGenerations) list(match func(*models.Generation) bool) []models.Generation {
	var out []models.Generation
	for _, g := range f.gens {
		if match(g) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

func (f *fakeGenerations) ListActiveGenerations(ctx context.Context, userID uuid.UUID) ([]models.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(g *models.Generation) bool {
		return g.UserID == userID && !g.DeletedAt.Valid
	}), nil
}

func (f *fakeGenerations) ListPendingHardDeletes(ctx context.Context, userID uuid.UUID, roomID uuid.NullUUID) ([]models.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(g *models.Generation) bool {
		return g.UserID == userID && g.DeletedAt.Valid && !g.HardDeletedAt.Valid &&
			(!roomID.Valid || g.RoomID == roomID.UUID)
	}), nil
}

func (f *fakeGenerations) SoftDeleteGenerations(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if g, ok := f.gens[id]; ok && g.UserID == userID && !g.DeletedAt.Valid {
			g.DeletedAt = sql.NullTime{Time: at, Valid: true}
			n++
		}
	}
	return n, nil
}

func (f *fakeGenerations) SoftDeleteRoomGenerations(ctx context.Context, roomID, userID uuid.UUID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, g := range f.gens {
		if g.RoomID == roomID && g.UserID == userID && !g.DeletedAt.Valid {
			g.DeletedAt = sql.NullTime{Time: at, Valid: true}
			n++
		}
	}
	return n, nil
}

func (f *fakeGenerations) MarkHardDeleted(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if g, ok := f.gens[id]; ok && g.UserID == userID {
			g.HardDeletedAt = sql.NullTime{Time: at, Valid: true}
		}
	}
	return nil
}

func (f *fakeGenerations) count(userID uuid.UUID) (live, total int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.gens {
		if g.UserID != userID {
			continue
		}
		total++
		if !g.DeletedAt.Valid {
			live++
		}
	}
	return live, total
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
	getErr   error
	incErr   error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[uuid.UUID]*models.Profile{}}
}

func (f *fakeProfiles) put(p models.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = &p
}

func (f *fakeProfiles) get(id uuid.UUID) models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.profiles[id]
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, supabase.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) EnsureProfile(ctx context.Context, userID uuid.UUID, resetAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[userID]; !ok {
		f.profiles[userID] = &models.Profile{
			ID:                     userID,
			Plan:                   models.PlanFree,
			MonthlyGenerationLimit: sql.NullInt64{Int64: 1, Valid: true},
			UsageResetAt:           resetAt,
			SavedGenerationLimit:   sql.NullInt64{Int64: models.DefaultSavedGenerationLimit, Valid: true},
		}
	}
	return nil
}

func (f *fakeProfiles) ResetUsage(ctx context.Context, userID uuid.UUID, observed, next time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok || !p.UsageResetAt.Equal(observed) {
		return false, nil
	}
	p.MonthlyGenerationsUsed = 0
	p.UsageResetAt = next
	return true, nil
}

func (f *fakeProfiles) IncrementUsage(ctx context.Context, userID uuid.UUID) (int, bool, error) {
	if f.incErr != nil {
		return 0, false, f.incErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok || (p.MonthlyGenerationLimit.Valid && int64(p.MonthlyGenerationsUsed) >= p.MonthlyGenerationLimit.Int64) {
		return 0, false, nil
	}
	p.MonthlyGenerationsUsed++
	return p.MonthlyGenerationsUsed, true, nil
}

func (f *fakeProfiles) RestoreUsage(ctx context.Context, userID uuid.UUID, expected, prev int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok || p.MonthlyGenerationsUsed != expected {
		return false, nil
	}
	p.MonthlyGenerationsUsed = prev
	return true, nil
}

func (f *fakeProfiles) DecrementUsage(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[userID]; ok && p.MonthlyGenerationsUsed > 0 {
		p.MonthlyGenerationsUsed--
	}
	return nil
}

func (f *fakeProfiles) SetUsage(ctx context.Context, userID uuid.UUID, used int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return supabase.ErrNotFound
	}
	p.MonthlyGenerationsUsed = used
	return nil
}

type fakeObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	ev        *events
	downloads int
	uploadErr error
	// removeErr fails removal of the listed paths.
	removeErr map[string]error
	signed    []string
}

func newFakeObjects(ev *events) *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, ev: ev, removeErr: map[string]error{}}
}

func objectKey(bucket, path string) string { return bucket + "/" + path }

func (f *fakeObjects) put(bucket, path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey(bucket, path)] = data
}

func (f *fakeObjects) has(bucket, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectKey(bucket, path)]
	return ok
}

func (f *fakeObjects) countIn(bucket string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.objects {
		if len(k) > len(bucket) && k[:len(bucket)+1] == bucket+"/" {
			n++
		}
	}
	return n
}

func (f *fakeObjects) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	f.ev.add("download")
	data, ok := f.objects[objectKey(bucket, path)]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeObjects) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.ev.add("upload")
	f.put(bucket, path, data)
	return nil
}

func (f *fakeObjects) Remove(ctx context.Context, bucket string, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range paths {
		if err := f.removeErr[p]; err != nil {
			return err
		}
		delete(f.objects, objectKey(bucket, p))
	}
	return nil
}

func (f *fakeObjects) CreateSignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signed = append(f.signed, objectKey(bucket, path))
	return fmt.Sprintf("https://storage.test/%s/%s?ttl=%d", bucket, path, int(ttl.Seconds())), nil
}

type fakeImages struct {
	mu       sync.Mutex
	ev       *events
	requests []openai.ImageEditRequest
	// failOn makes the n-th call (1-based) return err.
	failOn int
	err    error
	// block makes every call wait for ctx to end.
	block bool
	// entered and release park the first call until released.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeImages) EditImage(ctx context.Context, req openai.ImageEditRequest) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	f.mu.Unlock()
	f.ev.add("edit")

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n == 1 && f.entered != nil {
		close(f.entered)
		<-f.release
	}
	if f.failOn == n {
		return nil, f.err
	}
	return pngBytes, nil
}

func (f *fakeImages) calls() []openai.ImageEditRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]openai.ImageEditRequest(nil), f.requests...)
}

type fakeText struct {
	reply    string
	err      error
	requests []openai.CompletionRequest
}

func (f *fakeText) Complete(ctx context.Context, req openai.CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

type fakePruner struct {
	calls int
	err   error
}

func (f *fakePruner) Prune(ctx context.Context, userID uuid.UUID) (services.PruneResult, error) {
	f.calls++
	return services.PruneResult{}, f.err
}
