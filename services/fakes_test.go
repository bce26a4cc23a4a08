package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/repositories"
	"github.com/Dosada05/fest-portal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID int
	teams  map[int]models.Team
	// inUse отмечает команды, на которые ссылаются участники или результаты.
	inUse map[int]bool
	err   error
}

func newFakeTeamRepo(teams ...models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: map[int]models.Team{}, inUse: map[int]bool{}}
	for _, t := range teams {
		r.teams[t.ID] = t
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
	}
	return r
}

func (r *fakeTeamRepo) nameTaken(name string, except int) bool {
	for id, t := range r.teams {
		if id != except && t.Name == name {
			return true
		}
	}
	return false
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.nameTaken(team.Name, 0) {
		return repositories.ErrTeamNameConflict
	}
	r.nextID++
	team.ID = r.nextID
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &t, nil
}

func (r *fakeTeamRepo) List(_ context.Context) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []models.Team
	for _, t := range r.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	if r.nameTaken(team.Name, team.ID) {
		return repositories.ErrTeamNameConflict
	}
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) UpdateLeaderPhotoKey(_ context.Context, id int, slot models.LeaderSlot, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	if slot == models.LeaderSlotSecond {
		t.Leader2PhotoKey = key
	} else {
		t.Leader1PhotoKey = key
	}
	r.teams[id] = t
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	if r.inUse[id] {
		return repositories.ErrTeamInUse
	}
	delete(r.teams, id)
	return nil
}

func (r *fakeTeamRepo) SetDefault(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	for tid, t := range r.teams {
		t.IsDefault = tid == id
		r.teams[tid] = t
	}
	return nil
}

func (r *fakeTeamRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.teams), nil
}

type fakeCandidateRepo struct {
	mu         sync.Mutex
	nextID     int
	candidates map[int]models.Candidate
	teams      *fakeTeamRepo
}

func newFakeCandidateRepo(teams *fakeTeamRepo, candidates ...models.Candidate) *fakeCandidateRepo {
	r := &fakeCandidateRepo{candidates: map[int]models.Candidate{}, teams: teams}
	for _, c := range candidates {
		r.candidates[c.ID] = c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *fakeCandidateRepo) Create(_ context.Context, c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.candidates[c.ID] = *c
	return nil
}

func (r *fakeCandidateRepo) GetByID(_ context.Context, id int) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, repositories.ErrCandidateNotFound
	}
	return &c, nil
}

func (r *fakeCandidateRepo) List(_ context.Context) ([]models.Candidate, error) {
	return r.filter(func(models.Candidate) bool { return true }), nil
}

func (r *fakeCandidateRepo) ListByTeam(_ context.Context, teamID int) ([]models.Candidate, error) {
	return r.filter(func(c models.Candidate) bool { return c.TeamID == teamID }), nil
}

func (r *fakeCandidateRepo) filter(keep func(models.Candidate) bool) []models.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Candidate
	for _, c := range r.candidates {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *fakeCandidateRepo) Update(_ context.Context, c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[c.ID]; !ok {
		return repositories.ErrCandidateNotFound
	}
	r.candidates[c.ID] = *c
	return nil
}

func (r *fakeCandidateRepo) UpdatePhotoKey(_ context.Context, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return repositories.ErrCandidateNotFound
	}
	c.PhotoKey = key
	r.candidates[id] = c
	return nil
}

func (r *fakeCandidateRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[id]; !ok {
		return repositories.ErrCandidateNotFound
	}
	delete(r.candidates, id)
	return nil
}

func (r *fakeCandidateRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.candidates), nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	nextID int
	events map[int]models.Event
	inUse  map[int]bool
}

func newFakeEventRepo(events ...models.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: map[int]models.Event{}, inUse: map[int]bool{}}
	for _, e := range events {
		r.events[e.ID] = e
		if e.ID > r.nextID {
			r.nextID = e.ID
		}
	}
	return r
}

func (r *fakeEventRepo) Create(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.events[e.ID] = *e
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return &e, nil
}

func (r *fakeEventRepo) List(_ context.Context) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEventRepo) Update(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	r.events[e.ID] = *e
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	if r.inUse[id] {
		return repositories.ErrEventInUse
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events), nil
}

func (r *fakeEventRepo) CountCategories(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	for _, e := range r.events {
		seen[e.Category] = true
	}
	return len(seen), nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	nextID  int
	results map[int]models.Result
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: map[int]models.Result{}}
}

func (r *fakeResultRepo) Create(_ context.Context, res *models.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	res.ID = r.nextID
	r.results[res.ID] = *res
	return nil
}

func (r *fakeResultRepo) GetByID(_ context.Context, id int) (*models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[id]
	if !ok {
		return nil, repositories.ErrResultNotFound
	}
	return &res, nil
}

func (r *fakeResultRepo) List(_ context.Context) ([]models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Result
	for _, res := range r.results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeResultRepo) ListForStandings(ctx context.Context) ([]models.Result, error) {
	return r.List(ctx)
}

func (r *fakeResultRepo) ExistsForCandidate(_ context.Context, candidateID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.results {
		if res.CandidateID != nil && *res.CandidateID == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeResultRepo) Update(_ context.Context, res *models.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.results[res.ID]; !ok {
		return repositories.ErrResultNotFound
	}
	r.results[res.ID] = *res
	return nil
}

func (r *fakeResultRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.results[id]; !ok {
		return repositories.ErrResultNotFound
	}
	delete(r.results, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int]models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id int, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	r.users[id] = u
	return nil
}

// memoryUploader хранит объекты в памяти; URL = base + key.
type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: map[string][]byte{}}
}

func (u *memoryUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.objects[key]; !ok {
		return errors.New("no such object")
	}
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
