package services

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/avdeenko/club-system/models"
	"github.com/avdeenko/club-system/repositories"
	"github.com/avdeenko/club-system/storage"
)

// fakeTxManager runs the closure directly; the in-memory fakes below
// ignore the executor argument.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	users map[int]*models.User
}

func newFakeUserRepo(ids ...int) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, id := range ids {
		r.users[id] = &models.User{ID: id, FirstName: "Player", LastName: "N", Role: models.RolePlayer}
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, r.users[id])
	}
	return users, nil
}

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func newFakeTeamRepo(ids ...int) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, id := range ids {
		r.teams[id] = &models.Team{ID: id, Name: "Team", Color: "black"}
	}
	return r
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) List(ctx context.Context) ([]*models.Team, error) {
	teams := make([]*models.Team, 0, len(r.teams))
	for _, team := range r.teams {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (r *fakeTeamRepo) UpdateCrestKey(ctx context.Context, id int, crestKey *string) error {
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.CrestKey = crestKey
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) Create(ctx context.Context, match *models.Match) error {
	match.ID = len(r.matches) + 1
	match.CreatedAt = time.Now()
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMatchRepo) List(ctx context.Context, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, m := range r.matches {
		if statusFilter == nil || m.Status == *statusFilter {
			matches = append(matches, m)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r *fakeMatchRepo) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) Finalize(ctx context.Context, exec repositories.SQLExecutor, id int, teamAScore, teamBScore int, playedAt time.Time) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.TeamAScore = &teamAScore
	m.TeamBScore = &teamBScore
	m.Status = models.MatchStatusCompleted
	m.PlayedAt = &playedAt
	return nil
}

type fakeConfirmationRepo struct {
	records []*models.ConfirmationRecord
	nextID  int
	clock   time.Time
}

func newFakeConfirmationRepo() *fakeConfirmationRepo {
	return &fakeConfirmationRepo{clock: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
}

func (r *fakeConfirmationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, record *models.ConfirmationRecord) error {
	for _, existing := range r.records {
		if existing.MatchID == record.MatchID && existing.UserID == record.UserID {
			return repositories.ErrConfirmationConflict
		}
	}
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	record.ID = r.nextID
	record.CreatedAt = r.clock
	r.records = append(r.records, record)
	return nil
}

func (r *fakeConfirmationRepo) FindByMatchAndUser(ctx context.Context, exec repositories.SQLExecutor, matchID, userID int) (*models.ConfirmationRecord, error) {
	for _, record := range r.records {
		if record.MatchID == matchID && record.UserID == userID {
			return record, nil
		}
	}
	return nil, repositories.ErrConfirmationNotFound
}

func (r *fakeConfirmationRepo) CountConfirmedByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (int, error) {
	count := 0
	for _, record := range r.records {
		if record.MatchID == matchID && record.Status == models.ConfirmationConfirmed {
			count++
		}
	}
	return count, nil
}

func (r *fakeConfirmationRepo) UpdateState(ctx context.Context, exec repositories.SQLExecutor, id int, status models.ConfirmationStatus, isConfirmed bool, origin models.ConfirmationOrigin) error {
	for _, record := range r.records {
		if record.ID == id {
			record.Status = status
			record.IsConfirmed = isConfirmed
			record.Origin = origin
			return nil
		}
	}
	return repositories.ErrConfirmationNotFound
}

func (r *fakeConfirmationRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	for i, record := range r.records {
		if record.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return repositories.ErrConfirmationNotFound
}

func (r *fakeConfirmationRepo) FirstWaiting(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.ConfirmationRecord, error) {
	var first *models.ConfirmationRecord
	for _, record := range r.records {
		if record.MatchID != matchID || record.Status != models.ConfirmationWaiting {
			continue
		}
		if first == nil ||
			record.CreatedAt.Before(first.CreatedAt) ||
			(record.CreatedAt.Equal(first.CreatedAt) && record.ID < first.ID) {
			first = record
		}
	}
	if first == nil {
		return nil, repositories.ErrConfirmationNotFound
	}
	return first, nil
}

func (r *fakeConfirmationRepo) ListByMatch(ctx context.Context, matchID int) ([]*models.ConfirmationRecord, error) {
	records := make([]*models.ConfirmationRecord, 0)
	for _, record := range r.records {
		if record.MatchID == matchID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (r *fakeConfirmationRepo) statusOf(matchID, userID int) models.ConfirmationStatus {
	for _, record := range r.records {
		if record.MatchID == matchID && record.UserID == userID {
			return record.Status
		}
	}
	return ""
}

type fakeUploader struct {
	uploads map[string]string
	baseURL string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string]string), baseURL: "https://cdn.club.test"}
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	u.uploads[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key), ETag: "etag"}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	delete(u.uploads, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return u.baseURL + "/" + key
}

type fakeRosterRepo struct {
	entries []*models.RosterEntry
	nextID  int
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{}
}

func (r *fakeRosterRepo) CountByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (int, error) {
	count := 0
	for _, entry := range r.entries {
		if entry.MatchID == matchID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRosterRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, entries []*models.RosterEntry) error {
	for _, entry := range entries {
		for _, existing := range r.entries {
			if existing.MatchID == entry.MatchID && existing.UserID == entry.UserID {
				return repositories.ErrRosterEntryConflict
			}
		}
		r.nextID++
		entry.ID = r.nextID
		r.entries = append(r.entries, entry)
	}
	return nil
}

func (r *fakeRosterRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.RosterEntry, error) {
	entries := make([]*models.RosterEntry, 0)
	for _, entry := range r.entries {
		if entry.MatchID == matchID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (r *fakeRosterRepo) UpdateStats(ctx context.Context, exec repositories.SQLExecutor, id, matchID, goals, assists int) error {
	for _, entry := range r.entries {
		if entry.ID == id && entry.MatchID == matchID {
			entry.Goals = goals
			entry.Assists = assists
			return nil
		}
	}
	return repositories.ErrRosterEntryNotFound
}

func (r *fakeRosterRepo) ListAllWithMatches(ctx context.Context) ([]*models.RosterEntry, error) {
	return r.entries, nil
}
