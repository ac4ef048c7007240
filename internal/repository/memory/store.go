// Package memory is an in-process implementation of the profile
// repositories. Units of work run one at a time against a cloned snapshot
// that replaces the committed state only when the work succeeds.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"campus-connect-backend/internal/domain"
)

type state struct {
	seq            int64
	profiles       map[int64]domain.StudentProfile
	addresses      map[int64]domain.Address
	education      map[int64]domain.Education
	experience     map[int64]domain.Experience
	achievements   map[int64]domain.Achievement
	certifications map[int64]domain.Certification
}

func newState() *state {
	return &state{
		profiles:       map[int64]domain.StudentProfile{},
		addresses:      map[int64]domain.Address{},
		education:      map[int64]domain.Education{},
		experience:     map[int64]domain.Experience{},
		achievements:   map[int64]domain.Achievement{},
		certifications: map[int64]domain.Certification{},
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := &state{
		seq:            s.seq,
		profiles:       make(map[int64]domain.StudentProfile, len(s.profiles)),
		addresses:      make(map[int64]domain.Address, len(s.addresses)),
		education:      make(map[int64]domain.Education, len(s.education)),
		experience:     make(map[int64]domain.Experience, len(s.experience)),
		achievements:   make(map[int64]domain.Achievement, len(s.achievements)),
		certifications: make(map[int64]domain.Certification, len(s.certifications)),
	}
	for k, v := range s.profiles {
		c.profiles[k] = copyProfile(v)
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.education {
		c.education[k] = v
	}
	for k, v := range s.experience {
		c.experience[k] = v
	}
	for k, v := range s.achievements {
		c.achievements[k] = v
	}
	for k, v := range s.certifications {
		c.certifications[k] = v
	}
	return c
}

// Store implements domain.UnitOfWork.
type Store struct {
	mu        sync.RWMutex // guards committed
	writeMu   sync.Mutex   // serializes units of work
	committed *state

	failMu   sync.Mutex
	failures map[string]error
}

var _ domain.UnitOfWork = (*Store)(nil)

func NewStore() *Store {
	return &Store{committed: newState(), failures: map[string]error{}}
}

// FailOn makes every later call of op (e.g. "experience.insert") return err.
// A nil err clears the failure.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

// RowCounts reports committed rows per table.
func (s *Store) RowCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"student_profiles": len(s.committed.profiles),
		"addresses":        len(s.committed.addresses),
		"educations":       len(s.committed.education),
		"experiences":      len(s.committed.experience),
		"achievements":     len(s.committed.achievements),
		"certifications":   len(s.committed.certifications),
	}
}

func (s *Store) Reader() domain.Repositories {
	return newRepositories(&view{store: s, st: s.committed, mu: &s.mu})
}

func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	staged := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(ctx, newRepositories(&view{store: s, st: staged})); err != nil {
		return err
	}
	if err := s.failure("commit"); err != nil {
		return err
	}

	s.mu.Lock()
	*s.committed = *staged
	s.mu.Unlock()
	return nil
}

// view binds repositories to either the committed state (mu set) or a
// staged snapshot owned by a single unit of work (mu nil).
type view struct {
	store *Store
	st    *state
	mu    *sync.RWMutex
}

func (v *view) read(fn func(st *state) error) error {
	if v.mu != nil {
		v.mu.RLock()
		defer v.mu.RUnlock()
	}
	return fn(v.st)
}

func (v *view) write(op string, fn func(st *state) error) error {
	if err := v.store.failure(op); err != nil {
		return err
	}
	if v.mu != nil {
		v.mu.Lock()
		defer v.mu.Unlock()
	}
	return fn(v.st)
}

func newRepositories(v *view) domain.Repositories {
	return domain.Repositories{
		Profiles:       &profileRepository{v},
		Addresses:      &addressRepository{v},
		Education:      &educationRepository{v},
		Experience:     &experienceRepository{v},
		Achievements:   &achievementRepository{v},
		Certifications: &certificationRepository{v},
	}
}

// ============================================================================
// Profiles
// ============================================================================

type profileRepository struct{ v *view }

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.StudentProfile, error) {
	var found *domain.StudentProfile
	err := r.v.read(func(st *state) error {
		for _, p := range st.profiles {
			if p.UserID == userID {
				cp := copyProfile(p)
				found = &cp
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *profileRepository) List(ctx context.Context) ([]domain.StudentProfile, error) {
	var result []domain.StudentProfile
	err := r.v.read(func(st *state) error {
		result = make([]domain.StudentProfile, 0, len(st.profiles))
		for _, p := range st.profiles {
			result = append(result, copyProfile(p))
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, err
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.StudentProfile) error {
	return r.v.write("profile.create", func(st *state) error {
		for _, p := range st.profiles {
			if p.UserID == profile.UserID {
				return fmt.Errorf("profile for user %s: %w", profile.UserID, domain.ErrConflict)
			}
		}
		now := time.Now().UTC()
		profile.ID = st.nextID()
		profile.CreatedAt = now
		profile.UpdatedAt = now
		st.profiles[profile.ID] = copyProfile(*profile)
		return nil
	})
}

func (r *profileRepository) UpdateScalars(ctx context.Context, profile *domain.StudentProfile) error {
	return r.v.write("profile.update", func(st *state) error {
		current, ok := st.profiles[profile.ID]
		if !ok {
			return fmt.Errorf("profile %d: %w", profile.ID, domain.ErrNotFound)
		}
		profile.UserID = current.UserID
		profile.CreatedAt = current.CreatedAt
		profile.UpdatedAt = time.Now().UTC()
		st.profiles[profile.ID] = copyProfile(*profile)
		return nil
	})
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	return r.v.write("profile.delete", func(st *state) error {
		delete(st.profiles, id)
		return nil
	})
}

// LockByUserID is a no-op: units of work already run one at a time.
func (r *profileRepository) LockByUserID(ctx context.Context, userID string) error {
	return nil
}

func copyProfile(p domain.StudentProfile) domain.StudentProfile {
	if p.Skills != nil {
		p.Skills = append([]string(nil), p.Skills...)
	}
	if p.ResumePath != nil {
		path := *p.ResumePath
		p.ResumePath = &path
	}
	if p.AddressID != nil {
		id := *p.AddressID
		p.AddressID = &id
	}
	return p
}

// ============================================================================
// Addresses
// ============================================================================

type addressRepository struct{ v *view }

func (r *addressRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	var found *domain.Address
	err := r.v.read(func(st *state) error {
		if a, ok := st.addresses[id]; ok {
			found = &a
		}
		return nil
	})
	return found, err
}

func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	return r.v.write("address.create", func(st *state) error {
		address.ID = st.nextID()
		st.addresses[address.ID] = *address
		return nil
	})
}

func (r *addressRepository) Update(ctx context.Context, address *domain.Address) error {
	return r.v.write("address.update", func(st *state) error {
		if _, ok := st.addresses[address.ID]; !ok {
			return fmt.Errorf("address %d: %w", address.ID, domain.ErrNotFound)
		}
		st.addresses[address.ID] = *address
		return nil
	})
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	return r.v.write("address.delete", func(st *state) error {
		delete(st.addresses, id)
		return nil
	})
}

// ============================================================================
// Child collections
// ============================================================================

type educationRepository struct{ v *view }

func (r *educationRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Education, error) {
	var rows []domain.Education
	err := r.v.read(func(st *state) error {
		for _, e := range st.education {
			if e.ProfileID == profileID {
				rows = append(rows, e)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, err
}

func (r *educationRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	return r.v.write("education.delete", func(st *state) error {
		for id, e := range st.education {
			if e.ProfileID == profileID {
				delete(st.education, id)
			}
		}
		return nil
	})
}

func (r *educationRepository) BulkInsert(ctx context.Context, rows []domain.Education) error {
	return r.v.write("education.insert", func(st *state) error {
		for _, e := range rows {
			e.ID = st.nextID()
			st.education[e.ID] = e
		}
		return nil
	})
}

type experienceRepository struct{ v *view }

func (r *experienceRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Experience, error) {
	var rows []domain.Experience
	err := r.v.read(func(st *state) error {
		for _, e := range st.experience {
			if e.ProfileID == profileID {
				rows = append(rows, e)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, err
}

func (r *experienceRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	return r.v.write("experience.delete", func(st *state) error {
		for id, e := range st.experience {
			if e.ProfileID == profileID {
				delete(st.experience, id)
			}
		}
		return nil
	})
}

func (r *experienceRepository) BulkInsert(ctx context.Context, rows []domain.Experience) error {
	return r.v.write("experience.insert", func(st *state) error {
		for _, e := range rows {
			e.ID = st.nextID()
			st.experience[e.ID] = e
		}
		return nil
	})
}

type achievementRepository struct{ v *view }

func (r *achievementRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Achievement, error) {
	var rows []domain.Achievement
	err := r.v.read(func(st *state) error {
		for _, a := range st.achievements {
			if a.ProfileID == profileID {
				rows = append(rows, a)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, err
}

func (r *achievementRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	return r.v.write("achievement.delete", func(st *state) error {
		for id, a := range st.achievements {
			if a.ProfileID == profileID {
				delete(st.achievements, id)
			}
		}
		return nil
	})
}

func (r *achievementRepository) BulkInsert(ctx context.Context, rows []domain.Achievement) error {
	return r.v.write("achievement.insert", func(st *state) error {
		for _, a := range rows {
			a.ID = st.nextID()
			st.achievements[a.ID] = a
		}
		return nil
	})
}

type certificationRepository struct{ v *view }

func (r *certificationRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Certification, error) {
	var rows []domain.Certification
	err := r.v.read(func(st *state) error {
		for _, c := range st.certifications {
			if c.ProfileID == profileID {
				rows = append(rows, c)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, err
}

func (r *certificationRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	return r.v.write("certification.delete", func(st *state) error {
		for id, c := range st.certifications {
			if c.ProfileID == profileID {
				delete(st.certifications, id)
			}
		}
		return nil
	})
}

func (r *certificationRepository) BulkInsert(ctx context.Context, rows []domain.Certification) error {
	return r.v.write("certification.insert", func(st *state) error {
		for _, c := range rows {
			c.ID = st.nextID()
			st.certifications[c.ID] = c
		}
		return nil
	})
}
