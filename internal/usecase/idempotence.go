package usecase

import "time"

type Idempotence struct {
	repo idempotenceRepository
	now  func() time.Time
}

func NewIdempotence(repo idempotenceRepository) *Idempotence {
	return &Idempotence{
		repo: repo,
		now:  time.Now,
	}
}

func (u *Idempotence) Execute(id string) (bool, error) {
	return u.repo.MakeRecord(id, u.now().UTC())
}

// Forget removes records older than retention.
func (u *Idempotence) Forget(retention time.Duration) (int, error) {
	return u.repo.Prune(u.now().UTC().Add(-retention))
}
