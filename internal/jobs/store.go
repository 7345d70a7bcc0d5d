package jobs

import "sync"

// Store is the shared job table. Reads return snapshot copies so callers
// never alias worker-owned state. Each job is written by exactly one worker
// (plus the sweeper's deletes); the lock makes polls safe against both.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

// Put registers a new job, replacing any previous entry with the same ID.
func (s *Store) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns a snapshot of one job.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return snapshot(job), true
}

// Update applies fn to the stored job under the write lock. It returns
// false when the job no longer exists.
func (s *Store) Update(id string, fn func(*Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// Delete evicts a job from the table.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// Range calls fn with a snapshot of every job; returning false stops the
// iteration.
func (s *Store) Range(fn func(Job) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, job := range s.jobs {
		if !fn(snapshot(job)) {
			return
		}
	}
}

// Len reports the number of live jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func snapshot(job *Job) Job {
	cp := *job
	if job.Result != nil {
		result := *job.Result
		cp.Result = &result
	}
	return cp
}
