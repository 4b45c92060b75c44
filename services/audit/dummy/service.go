package dummyaudit

import (
	"sync"

	"github.com/miraalabed/schoolsys/core"
)

// Service keeps appended entries in memory for tests to inspect.
type Service struct {
	mu      sync.Mutex
	entries []string
}

var _ core.AuditService = (*Service)(nil)

func NewService() *Service { return &Service{} }

func (svc *Service) Append(entry string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.entries = append(svc.entries, entry)
}

func (svc *Service) Entries() []string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]string(nil), svc.entries...)
}

func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.entries = nil
}
