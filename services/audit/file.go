package auditsvc

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/miraalabed/schoolsys/core"
)

// fileService appends audit entries to a single log file. Entries arrive
// fully formatted; this sink only adds the trailing newline.
type fileService struct {
	mu   sync.Mutex
	path string
}

var _ core.AuditService = (*fileService)(nil)

func NewFileService(path string) core.AuditService {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("auditsvc: %v", err)
	}
	return &fileService{path: path}
}

func (svc *fileService) Append(entry string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	f, err := os.OpenFile(svc.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("auditsvc: %v", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(entry + "\n"); err != nil {
		log.Printf("auditsvc: %v", err)
	}
}
