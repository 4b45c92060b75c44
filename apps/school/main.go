package main

import (
	"io"
	"log"
	"os"

	"github.com/miraalabed/schoolsys/core"
	"github.com/miraalabed/schoolsys/core/school"
	auditsvc "github.com/miraalabed/schoolsys/services/audit"
	"github.com/miraalabed/schoolsys/storage/flatfile"
)

var logger = log.New(os.Stdout, "SCHOOL : ", log.LstdFlags)

func main() {
	if err := run(core.Conf.DataDir, core.Conf.AuditLogPath, os.Stdin, os.Stdout); err != nil {
		errAndDie(err)
	}
}

// run wires the store, audit sink and service, then drives the interactive
// session. Errors are returned rather than fatal-logged so the deferred
// Close always releases the store lock.
func run(dataDir, auditLogPath string, in io.Reader, out io.Writer) error {
	db, err := flatfile.Open(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.Load()
	if err != nil {
		return err
	}
	for _, lerr := range report.Errors {
		logger.Printf("skipped record: %v", lerr)
	}

	svc := school.NewService(db, auditsvc.NewFileService(auditLogPath))
	newSession(newTermConsole(in, out), svc).run()
	return nil
}

func errAndDie(err error) {
	logger.Fatalf("%+v", err)
}
