// -----------------------------------------------------------------------
// Run database - persisted task jobs, states and prerequisites
// -----------------------------------------------------------------------

package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/cursus/internal/interfaces"
)

// Persisted records. Key shapes: "job/<cycle>/<name>/<submit>",
// "state/<cycle>/<name>", "prereq/<cycle>/<name>/<pcycle>/<pname>/<out>".

type taskJobRecord struct {
	Key string `badgerhold:"key"`
	interfaces.TaskJobRow
}

type taskStateRecord struct {
	Key string `badgerhold:"key"`
	interfaces.TaskStateRow
}

type taskPrereqRecord struct {
	Key string `badgerhold:"key"`
	interfaces.TaskPrereqRow
}

// RunStateStorage implements interfaces.RunDatabase on Badger.
var _ interfaces.RunDatabase = (*RunStateStorage)(nil)

type RunStateStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRunStateStorage creates the run-state storage.
func NewRunStateStorage(db *BadgerDB, logger arbor.ILogger) *RunStateStorage {
	return &RunStateStorage{db: db, logger: logger}
}

func (s *RunStateStorage) PutTaskJob(row *interfaces.TaskJobRow) error {
	if row.Cycle == "" || row.Name == "" {
		return fmt.Errorf("task job row requires cycle and name")
	}
	key := fmt.Sprintf("job/%s/%s/%02d", row.Cycle, row.Name, row.SubmitNum)
	record := &taskJobRecord{Key: key, TaskJobRow: *row}
	if err := s.db.Store().Upsert(key, record); err != nil {
		return fmt.Errorf("failed to save task job row: %w", err)
	}
	return nil
}

func (s *RunStateStorage) PutTaskState(row *interfaces.TaskStateRow) error {
	if row.Cycle == "" || row.Name == "" {
		return fmt.Errorf("task state row requires cycle and name")
	}
	key := fmt.Sprintf("state/%s/%s", row.Cycle, row.Name)
	record := &taskStateRecord{Key: key, TaskStateRow: *row}
	if err := s.db.Store().Upsert(key, record); err != nil {
		return fmt.Errorf("failed to save task state row: %w", err)
	}
	return nil
}

func (s *RunStateStorage) PutTaskPrereq(row *interfaces.TaskPrereqRow) error {
	key := fmt.Sprintf("prereq/%s/%s/%s/%s/%s",
		row.Cycle, row.Name, row.PrereqCycle, row.PrereqName, row.PrereqOutput)
	record := &taskPrereqRecord{Key: key, TaskPrereqRow: *row}
	if err := s.db.Store().Upsert(key, record); err != nil {
		return fmt.Errorf("failed to save task prerequisite row: %w", err)
	}
	return nil
}

func (s *RunStateStorage) TaskJobs(cycle, name string) ([]*interfaces.TaskJobRow, error) {
	var records []taskJobRecord
	query := badgerhold.Where("Cycle").Eq(cycle).And("Name").Eq(name)
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list task job rows: %w", err)
	}
	out := make([]*interfaces.TaskJobRow, len(records))
	for i := range records {
		row := records[i].TaskJobRow
		out[i] = &row
	}
	return out, nil
}

func (s *RunStateStorage) TaskStates() ([]*interfaces.TaskStateRow, error) {
	var records []taskStateRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("Key").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list task state rows: %w", err)
	}
	out := make([]*interfaces.TaskStateRow, len(records))
	for i := range records {
		row := records[i].TaskStateRow
		out[i] = &row
	}
	return out, nil
}

func (s *RunStateStorage) TaskPrereqs(cycle, name string) ([]*interfaces.TaskPrereqRow, error) {
	var records []taskPrereqRecord
	query := badgerhold.Where("Cycle").Eq(cycle).And("Name").Eq(name)
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list task prerequisite rows: %w", err)
	}
	out := make([]*interfaces.TaskPrereqRow, len(records))
	for i := range records {
		row := records[i].TaskPrereqRow
		out[i] = &row
	}
	return out, nil
}

// HealthCheck verifies the store is writable.
func (s *RunStateStorage) HealthCheck() error {
	key := "health/probe"
	record := &taskStateRecord{Key: key}
	if err := s.db.Store().Upsert(key, record); err != nil {
		return fmt.Errorf("run database health check failed: %w", err)
	}
	return s.db.Store().Delete(key, record)
}

// Close closes the underlying connection.
func (s *RunStateStorage) Close() error {
	return s.db.Close()
}
