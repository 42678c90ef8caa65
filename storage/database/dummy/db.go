package dummydb

import (
	"sync"

	"github.com/prajyots60/myskill-agenda/core/timeline"
)

type (
	DB struct {
		sessions  *entryTable
		exams     *entryTable
		reminders *reminderTable
	}

	entryRow struct {
		rec     timeline.Record
		ownerID string
	}

	entryTable struct {
		sync.RWMutex
		table map[string]*entryRow
	}

	// reminderTable maps entry id -> viewer id -> viewer email
	reminderTable struct {
		sync.RWMutex
		table map[string]map[string]string
	}
)

func Open() (*DB, error) {
	db := &DB{
		sessions:  &entryTable{table: make(map[string]*entryRow)},
		exams:     &entryTable{table: make(map[string]*entryRow)},
		reminders: &reminderTable{table: make(map[string]map[string]string)},
	}
	return db, nil
}
