package model

import "time"

// Todo is a single user task record.
//
// JSON field names are part of the persisted wire format (the "todos" slot)
// and must not change.
type Todo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats summarizes a collection for one visibility scope.
//
// Total/Completed/Pending count the scoped (active or active+archived) set;
// Archived always counts archived todos across the whole collection.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Archived  int `json:"archived"`
}

// BackupVersion is the wire version of the backup blob.
const BackupVersion = "1.0"

// Backup is the wire shape of the "autotodo_backup_data" slot.
type Backup struct {
	Timestamp int64      `json:"timestamp"`
	Version   string     `json:"version"`
	Data      BackupData `json:"data"`
}

type BackupData struct {
	Todos []Todo `json:"todos"`
}
