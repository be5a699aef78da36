package backup

import "time"

// CurrentVersion is the version written by Export.
const CurrentVersion = 2

// Supported reports whether version is a known snapshot version.
func Supported(version int) bool {
	return version == 1 || version == 2
}

// Snapshot is the full database content.
type Snapshot struct {
	Version    int          `json:"version" validate:"oneof=1 2"`
	ExportedAt string       `json:"exported_at"`
	Groups     []Group      `json:"groups" validate:"dive"`
	Students   []Student    `json:"students" validate:"dive"`
	Attendance []Attendance `json:"attendance" validate:"dive"`
	Payments   []Payment    `json:"payments" validate:"dive"`
}

// Group is a groups row. Absent from version 1.
type Group struct {
	ID        int64   `json:"id" validate:"required,gt=0"`
	Name      *string `json:"name" validate:"required"`
	CreatedAt *string `json:"created_at"`
}

// Student is a students row. GroupID and PaymentAmount are absent from version 1.
type Student struct {
	ID            int64   `json:"id" validate:"required,gt=0"`
	Name          *string `json:"name" validate:"required"`
	GroupID       *int64  `json:"group_id" validate:"omitempty,gt=0"`
	PaymentAmount float64 `json:"payment_amount"`
	CreatedAt     *string `json:"created_at"`
}

// Attendance is an attendance row. A nil ID gets a fresh identity on import.
type Attendance struct {
	ID        *int64 `json:"id" validate:"omitempty,gt=0"`
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=present absent late offday"`
}

// Payment is a payments row. A nil ID gets a fresh identity on import.
type Payment struct {
	ID        *int64   `json:"id" validate:"omitempty,gt=0"`
	StudentID int64    `json:"student_id" validate:"required,gt=0"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
	Amount    *float64 `json:"amount" validate:"required"`
	Note      *string  `json:"note"`
	CreatedAt *string  `json:"created_at"`
}

// FileName is the conventional file name of a backup taken at t.
func FileName(t time.Time) string {
	return "attendance-backup-" + t.UTC().Format("2006-01-02") + ".json"
}

// Normalize applies version defaults: version 1 carries no groups, and every
// student gets no group and a zero payment amount.
func Normalize(snap Snapshot) Snapshot {
	if snap.Version != 1 {
		return snap
	}
	snap.Groups = nil
	students := make([]Student, len(snap.Students))
	for i, s := range snap.Students {
		s.GroupID = nil
		s.PaymentAmount = 0
		students[i] = s
	}
	snap.Students = students
	return snap
}
