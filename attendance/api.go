package attendance

// Status is the attendance mark for one student on one day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	// StatusOffday means no session took place. A missing record reads the same way.
	StatusOffday Status = "offday"
)

// Valid reports whether s is one of the four known marks.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusOffday:
		return true
	}
	return false
}

// Group is a named set of students.
type Group struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// Student is an enrolled person. GroupID is nil when the student belongs to no group.
type Student struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	GroupID       *int64  `json:"group_id"`
	PaymentAmount float64 `json:"payment_amount"`
	CreatedAt     string  `json:"created_at"`
}

// AttendanceRecord is the mark of one student on one day. At most one exists
// per (StudentID, Date).
type AttendanceRecord struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
	Status    Status `json:"status"`
}

// PaymentRecord is one payment. Several may exist per student and day.
type PaymentRecord struct {
	ID        int64   `json:"id"`
	StudentID int64   `json:"student_id"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note"`
	CreatedAt string  `json:"created_at"`
}

// StudentOptions holds the optional fields of AddStudent.
type StudentOptions struct {
	GroupID       *int64
	PaymentAmount *float64
}

// StudentPatch describes a partial student update. Nil fields are left
// unchanged; ClearGroup removes the student from its group.
type StudentPatch struct {
	Name          *string
	GroupID       *int64
	ClearGroup    bool
	PaymentAmount *float64
}

// Empty reports whether the patch changes nothing.
func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.GroupID == nil && !p.ClearGroup && p.PaymentAmount == nil
}

// GroupStats aggregates a group over the trailing window [From, To].
type GroupStats struct {
	GroupID        int64   `json:"group_id"`
	TotalCollected float64 `json:"total_collected"`
	StudentCount   int     `json:"student_count"`
	From           string  `json:"from"`
	To             string  `json:"to"`
}
