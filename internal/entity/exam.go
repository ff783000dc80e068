package entity

import "time"

type SchoolSubject struct {
	Label string
	Abbr  string
	ID    int64
}

func (*SchoolSubject) Table() string        { return "school_subject" }
func (*SchoolSubject) Columns() []string    { return []string{"label", "abbr"} }
func (s *SchoolSubject) Values() []any      { return []any{s.Label, s.Abbr} }
func (s *SchoolSubject) ScanTargets() []any { return []any{&s.ID, &s.Label, &s.Abbr} }
func (s *SchoolSubject) GetID() int64       { return s.ID }
func (s *SchoolSubject) SetID(id int64)     { s.ID = id }

type Topic struct {
	Title       string
	Description string
	ID          int64
}

func (*Topic) Table() string        { return "topic" }
func (*Topic) Columns() []string    { return []string{"title", "description"} }
func (t *Topic) Values() []any      { return []any{t.Title, t.Description} }
func (t *Topic) ScanTargets() []any { return []any{&t.ID, &t.Title, &t.Description} }
func (t *Topic) GetID() int64       { return t.ID }
func (t *Topic) SetID(id int64)     { t.ID = id }

// Exam is a past exam whose topic can be claimed once it is old enough.
// UserID is set when a supervisor has claimed it.
type Exam struct {
	TopicID     *int64
	UserID      *int64
	KeyQuestion string
	ID          int64
	Year        int
}

func (*Exam) Table() string { return "exam" }

func (*Exam) Columns() []string {
	return []string{"year", "topic_id", "key_question", "user_id"}
}

func (e *Exam) Values() []any {
	return []any{e.Year, e.TopicID, e.KeyQuestion, e.UserID}
}

func (e *Exam) ScanTargets() []any {
	return []any{&e.ID, &e.Year, &e.TopicID, &e.KeyQuestion, &e.UserID}
}

func (e *Exam) GetID() int64   { return e.ID }
func (e *Exam) SetID(id int64) { e.ID = id }

// FreeFrom is the first year the exam can be claimed.
func (e *Exam) FreeFrom() int { return e.Year + ClaimWaitYears }

// Locked reports whether the exam is still inside its waiting period.
func (e *Exam) Locked(now time.Time) bool { return now.Year() < e.FreeFrom() }

func (e *Exam) Claimed() bool { return e.UserID != nil }

// ExamHasSchoolSubject attaches a subject to an exam, once as main subject
// and once as secondary subject.
type ExamHasSchoolSubject struct {
	UserID              *int64
	ID                  int64
	ExamID              int64
	SchoolSubjectID     int64
	IsMainSchoolSubject bool
}

func (*ExamHasSchoolSubject) Table() string { return "exam_has_school_subject" }

func (*ExamHasSchoolSubject) Columns() []string {
	return []string{"exam_id", "school_subject_id", "is_main_school_subject", "user_id"}
}

func (e *ExamHasSchoolSubject) Values() []any {
	return []any{e.ExamID, e.SchoolSubjectID, e.IsMainSchoolSubject, e.UserID}
}

func (e *ExamHasSchoolSubject) ScanTargets() []any {
	return []any{&e.ID, &e.ExamID, &e.SchoolSubjectID, &e.IsMainSchoolSubject, &e.UserID}
}

func (e *ExamHasSchoolSubject) GetID() int64   { return e.ID }
func (e *ExamHasSchoolSubject) SetID(id int64) { e.ID = id }

type ExamStatus struct {
	Label string
	ID    int64
}

func (*ExamStatus) Table() string        { return "exam_status" }
func (*ExamStatus) Columns() []string    { return []string{"label"} }
func (s *ExamStatus) Values() []any      { return []any{s.Label} }
func (s *ExamStatus) ScanTargets() []any { return []any{&s.ID, &s.Label} }
func (s *ExamStatus) GetID() int64       { return s.ID }
func (s *ExamStatus) SetID(id int64)     { s.ID = id }

// ExamHasExamStatus is one entry of a claim's append-only status history.
type ExamHasExamStatus struct {
	CreatedAt    time.Time
	Info         string
	ID           int64
	UserExamID   int64
	SupervisorID int64
	ExamStatusID int64
}

func (*ExamHasExamStatus) Table() string { return "exam_has_exam_status" }

func (*ExamHasExamStatus) Columns() []string {
	return []string{"info", "user_exam_id", "supervisor_id", "exam_status_id", "created_at"}
}

func (s *ExamHasExamStatus) Values() []any {
	return []any{s.Info, s.UserExamID, s.SupervisorID, s.ExamStatusID, s.CreatedAt}
}

func (s *ExamHasExamStatus) ScanTargets() []any {
	return []any{&s.ID, &s.Info, &s.UserExamID, &s.SupervisorID, &s.ExamStatusID, &s.CreatedAt}
}

func (s *ExamHasExamStatus) GetID() int64   { return s.ID }
func (s *ExamHasExamStatus) SetID(id int64) { s.ID = id }

// UserHasExam is a claim: the supervisor, the key question and the subjects
// picked for it.
type UserHasExam struct {
	CreatedAt          time.Time
	KeyQuestion        string
	ID                 int64
	UserID             int64
	ExamID             int64
	TopicID            int64
	MainSubjectID      int64
	SecondarySubjectID int64
}

func (*UserHasExam) Table() string { return "user_has_exam" }

func (*UserHasExam) Columns() []string {
	return []string{"user_id", "exam_id", "key_question", "topic_id", "main_subject_id", "secondary_subject_id", "created_at"}
}

func (u *UserHasExam) Values() []any {
	return []any{u.UserID, u.ExamID, u.KeyQuestion, u.TopicID, u.MainSubjectID, u.SecondarySubjectID, u.CreatedAt}
}

func (u *UserHasExam) ScanTargets() []any {
	return []any{&u.ID, &u.UserID, &u.ExamID, &u.KeyQuestion, &u.TopicID, &u.MainSubjectID, &u.SecondarySubjectID, &u.CreatedAt}
}

func (u *UserHasExam) GetID() int64   { return u.ID }
func (u *UserHasExam) SetID(id int64) { u.ID = id }
