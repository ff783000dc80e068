package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/examdesk/internal/entity"
)

// SubjectBadge is one subject attached to an exam.
type SubjectBadge struct {
	Label  string
	Abbr   string
	ID     int64
	IsMain bool
}

// SubjectSummary is a subject with the number of distinct exams using it.
type SubjectSummary struct {
	Label     string
	Abbr      string
	ID        int64
	ExamCount int
}

// ExamItem is an exam joined with its topic and subjects.
type ExamItem struct {
	TopicTitle       string
	TopicDescription string
	Subjects         []SubjectBadge
	entity.Exam
}

// StatusEntry is one row of a claim's status history.
type StatusEntry struct {
	CreatedAt  time.Time
	Status     string
	Info       string
	Supervisor string
}

// Claim is a key question claimed by a user, with its latest status.
type Claim struct {
	CreatedAt        time.Time
	StatusAt         *time.Time
	TopicTitle       string
	KeyQuestion      string
	MainSubject      string
	SecondarySubject string
	Status           string
	ID               int64
	ExamID           int64
	Year             int
}

// ExamRepository adds the joined read queries of the exam area.
type ExamRepository struct {
	*Repository[entity.Exam, *entity.Exam]
	q Querier
}

func NewExamRepository(q Querier) *ExamRepository {
	return &ExamRepository{Repository: New[entity.Exam](q), q: q}
}

const examItemSelect = `
	SELECT x.id, x.year, x.topic_id, x.key_question, x.user_id,
		coalesce(t.title, ''), coalesce(t.description, '')
	FROM exam x
		LEFT JOIN topic t ON t.id = x.topic_id`

// JoinSchoolSubjects lists the subjects of an exam, main subject first.
func (r *ExamRepository) JoinSchoolSubjects(ctx context.Context, examID int64) ([]SubjectBadge, error) {
	byExam, err := r.subjectsFor(ctx, []int64{examID})
	if err != nil {
		return nil, err
	}
	return byExam[examID], nil
}

func (r *ExamRepository) subjectsFor(ctx context.Context, examIDs []int64) (map[int64][]SubjectBadge, error) {
	const query = `
		SELECT e.exam_id, s.id, e.is_main_school_subject, s.label, s.abbr
		FROM school_subject s
			INNER JOIN exam_has_school_subject e ON e.school_subject_id = s.id
		WHERE e.exam_id = ANY($1)
		ORDER BY e.exam_id, e.is_main_school_subject DESC, s.label`

	out := make(map[int64][]SubjectBadge, len(examIDs))
	if len(examIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, query, examIDs)
	if err != nil {
		return nil, wrap("join school subjects", "exam", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			examID int64
			b      SubjectBadge
		)
		if err := rows.Scan(&examID, &b.ID, &b.IsMain, &b.Label, &b.Abbr); err != nil {
			return nil, wrap("join school subjects", "exam", err)
		}
		out[examID] = append(out[examID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("join school subjects", "exam", err)
	}
	return out, nil
}

// SubjectSummaries lists every subject with its distinct exam count,
// ordered by label. Subjects without exams count 0.
func (r *ExamRepository) SubjectSummaries(ctx context.Context) ([]SubjectSummary, error) {
	const query = `
		SELECT s.id, s.label, s.abbr, count(DISTINCT e.exam_id)
		FROM school_subject s
			LEFT JOIN exam_has_school_subject e ON e.school_subject_id = s.id
		GROUP BY s.id, s.label, s.abbr
		ORDER BY s.label`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrap("subject summaries", "school_subject", err)
	}
	defer rows.Close()

	var out []SubjectSummary
	for rows.Next() {
		var s SubjectSummary
		if err := rows.Scan(&s.ID, &s.Label, &s.Abbr, &s.ExamCount); err != nil {
			return nil, wrap("subject summaries", "school_subject", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("subject summaries", "school_subject", err)
	}
	return out, nil
}

// ExamsBySubject lists exams where subjectID is the main (main=true) or the
// secondary subject, newest first.
func (r *ExamRepository) ExamsBySubject(ctx context.Context, subjectID int64, main bool) ([]ExamItem, error) {
	query := examItemSelect + `
		INNER JOIN exam_has_school_subject e ON e.exam_id = x.id
		WHERE e.school_subject_id = $1 AND e.is_main_school_subject = $2
		ORDER BY x.year DESC, x.id`
	return r.items(ctx, "exams by subject", query, subjectID, main)
}

// ClaimableExams lists unclaimed exams whose waiting period is over in
// now's year.
func (r *ExamRepository) ClaimableExams(ctx context.Context, now time.Time) ([]ExamItem, error) {
	query := examItemSelect + `
		WHERE x.user_id IS NULL AND x.year + $1 <= $2
		ORDER BY x.year, x.id`
	return r.items(ctx, "claimable exams", query, entity.ClaimWaitYears, now.Year())
}

// Item loads one exam with topic and subjects.
func (r *ExamRepository) Item(ctx context.Context, examID int64) (*ExamItem, error) {
	items, err := r.items(ctx, "item", examItemSelect+" WHERE x.id = $1", examID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, NotFound("item", "exam")
	}
	return &items[0], nil
}

func (r *ExamRepository) items(ctx context.Context, op, query string, args ...any) ([]ExamItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, "exam", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExamItem, error) {
		var it ExamItem
		err := row.Scan(&it.ID, &it.Year, &it.TopicID, &it.KeyQuestion, &it.UserID, &it.TopicTitle, &it.TopicDescription)
		return it, err
	})
	if err != nil {
		return nil, wrap(op, "exam", err)
	}

	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	subjects, err := r.subjectsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Subjects = subjects[items[i].ID]
	}
	return items, nil
}

// StatusHistory lists the status entries of every claim on examID, oldest
// first.
func (r *ExamRepository) StatusHistory(ctx context.Context, examID int64) ([]StatusEntry, error) {
	const query = `
		SELECT st.label, h.info, u.username, h.created_at
		FROM exam_has_exam_status h
			INNER JOIN user_has_exam ue ON ue.id = h.user_exam_id
			INNER JOIN exam_status st ON st.id = h.exam_status_id
			INNER JOIN app_user u ON u.id = h.supervisor_id
		WHERE ue.exam_id = $1
		ORDER BY h.created_at, h.id`

	rows, err := r.q.Query(ctx, query, examID)
	if err != nil {
		return nil, wrap("status history", "exam", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (StatusEntry, error) {
		var s StatusEntry
		err := row.Scan(&s.Status, &s.Info, &s.Supervisor, &s.CreatedAt)
		return s, err
	})
	return out, wrap("status history", "exam", err)
}

// ClaimsByUser lists userID's claims, newest first, each with its latest
// status.
func (r *ExamRepository) ClaimsByUser(ctx context.Context, userID int64) ([]Claim, error) {
	const query = `
		SELECT ue.id, ue.exam_id, x.year, t.title, ue.key_question, ms.label, ss.label,
			ue.created_at, coalesce(latest.label, ''), latest.created_at
		FROM user_has_exam ue
			INNER JOIN exam x ON x.id = ue.exam_id
			INNER JOIN topic t ON t.id = ue.topic_id
			INNER JOIN school_subject ms ON ms.id = ue.main_subject_id
			INNER JOIN school_subject ss ON ss.id = ue.secondary_subject_id
			LEFT JOIN LATERAL (
				SELECT st.label, h.created_at
				FROM exam_has_exam_status h
					INNER JOIN exam_status st ON st.id = h.exam_status_id
				WHERE h.user_exam_id = ue.id
				ORDER BY h.created_at DESC, h.id DESC
				LIMIT 1
			) latest ON true
		WHERE ue.user_id = $1
		ORDER BY ue.created_at DESC, ue.id DESC`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, wrap("claims by user", "user_has_exam", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Claim, error) {
		var c Claim
		err := row.Scan(&c.ID, &c.ExamID, &c.Year, &c.TopicTitle, &c.KeyQuestion, &c.MainSubject,
			&c.SecondarySubject, &c.CreatedAt, &c.Status, &c.StatusAt)
		return c, err
	})
	return out, wrap("claims by user", "user_has_exam", err)
}
