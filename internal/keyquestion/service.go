// Package keyquestion implements the key question workflow: a supervisor
// claims an exam whose waiting period is over, and the claim is handed over
// for clearance in one transaction.
package keyquestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/pkg/sanitizer"
	"github.com/dmitrymomot/examdesk/pkg/validator"
)

var (
	// ErrLocked is returned for exams that cannot be claimed.
	ErrLocked = errors.New("keyquestion: exam is locked")

	errClaimed = errors.New("keyquestion: exam is already claimed")

	errNoClearanceStatus = errors.New("keyquestion: exam status " + entity.StatusClearance + " is not seeded")
)

// TaskNotifyClearance is the job enqueued after a successful transfer.
const TaskNotifyClearance = "notify_clearance"

// InfoCreated is the info text of the first status entry of a claim.
const InfoCreated = "Antrag angelegt"

// Store is what the workflow reads and writes.
type Store interface {
	Exam(ctx context.Context, id int64) (*entity.Exam, error)
	// LockExam loads the exam and holds its row until the transaction ends.
	LockExam(ctx context.Context, id int64) (*entity.Exam, error)
	UserByName(ctx context.Context, username string) (*entity.User, error)
	TopicByTitle(ctx context.Context, title string) (*entity.Topic, error)
	SubjectByLabel(ctx context.Context, label string) (*entity.SchoolSubject, error)
	StatusByLabel(ctx context.Context, label string) (*entity.ExamStatus, error)
	ExamSubjects(ctx context.Context, examID int64) ([]*entity.ExamHasSchoolSubject, error)
	Persist(ctx context.Context, e entity.Entity) (int64, error)
	Enqueue(ctx context.Context, task string, payload any) error
}

// Database is a Store that can also open a transaction.
type Database interface {
	Store
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// TransferRequest is the claim form.
type TransferRequest struct {
	Username         string `form:"username" validate:"required,max=180"`
	Topic            string `form:"topic" validate:"required,max=255"`
	MainSubject      string `form:"school_subject_1" validate:"required,max=255"`
	SecondarySubject string `form:"school_subject_2" validate:"required,max=255"`
	KeyQuestion      string `form:"key_question" validate:"required,max=2000"`
	ExamID           int64  `form:"exam_id" validate:"required,gt=0"`
}

// Notification is the payload of TaskNotifyClearance.
type Notification struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Topic       string `json:"topic"`
	KeyQuestion string `json:"key_question"`
	ClaimID     int64  `json:"claim_id"`
	ExamID      int64  `json:"exam_id"`
	Year        int    `json:"year"`
}

type Service struct {
	db  Database
	now func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for the timestamps written by Transfer.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db Database, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Eligible reports whether claimant may claim exam in now's year.
func Eligible(exam *entity.Exam, claimant *internal.Identity, now time.Time) bool {
	return exam != nil && claimant != nil && !exam.Locked(now) && !exam.Claimed()
}

// Claim returns the exam when claimant may start a claim on it, and
// ErrLocked otherwise. A missing exam is reported as not found.
func (s *Service) Claim(ctx context.Context, examID int64, claimant *internal.Identity, now time.Time) (*entity.Exam, error) {
	exam, err := s.db.Exam(ctx, examID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.Join(ErrLocked, err)
		}
		return nil, err
	}
	if !Eligible(exam, claimant, now) {
		return exam, ErrLocked
	}
	return exam, nil
}

// Transfer records the claim described by req. It returns false without
// writing anything when the exam is already claimed, and ErrLocked while the
// waiting period runs. Names that cannot be resolved abort with a validation
// error naming the form field.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (bool, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Topic = strings.TrimSpace(req.Topic)
	req.MainSubject = strings.TrimSpace(req.MainSubject)
	req.SecondarySubject = strings.TrimSpace(req.SecondarySubject)
	req.KeyQuestion = sanitizer.Text(req.KeyQuestion)
	if err := validator.Struct(req); err != nil {
		return false, err
	}

	var transferred bool
	err := s.db.InTx(ctx, func(ctx context.Context, st Store) error {
		exam, err := st.LockExam(ctx, req.ExamID)
		if err != nil {
			return err
		}
		now := s.now()
		if exam.Claimed() {
			return nil
		}
		if exam.Locked(now) {
			return ErrLocked
		}

		claim, err := resolve(ctx, st, req)
		if err != nil {
			return err
		}
		user, topic := claim.user, claim.topic

		status, err := st.StatusByLabel(ctx, entity.StatusClearance)
		if err != nil {
			if repository.IsNotFound(err) {
				return errNoClearanceStatus
			}
			return err
		}

		row := &entity.UserHasExam{
			UserID:             user.ID,
			ExamID:             exam.ID,
			KeyQuestion:        req.KeyQuestion,
			TopicID:            topic.ID,
			MainSubjectID:      claim.main.ID,
			SecondarySubjectID: claim.secondary.ID,
			CreatedAt:          now,
		}
		if _, err := st.Persist(ctx, row); err != nil {
			if repository.IsConflict(err) {
				return errClaimed
			}
			return err
		}

		history := &entity.ExamHasExamStatus{
			Info:         InfoCreated,
			UserExamID:   row.ID,
			SupervisorID: user.ID,
			ExamStatusID: status.ID,
			CreatedAt:    now,
		}
		if _, err := st.Persist(ctx, history); err != nil {
			return err
		}

		subjects, err := st.ExamSubjects(ctx, exam.ID)
		if err != nil {
			return err
		}
		for _, es := range subjects {
			es.UserID = &user.ID
			if _, err := st.Persist(ctx, es); err != nil {
				return err
			}
		}

		exam.UserID = &user.ID
		if _, err := st.Persist(ctx, exam); err != nil {
			return err
		}

		err = st.Enqueue(ctx, TaskNotifyClearance, Notification{
			Username:    user.Username,
			Email:       user.Email,
			Topic:       topic.Title,
			KeyQuestion: row.KeyQuestion,
			ClaimID:     row.ID,
			ExamID:      exam.ID,
			Year:        exam.Year,
		})
		if err != nil {
			return fmt.Errorf("keyquestion: enqueue %s: %w", TaskNotifyClearance, err)
		}

		transferred = true
		return nil
	})
	switch {
	case errors.Is(err, errClaimed):
		return false, nil
	case err != nil:
		return false, err
	}
	return transferred, nil
}

type resolved struct {
	user      *entity.User
	topic     *entity.Topic
	main      *entity.SchoolSubject
	secondary *entity.SchoolSubject
}

func resolve(ctx context.Context, st Store, req TransferRequest) (*resolved, error) {
	var (
		r   resolved
		err error
	)
	if r.user, err = st.UserByName(ctx, req.Username); err != nil {
		return nil, unresolved(err, "app_user", "username")
	}
	if r.topic, err = st.TopicByTitle(ctx, req.Topic); err != nil {
		return nil, unresolved(err, "topic", "topic")
	}
	if r.main, err = st.SubjectByLabel(ctx, req.MainSubject); err != nil {
		return nil, unresolved(err, "school_subject", "school_subject_1")
	}
	if r.secondary, err = st.SubjectByLabel(ctx, req.SecondarySubject); err != nil {
		return nil, unresolved(err, "school_subject", "school_subject_2")
	}
	return &r, nil
}

func unresolved(err error, table, field string) error {
	if repository.IsNotFound(err) {
		return repository.Invalid("transfer", table, field, err)
	}
	return err
}

// UnresolvedField returns the form field a Transfer error names, or "".
func UnresolvedField(err error) string {
	if !repository.IsValidation(err) {
		return ""
	}
	return repository.FieldOf(err)
}
