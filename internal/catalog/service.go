// Package catalog serves the read side of the exam archive: subjects with
// their exam counts, exam lists per subject, exam details and claims.
package catalog

import (
	"context"
	"time"

	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/pkg/cache"
)

const subjectsKey = "catalog:subjects"

// Store is satisfied by *repository.ExamRepository.
type Store interface {
	SubjectSummaries(ctx context.Context) ([]repository.SubjectSummary, error)
	ExamsBySubject(ctx context.Context, subjectID int64, main bool) ([]repository.ExamItem, error)
	ClaimableExams(ctx context.Context, now time.Time) ([]repository.ExamItem, error)
	Item(ctx context.Context, examID int64) (*repository.ExamItem, error)
	StatusHistory(ctx context.Context, examID int64) ([]repository.StatusEntry, error)
	ClaimsByUser(ctx context.Context, userID int64) ([]repository.Claim, error)
}

// SubjectExams is the exam list of one subject.
type SubjectExams struct {
	Subject   repository.SubjectSummary
	Main      []repository.ExamItem
	Secondary []repository.ExamItem
}

// ExamDetails is one exam with the status history of its claim.
type ExamDetails struct {
	Exam    *repository.ExamItem
	History []repository.StatusEntry
}

type Service struct {
	store    Store
	subjects *cache.Loader[[]repository.SubjectSummary]
}

// NewService caches the subject summaries in c for ttl. A nil cache
// disables caching.
func NewService(store Store, c cache.Cache[[]repository.SubjectSummary], ttl time.Duration) *Service {
	s := &Service{store: store}
	if c != nil {
		s.subjects = cache.NewLoader(c, ttl)
	}
	return s
}

// Subjects lists every subject with its exam count, ordered by label.
func (s *Service) Subjects(ctx context.Context) ([]repository.SubjectSummary, error) {
	if s.subjects == nil {
		return s.store.SubjectSummaries(ctx)
	}
	return s.subjects.Load(ctx, subjectsKey, s.store.SubjectSummaries)
}

// Invalidate drops cached summaries after exams or subjects changed.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.subjects == nil {
		return nil
	}
	return s.subjects.Invalidate(ctx, subjectsKey)
}

// Subject returns the exams of subjectID, split by main and secondary
// subject. An unknown subject is reported as not found.
func (s *Service) Subject(ctx context.Context, subjectID int64) (*SubjectExams, error) {
	subjects, err := s.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	out := &SubjectExams{}
	found := false
	for _, sub := range subjects {
		if sub.ID == subjectID {
			out.Subject, found = sub, true
			break
		}
	}
	if !found {
		return nil, repository.NotFound("subject", "school_subject")
	}

	if out.Main, err = s.store.ExamsBySubject(ctx, subjectID, true); err != nil {
		return nil, err
	}
	if out.Secondary, err = s.store.ExamsBySubject(ctx, subjectID, false); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Exam(ctx context.Context, examID int64) (*ExamDetails, error) {
	item, err := s.store.Item(ctx, examID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.StatusHistory(ctx, examID)
	if err != nil {
		return nil, err
	}
	return &ExamDetails{Exam: item, History: history}, nil
}

func (s *Service) Claimable(ctx context.Context, now time.Time) ([]repository.ExamItem, error) {
	return s.store.ClaimableExams(ctx, now)
}

func (s *Service) Claims(ctx context.Context, userID int64) ([]repository.Claim, error) {
	return s.store.ClaimsByUser(ctx, userID)
}
