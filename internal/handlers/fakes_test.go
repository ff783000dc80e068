package handlers_test

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/keyquestion"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/internal/roles"
)

var errNotFound = repository.NotFound("find", "fake")

// archive is the exam data shared by the catalog and workflow fakes.
type archive struct {
	subjects []repository.SubjectSummary
	exams    map[int64]*repository.ExamItem
	claims   []repository.Claim
	written  []entity.Entity
	jobs     []string

	enqueueErr error
}

func newArchive() *archive {
	return &archive{
		subjects: []repository.SubjectSummary{
			{ID: 1, Label: "Mathematik", Abbr: "M", ExamCount: 3},
			{ID: 2, Label: "Physik", Abbr: "Ph", ExamCount: 0},
		},
		exams: map[int64]*repository.ExamItem{
			1: exam(1, 2018, "Analysis"),
			2: exam(2, 2020, "Stochastik"),
			3: exam(3, 2023, "Geometrie"),
		},
	}
}

func exam(id int64, year int, topic string) *repository.ExamItem {
	return &repository.ExamItem{
		Exam:       entity.Exam{ID: id, Year: year, KeyQuestion: "Leitfrage " + topic},
		TopicTitle: topic,
		Subjects:   []repository.SubjectBadge{{ID: 1, Label: "Mathematik", Abbr: "M", IsMain: true}},
	}
}

func (a *archive) SubjectSummaries(context.Context) ([]repository.SubjectSummary, error) {
	return a.subjects, nil
}

func (a *archive) ExamsBySubject(_ context.Context, subjectID int64, main bool) ([]repository.ExamItem, error) {
	var out []repository.ExamItem
	for _, id := range []int64{1, 2, 3} {
		it := a.exams[id]
		for _, b := range it.Subjects {
			if b.ID == subjectID && b.IsMain == main {
				out = append(out, *it)
			}
		}
	}
	return out, nil
}

func (a *archive) ClaimableExams(_ context.Context, now time.Time) ([]repository.ExamItem, error) {
	var out []repository.ExamItem
	for _, id := range []int64{1, 2, 3} {
		it := a.exams[id]
		if !it.Claimed() && !it.Locked(now) {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (a *archive) Item(_ context.Context, examID int64) (*repository.ExamItem, error) {
	if it, ok := a.exams[examID]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, errNotFound
}

func (a *archive) StatusHistory(context.Context, int64) ([]repository.StatusEntry, error) {
	return nil, nil
}

func (a *archive) ClaimsByUser(_ context.Context, userID int64) ([]repository.Claim, error) {
	return a.claims, nil
}

// workflow adapts the archive to keyquestion.Database.
type workflow struct{ *archive }

func (w workflow) InTx(ctx context.Context, fn func(context.Context, keyquestion.Store) error) error {
	written, jobs := len(w.written), len(w.jobs)
	saved := make(map[int64]entity.Exam, len(w.exams))
	for id, it := range w.exams {
		saved[id] = it.Exam
	}
	if err := fn(ctx, w); err != nil {
		w.written, w.jobs = w.written[:written], w.jobs[:jobs]
		for id, ex := range saved {
			w.exams[id].Exam = ex
		}
		return err
	}
	return nil
}

func (w workflow) LockExam(ctx context.Context, id int64) (*entity.Exam, error) {
	return w.Exam(ctx, id)
}

func (w workflow) Exam(_ context.Context, id int64) (*entity.Exam, error) {
	if it, ok := w.exams[id]; ok {
		cp := it.Exam
		return &cp, nil
	}
	return nil, errNotFound
}

func (w workflow) UserByName(_ context.Context, name string) (*entity.User, error) {
	if name != "mueller" {
		return nil, errNotFound
	}
	return &entity.User{ID: 7, Username: "mueller", Email: "mueller@example.org"}, nil
}

func (w workflow) TopicByTitle(_ context.Context, title string) (*entity.Topic, error) {
	for _, it := range w.exams {
		if it.TopicTitle == title {
			return &entity.Topic{ID: it.ID + 100, Title: title}, nil
		}
	}
	return nil, errNotFound
}

func (w workflow) SubjectByLabel(_ context.Context, label string) (*entity.SchoolSubject, error) {
	for _, s := range w.subjects {
		if s.Label == label {
			return &entity.SchoolSubject{ID: s.ID, Label: s.Label}, nil
		}
	}
	return nil, errNotFound
}

func (w workflow) StatusByLabel(context.Context, string) (*entity.ExamStatus, error) {
	return &entity.ExamStatus{ID: 1, Label: entity.StatusClearance}, nil
}

func (w workflow) ExamSubjects(context.Context, int64) ([]*entity.ExamHasSchoolSubject, error) {
	return nil, nil
}

func (w workflow) Persist(_ context.Context, e entity.Entity) (int64, error) {
	if e.GetID() == 0 {
		e.SetID(int64(len(w.written) + 1000))
	}
	w.written = append(w.written, e)
	if ex, ok := e.(*entity.Exam); ok {
		w.exams[ex.ID].Exam = *ex
	}
	return e.GetID(), nil
}

func (w workflow) Enqueue(_ context.Context, task string, _ any) error {
	if w.enqueueErr != nil {
		return w.enqueueErr
	}
	w.jobs = append(w.jobs, task)
	return nil
}

type grant struct{ role, perm int64 }

type roleStore struct {
	roles   []*entity.UserRole
	perms   []*entity.RolePermission
	grants  []grant
	creates int
}

func newRoleStore() *roleStore {
	return &roleStore{
		roles: []*entity.UserRole{{ID: 1, Label: "admin"}, {ID: 2, Label: "teacher"}},
		perms: []*entity.RolePermission{
			{ID: 1, Label: "create_key_question"},
			{ID: 2, Label: "show_profile"},
		},
		grants: []grant{{1, 1}, {1, 2}, {2, 2}},
	}
}

func (s *roleStore) InTx(ctx context.Context, fn func(context.Context, roles.Store) error) error {
	return fn(ctx, s)
}

func (s *roleStore) Roles(context.Context) ([]*entity.UserRole, error) { return s.roles, nil }

func (s *roleStore) Role(_ context.Context, id int64) (*entity.UserRole, error) {
	for _, r := range s.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errNotFound
}

func (s *roleStore) LabelIsUnique(_ context.Context, label string) (bool, error) {
	return !slices.ContainsFunc(s.roles, func(r *entity.UserRole) bool { return r.Label == label }), nil
}

func (s *roleStore) Permissions(context.Context) ([]*entity.RolePermission, error) {
	return s.perms, nil
}

func (s *roleStore) PermissionsOf(_ context.Context, roleID int64) ([]*entity.RolePermission, error) {
	var out []*entity.RolePermission
	for _, p := range s.perms {
		if slices.Contains(s.grants, grant{roleID, p.ID}) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *roleStore) Grant(_ context.Context, roleID, permissionID int64) (bool, error) {
	if slices.Contains(s.grants, grant{roleID, permissionID}) {
		return false, nil
	}
	s.grants = append(s.grants, grant{roleID, permissionID})
	return true, nil
}

func (s *roleStore) Revoke(_ context.Context, roleID, permissionID int64) (int64, error) {
	n := len(s.grants)
	s.grants = slices.DeleteFunc(s.grants, func(g grant) bool { return g.role == roleID && g.perm == permissionID })
	return int64(n - len(s.grants)), nil
}

func (s *roleStore) Create(_ context.Context, role *entity.UserRole) error {
	s.creates++
	role.ID = int64(len(s.roles) + 1)
	s.roles = append(s.roles, role)
	return nil
}

func (s *roleStore) Delete(_ context.Context, roleID int64) error {
	if _, err := s.Role(context.Background(), roleID); err != nil {
		return err
	}
	s.roles = slices.DeleteFunc(s.roles, func(r *entity.UserRole) bool { return r.ID == roleID })
	s.grants = slices.DeleteFunc(s.grants, func(g grant) bool { return g.role == roleID })
	return nil
}

type userStore struct {
	users map[string]*entity.User
}

func (s userStore) UserByName(_ context.Context, name string) (*entity.User, error) {
	if u, ok := s.users[name]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (s userStore) Role(_ context.Context, id int64) (*entity.UserRole, error) {
	if id == 1 {
		return &entity.UserRole{ID: 1, Label: "admin"}, nil
	}
	return nil, errNotFound
}

func (s userStore) PermissionLabels(context.Context, int64) ([]string, error) {
	return []string{"create_key_question", "show_profile"}, nil
}
