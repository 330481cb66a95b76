package exam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/examsmith/examsmith/internal/grading"
	"github.com/examsmith/examsmith/internal/rbac"
)

type recordingSink struct {
	events []struct{ typ, key, data string }
	err    error
}

func (r *recordingSink) Append(_ context.Context, typ, key, data string) error {
	r.events = append(r.events, struct{ typ, key, data string }{typ, key, data})
	return r.err
}

func newCloneFixture(t *testing.T) (Store, Exam) {
	t.Helper()
	s := NewInMemoryStore(grading.NewDefaultGrader())
	src := sampleExam("owner-1")
	src.Questions[2].Rubric = json.RawMessage(`{"criteria":[{"key":"depth","max_points":5}]}`)
	if err := s.PutExam(src); err != nil {
		t.Fatal(err)
	}
	return s, src
}

func TestCloneByOwner(t *testing.T) {
	s, src := newCloneFixture(t)
	sink := &recordingSink{}
	c := NewCloner(s, rbac.NewChecker(rbac.RolePermissions), sink)

	// Owners clone without the permission, whatever their role.
	dst, err := c.Clone(context.Background(), CloneRequest{
		SourceExamID: src.ID,
		ActorID:      "owner-1",
		ActorRole:    "student",
	})
	if err != nil {
		t.Fatal(err)
	}
	if dst.ID == src.ID {
		t.Error("clone must get a fresh exam id")
	}
	if dst.OwnerID != "owner-1" {
		t.Errorf("owner = %q", dst.OwnerID)
	}
	if dst.Title != "Copy of Unit 3 Quiz" {
		t.Errorf("title = %q", dst.Title)
	}
	if len(sink.events) != 1 || sink.events[0].typ != "ExamCloned" {
		t.Errorf("audit events: %+v", sink.events)
	}

	// The clone is persisted and readable.
	if _, err := s.GetExamAdmin(context.Background(), dst.ID); err != nil {
		t.Errorf("clone not stored: %v", err)
	}
}

func TestCloneContentCopiedVerbatim(t *testing.T) {
	s, src := newCloneFixture(t)
	c := NewCloner(s, rbac.NewChecker(rbac.RolePermissions), nil)

	dst, err := c.Clone(context.Background(), CloneRequest{
		SourceExamID: src.ID,
		ActorID:      "teacher-2",
		ActorRole:    "teacher",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(dst.Questions) != len(src.Questions) {
		t.Fatalf("question count %d vs %d", len(dst.Questions), len(src.Questions))
	}
	for i, q := range dst.Questions {
		sq := src.Questions[i]
		if q.ID == sq.ID {
			t.Errorf("question %d kept the source id", i)
		}
		if !bytes.Equal(q.Content, sq.Content) {
			t.Errorf("question %d content blob altered:\n%s\n%s", i, q.Content, sq.Content)
		}
		if !bytes.Equal(q.Rubric, sq.Rubric) {
			t.Errorf("question %d rubric altered", i)
		}
		for j, ch := range q.Choices {
			// Choice ids stay: answer keys reference them.
			if ch.ID != sq.Choices[j].ID {
				t.Errorf("choice id changed: %q vs %q", ch.ID, sq.Choices[j].ID)
			}
			if !bytes.Equal(ch.Content, sq.Choices[j].Content) {
				t.Errorf("choice %d content altered", j)
			}
		}
	}
}

func TestClonePermissionDenied(t *testing.T) {
	s, src := newCloneFixture(t)
	c := NewCloner(s, rbac.NewChecker(rbac.RolePermissions), nil)

	_, err := c.Clone(context.Background(), CloneRequest{
		SourceExamID: src.ID,
		ActorID:      "stu-9",
		ActorRole:    "student",
	})
	if !errors.Is(err, ErrCloneForbidden) {
		t.Fatalf("err = %v, want ErrCloneForbidden", err)
	}

	// Admin wildcard covers the clone permission.
	if _, err := c.Clone(context.Background(), CloneRequest{
		SourceExamID: src.ID,
		ActorID:      "root",
		ActorRole:    "admin",
	}); err != nil {
		t.Errorf("admin clone: %v", err)
	}
}

func TestCloneMissingSource(t *testing.T) {
	s, _ := newCloneFixture(t)
	c := NewCloner(s, rbac.NewChecker(rbac.RolePermissions), nil)

	if _, err := c.Clone(context.Background(), CloneRequest{SourceExamID: "nope", ActorRole: "admin"}); !errors.Is(err, ErrCloneNoSource) {
		t.Errorf("err = %v, want ErrCloneNoSource", err)
	}
	if _, err := c.Clone(context.Background(), CloneRequest{ActorRole: "admin"}); !errors.Is(err, ErrCloneNoSource) {
		t.Errorf("empty source id: err = %v", err)
	}
}

func TestCloneCustomTitleAndAuditFailure(t *testing.T) {
	s, src := newCloneFixture(t)
	sink := &recordingSink{err: errors.New("event log down")}
	c := NewCloner(s, rbac.NewChecker(rbac.RolePermissions), sink)

	dst, err := c.Clone(context.Background(), CloneRequest{
		SourceExamID: src.ID,
		Title:        "Period 2 Variant",
		ActorID:      "owner-1",
		ActorRole:    "teacher",
	})
	if err != nil {
		t.Fatalf("audit failure must not fail the clone: %v", err)
	}
	if dst.Title != "Period 2 Variant" {
		t.Errorf("title = %q", dst.Title)
	}
}
