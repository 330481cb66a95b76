package exam

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/examsmith/examsmith/internal/rbac"
)

// PermExamClone guards duplicating exams the actor does not own.
const PermExamClone = "exam:clone"

var (
	ErrCloneForbidden = errors.New("not allowed to clone this exam")
	ErrCloneNoSource  = errors.New("source exam not found")
)

type CloneRequest struct {
	SourceExamID string `json:"source_exam_id"`
	Title        string `json:"title,omitempty"`
	ActorID      string `json:"-"`
	ActorRole    string `json:"-"`
}

// EventSink receives audit events for clone operations. Satisfied by
// syncx.EventRepo; nil disables auditing.
type EventSink interface {
	Append(ctx context.Context, typ, key, dataJSON string) error
}

// Cloner duplicates exams into new variant records.
type Cloner struct {
	store   Store
	checker *rbac.Checker
	events  EventSink
}

func NewCloner(store Store, checker *rbac.Checker, events EventSink) *Cloner {
	if checker == nil {
		checker = rbac.NewChecker(nil)
	}
	return &Cloner{store: store, checker: checker, events: events}
}

// Clone duplicates an exam under the acting user. The exam and question
// rows get fresh ids; each question's content blob is copied verbatim,
// never reparsed. At this layer content is opaque JSON, and cloning
// must not reinterpret (or accidentally "repair") what the owner stored.
func (c *Cloner) Clone(ctx context.Context, req CloneRequest) (Exam, error) {
	if req.SourceExamID == "" {
		return Exam{}, ErrCloneNoSource
	}
	src, err := c.store.GetExamAdmin(ctx, req.SourceExamID)
	if err != nil {
		return Exam{}, ErrCloneNoSource
	}
	if !c.canClone(src, req) {
		return Exam{}, ErrCloneForbidden
	}

	dst := Exam{
		ID:           uuid.NewString(),
		OwnerID:      req.ActorID,
		Title:        cloneTitle(src.Title, req.Title),
		TimeLimitSec: src.TimeLimitSec,
		Questions:    cloneQuestions(src.Questions),
		CreatedAt:    time.Now().Unix(),
	}
	if err := c.store.PutExam(dst); err != nil {
		return Exam{}, err
	}
	c.audit(ctx, src, dst, req)
	return dst, nil
}

// canClone: owners always may; anyone else needs the clone permission.
func (c *Cloner) canClone(src Exam, req CloneRequest) bool {
	if req.ActorID != "" && src.OwnerID == req.ActorID {
		return true
	}
	return c.checker.Has(req.ActorRole, PermExamClone)
}

func cloneQuestions(src []Question) []Question {
	out := make([]Question, 0, len(src))
	for _, q := range src {
		nq := Question{
			ID:        uuid.NewString(),
			Type:      q.Type,
			Content:   cloneBlob(q.Content),
			AnswerKey: append([]string(nil), q.AnswerKey...),
			Points:    q.Points,
			Rubric:    cloneBlob(q.Rubric),
		}
		for _, ch := range q.Choices {
			nq.Choices = append(nq.Choices, Choice{
				ID:      ch.ID, // choice ids are referenced by answer keys; keep them
				Content: cloneBlob(ch.Content),
			})
		}
		out = append(out, nq)
	}
	return out
}

func cloneBlob(b json.RawMessage) json.RawMessage {
	if b == nil {
		return nil
	}
	return append(json.RawMessage(nil), b...)
}

func cloneTitle(srcTitle, requested string) string {
	if requested != "" {
		return requested
	}
	return "Copy of " + srcTitle
}

func (c *Cloner) audit(ctx context.Context, src, dst Exam, req CloneRequest) {
	if c.events == nil {
		return
	}
	data, _ := json.Marshal(map[string]string{
		"source_exam_id": src.ID,
		"new_exam_id":    dst.ID,
		"actor_id":       req.ActorID,
	})
	// audit failure must not fail the clone
	_ = c.events.Append(ctx, "ExamCloned", dst.ID, string(data))
}
