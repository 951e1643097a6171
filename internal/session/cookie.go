package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/abhisek/quizforge/internal/quiz"
)

// CookieName is the browser cookie holding session records.
const CookieName = "quizforge_session"

// QuestionLookup returns a quiz's questions in order.
type QuestionLookup func(ctx context.Context, quizID string) ([]quiz.Question, error)

// CookieStore keeps the record of the current quiz in a signed browser
// cookie. It is bound to one request and its response writer, so build
// one per request.
//
// With a QuestionLookup, answers are stored as one letter per question
// ('a' is the first option, '-' unanswered), which keeps a full quiz well
// under the browser cookie limit.
type CookieStore struct {
	backend   sessions.Store
	questions QuestionLookup
	w         http.ResponseWriter
	r         *http.Request
}

// NewCookieStore binds backend to a request.
func NewCookieStore(backend sessions.Store, w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{backend: backend, w: w, r: r}
}

// WithQuestions enables the compact answer encoding.
func (s *CookieStore) WithQuestions(lookup QuestionLookup) *CookieStore {
	s.questions = lookup
	return s
}

// NewCookieBackend creates the signing cookie store for the given keys.
func NewCookieBackend(keyPairs ...[]byte) *sessions.CookieStore {
	cs := sessions.NewCookieStore(keyPairs...)
	cs.Options.HttpOnly = true
	cs.Options.SameSite = http.SameSiteLaxMode
	cs.Options.Path = "/"
	return cs
}

// cookieRecord is the cookie form of a Record. Answers only holds
// selections that could not be placed in Picks.
type cookieRecord struct {
	QuizID  string            `json:"q"`
	Start   int64             `json:"s"`
	Current int               `json:"c"`
	Picks   string            `json:"p,omitempty"`
	Answers map[string]string `json:"a,omitempty"`
}

const unanswered = '-'

// session ignores decode errors from a tampered or stale cookie; the
// backend still returns a fresh session in that case.
func (s *CookieStore) session() (*sessions.Session, error) {
	sess, err := s.backend.Get(s.r, CookieName)
	if sess == nil {
		return nil, err
	}
	return sess, nil
}

func (s *CookieStore) Get(ctx context.Context, key string) (*Record, error) {
	sess, err := s.session()
	if err != nil {
		return nil, err
	}
	raw, ok := sess.Values[key].(string)
	if !ok {
		return nil, nil
	}
	return s.decode(ctx, raw)
}

// Set replaces any record of another quiz held in the cookie.
func (s *CookieStore) Set(ctx context.Context, key string, r *Record) error {
	sess, err := s.session()
	if err != nil {
		return err
	}
	raw, err := s.encode(ctx, r)
	if err != nil {
		return err
	}
	for k := range sess.Values {
		if ks, ok := k.(string); ok && ks != key && strings.HasPrefix(ks, KeyPrefix) {
			delete(sess.Values, k)
		}
	}
	sess.Values[key] = raw
	return sess.Save(s.r, s.w)
}

func (s *CookieStore) Remove(_ context.Context, key string) error {
	sess, err := s.session()
	if err != nil {
		return err
	}
	delete(sess.Values, key)
	return sess.Save(s.r, s.w)
}

func (s *CookieStore) encode(ctx context.Context, r *Record) (string, error) {
	cr := cookieRecord{QuizID: r.QuizID, Start: r.StartTime, Current: r.CurrentQuestionIndex}

	var qs []quiz.Question
	if s.questions != nil && len(r.Answers) > 0 {
		// An unknown quiz keeps its answers verbatim.
		qs, _ = s.questions(ctx, r.QuizID)
	}
	placed := make(map[string]bool, len(r.Answers))
	picks := []byte(strings.Repeat(string(unanswered), len(qs)))
	for i, q := range qs {
		sel, ok := r.Answers[q.ID]
		if !ok {
			continue
		}
		if opt := optionIndex(q, sel); opt >= 0 {
			picks[i] = byte('a' + opt)
			placed[q.ID] = true
		}
	}
	if len(placed) > 0 {
		cr.Picks = string(picks)
	}
	for id, sel := range r.Answers {
		if placed[id] {
			continue
		}
		if cr.Answers == nil {
			cr.Answers = map[string]string{}
		}
		cr.Answers[id] = sel
	}

	raw, err := json.Marshal(cr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *CookieStore) decode(ctx context.Context, raw string) (*Record, error) {
	var cr cookieRecord
	if err := json.Unmarshal([]byte(raw), &cr); err != nil {
		return nil, err
	}
	if cr.QuizID == "" {
		// Written before the compact form.
		return decodeRecord([]byte(raw))
	}

	rec := &Record{
		QuizID:               cr.QuizID,
		StartTime:            cr.Start,
		CurrentQuestionIndex: cr.Current,
		Answers:              map[string]string{},
	}
	for id, sel := range cr.Answers {
		rec.Answers[id] = sel
	}
	if cr.Picks == "" {
		return rec, nil
	}

	if s.questions == nil {
		return nil, fmt.Errorf("session cookie for quiz %s needs its questions to decode", cr.QuizID)
	}
	qs, err := s.questions(ctx, cr.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load questions for session cookie: %w", err)
	}
	if len(qs) != len(cr.Picks) {
		return nil, fmt.Errorf("session cookie for quiz %s has %d answers, quiz has %d questions", cr.QuizID, len(cr.Picks), len(qs))
	}
	for i, c := range []byte(cr.Picks) {
		if c == unanswered {
			continue
		}
		opt := int(c) - 'a'
		if opt < 0 || opt >= len(qs[i].Options) {
			return nil, fmt.Errorf("session cookie for quiz %s has invalid answer %q", cr.QuizID, c)
		}
		rec.Answers[qs[i].ID] = qs[i].Options[opt].Text
	}
	return rec, nil
}

func optionIndex(q quiz.Question, text string) int {
	for i, o := range q.Options {
		if o.Text == text {
			return i
		}
	}
	return -1
}
