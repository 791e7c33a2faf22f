// Package referral keeps the internal/external flag of every referral consistent
// with the 30-day recency rule.
//
// For one subject, the most recent referral is always internal. Every other
// referral is external when it is at least RecencyWindowDays older than that
// anchor, internal otherwise. Flags move in both directions: a newer hand-off can
// pull an external referral back inside the window.
package referral

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

const RecencyWindowDays = 30

// Store is the persistence the classifier needs. InSubjectTx must run fn as one
// atomic unit and serialise concurrent calls for the same subject.
type Store interface {
	CreateReferral(ctx context.Context, r domain.Referral) (domain.Referral, error)
	InSubjectTx(ctx context.Context, subject domain.Subject, fn func(domain.SubjectLedger) error) error
}

// Changes lists the referrals whose flag flipped during one classification.
type Changes struct {
	Subject    domain.Subject `json:"subject"`
	ToExternal []string       `json:"to_external"`
	ToInternal []string       `json:"to_internal"`
}

func (c Changes) Empty() bool { return len(c.ToExternal) == 0 && len(c.ToInternal) == 0 }

type Classifier struct {
	store  Store
	logger *slog.Logger
}

func NewClassifier(store Store, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{store: store, logger: logger}
}

// Classify reclassifies every referral of subject. Running it again without new
// referrals changes nothing.
func (c *Classifier) Classify(ctx context.Context, subject domain.Subject) (Changes, error) {
	changes := Changes{Subject: subject}

	err := c.store.InSubjectTx(ctx, subject, func(l domain.SubjectLedger) error {
		changes.ToExternal, changes.ToInternal = nil, nil

		items, err := l.ListBySubject(ctx)
		if err != nil {
			return err
		}
		anchor := mostRecent(items)
		for _, r := range items {
			want := IsExternal(r.Date, anchor)
			if want == r.External {
				continue
			}
			if err := l.SetExternal(ctx, r.ID, want); err != nil {
				return err
			}
			if want {
				changes.ToExternal = append(changes.ToExternal, r.ID)
			} else {
				changes.ToInternal = append(changes.ToInternal, r.ID)
			}
		}
		return nil
	})
	if err != nil {
		return Changes{Subject: subject}, &domain.ClassificationError{Subject: subject, Err: err}
	}

	if !changes.Empty() {
		c.logger.Info("referrals reclassified",
			"subject", subject.String(),
			"to_external", changes.ToExternal,
			"to_internal", changes.ToInternal,
		)
	}
	return changes, nil
}

// ClassifyAll classifies each subject independently. A failing subject is logged
// and skipped; its error is returned alongside the others' results.
func (c *Classifier) ClassifyAll(ctx context.Context, subjects []domain.Subject) ([]Changes, []error) {
	var (
		out  []Changes
		errs []error
	)
	for _, s := range subjects {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ch, err := c.Classify(ctx, s)
		if err != nil {
			c.logger.Warn("classification skipped", "subject", s.String(), "error", err)
			errs = append(errs, err)
			continue
		}
		out = append(out, ch)
	}
	return out, errs
}

// Record validates and stores a referral hand-off, then reclassifies its subject.
func (c *Classifier) Record(ctx context.Context, r domain.Referral) (domain.Referral, Changes, error) {
	if err := validate(&r); err != nil {
		return domain.Referral{}, Changes{}, err
	}
	r.External = false

	created, err := c.store.CreateReferral(ctx, r)
	if err != nil {
		return domain.Referral{}, Changes{}, err
	}
	changes, err := c.Classify(ctx, created.Subject)
	if err != nil {
		c.logger.Warn("referral stored but not classified", "referral_id", created.ID, "error", err)
	}
	return created, changes, nil
}

func validate(r *domain.Referral) error {
	r.Subject.ID = strings.TrimSpace(r.Subject.ID)
	if r.Subject.ID == "" {
		return &domain.ValidationError{Field: "subject_id", Message: "is required"}
	}
	if !r.Subject.Type.Valid() {
		return &domain.ValidationError{Field: "subject_type", Message: "must be property or lead"}
	}
	if r.Date.IsZero() {
		return &domain.ValidationError{Field: "date", Message: "is required"}
	}
	if r.Kind == "" {
		r.Kind = domain.KindEmployee
	}
	switch r.Kind {
	case domain.KindEmployee:
		if strings.TrimSpace(r.ReferrerID) == "" {
			return &domain.ValidationError{Field: "referrer_id", Message: "is required for employee referrals"}
		}
	case domain.KindCustom:
		if strings.TrimSpace(r.DisplayName) == "" {
			return &domain.ValidationError{Field: "display_name", Message: "is required for custom referrals"}
		}
	default:
		return &domain.ValidationError{Field: "kind", Message: "must be employee or custom"}
	}
	if r.Status == "" {
		r.Status = domain.StatusPending
	}
	if !r.Status.Valid() {
		return &domain.ValidationError{Field: "status", Message: "must be pending, confirmed or rejected"}
	}
	return nil
}

// IsExternal applies the recency rule to one referral date against the anchor
// (the most recent referral date of the same subject).
func IsExternal(date, anchor time.Time) bool {
	return DaysBetween(date, anchor) >= RecencyWindowDays
}

// DaysBetween returns the whole days elapsed from earlier to later.
func DaysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}

func mostRecent(items []domain.Referral) time.Time {
	var anchor time.Time
	for _, r := range items {
		if r.Date.After(anchor) {
			anchor = r.Date
		}
	}
	return anchor
}
