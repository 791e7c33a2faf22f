package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

const referralColumns = `id, subject_type, subject_id, referrer_id, display_name, kind, referral_date, external, status, created_at, updated_at`

// Most recent first. Equal dates fall back to insertion order, then id.
const referralOrder = `ORDER BY referral_date DESC, created_at DESC, id DESC`

// CreateReferral stores a referral as given. It performs no business validation.
func (s *SQLiteStore) CreateReferral(ctx context.Context, r domain.Referral) (domain.Referral, error) {
	return s.createReferral(ctx, s.db, r, false)
}

// ImportReferrals inserts a batch without duplicating by id.
func (s *SQLiteStore) ImportReferrals(ctx context.Context, items []domain.Referral) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	n := 0
	for _, r := range items {
		res, err := s.createReferral(ctx, tx, r, true)
		if err != nil {
			return 0, err
		}
		if res.ID != "" {
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) createReferral(ctx context.Context, db execer, r domain.Referral, ignoreExisting bool) (domain.Referral, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Kind == "" {
		r.Kind = domain.KindEmployee
	}
	if r.Status == "" {
		r.Status = domain.StatusPending
	}
	now := s.now().UTC().Truncate(time.Second)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.Date = r.Date.UTC().Truncate(time.Second)

	verb := "INSERT"
	if ignoreExisting {
		verb = "INSERT OR IGNORE"
	}
	res, err := db.ExecContext(ctx, verb+` INTO referrals (`+referralColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Subject.Type), r.Subject.ID, r.ReferrerID, r.DisplayName, string(r.Kind),
		formatTime(r.Date), r.External, string(r.Status), formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Referral{}, &domain.ConflictError{Resource: "referral", Key: r.ID}
		}
		return domain.Referral{}, fmt.Errorf("insert referral: %w", err)
	}
	if ignoreExisting {
		if aff, _ := res.RowsAffected(); aff == 0 {
			return domain.Referral{}, nil
		}
	}
	return r, nil
}

func (s *SQLiteStore) GetReferral(ctx context.Context, id string) (domain.Referral, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+referralColumns+` FROM referrals WHERE id = ?`, id)
	if err != nil {
		return domain.Referral{}, fmt.Errorf("get referral: %w", err)
	}
	out, err := scanReferrals(rows)
	if err != nil {
		return domain.Referral{}, err
	}
	if len(out) == 0 {
		return domain.Referral{}, &domain.NotFoundError{Resource: "referral", ID: id}
	}
	return out[0], nil
}

func (s *SQLiteStore) ListBySubject(ctx context.Context, subject domain.Subject) ([]domain.Referral, error) {
	return listBySubject(ctx, s.db, subject)
}

func listBySubject(ctx context.Context, db execer, subject domain.Subject) ([]domain.Referral, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+referralColumns+` FROM referrals
WHERE subject_type = ? AND subject_id = ?
`+referralOrder, string(subject.Type), subject.ID)
	if err != nil {
		return nil, fmt.Errorf("list referrals for %s: %w", subject, err)
	}
	return scanReferrals(rows)
}

// ListBySubjects returns the referrals of every given subject, grouped by subject
// and most recent first within each group.
func (s *SQLiteStore) ListBySubjects(ctx context.Context, subjects []domain.Subject) ([]domain.Referral, error) {
	if len(subjects) == 0 {
		return nil, nil
	}
	where := make([]string, 0, len(subjects))
	args := make([]any, 0, 2*len(subjects))
	for _, sub := range subjects {
		where = append(where, "(subject_type = ? AND subject_id = ?)")
		args = append(args, string(sub.Type), sub.ID)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+referralColumns+` FROM referrals
WHERE `+strings.Join(where, " OR ")+`
ORDER BY subject_type, subject_id, referral_date DESC, created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list referrals for subjects: %w", err)
	}
	return scanReferrals(rows)
}

func (s *SQLiteStore) ListByReferrer(ctx context.Context, referrerID string) ([]domain.Referral, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+referralColumns+` FROM referrals
WHERE referrer_id = ?
`+referralOrder, referrerID)
	if err != nil {
		return nil, fmt.Errorf("list referrals by referrer: %w", err)
	}
	return scanReferrals(rows)
}

func (s *SQLiteStore) SetExternal(ctx context.Context, id string, external bool) error {
	return setExternal(ctx, s.db, s.stamp(), id, external)
}

func setExternal(ctx context.Context, db execer, stamp, id string, external bool) error {
	res, err := db.ExecContext(ctx, `UPDATE referrals SET external = ?, updated_at = ? WHERE id = ?`, external, stamp, id)
	if err != nil {
		return fmt.Errorf("set external on referral %s: %w", id, err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return &domain.NotFoundError{Resource: "referral", ID: id}
	}
	return nil
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status domain.ReferralStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE referrals SET status = ?, updated_at = ? WHERE id = ?`, string(status), s.stamp(), id)
	if err != nil {
		return fmt.Errorf("set status on referral %s: %w", id, err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return &domain.NotFoundError{Resource: "referral", ID: id}
	}
	return nil
}

func (s *SQLiteStore) DeleteReferral(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM referrals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete referral %s: %w", id, err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return &domain.NotFoundError{Resource: "referral", ID: id}
	}
	return nil
}

type subjectLedger struct {
	tx      *sql.Tx
	stamp   string
	subject domain.Subject
}

func (l *subjectLedger) ListBySubject(ctx context.Context) ([]domain.Referral, error) {
	return listBySubject(ctx, l.tx, l.subject)
}

func (l *subjectLedger) SetExternal(ctx context.Context, id string, external bool) error {
	return setExternal(ctx, l.tx, l.stamp, id, external)
}

// InSubjectTx runs fn inside one write transaction. Reads and writes made through
// the ledger passed to fn commit together, or not at all when fn returns an error.
func (s *SQLiteStore) InSubjectTx(ctx context.Context, subject domain.Subject, fn func(domain.SubjectLedger) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", subject, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&subjectLedger{tx: tx, stamp: s.stamp(), subject: subject}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", subject, err)
	}
	return nil
}

func scanReferrals(rows *sql.Rows) ([]domain.Referral, error) {
	defer rows.Close()

	var out []domain.Referral
	for rows.Next() {
		var (
			r                          domain.Referral
			subjectType, kind, status  string
			date, createdAt, updatedAt string
		)
		if err := rows.Scan(
			&r.ID, &subjectType, &r.Subject.ID, &r.ReferrerID, &r.DisplayName, &kind,
			&date, &r.External, &status, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan referral: %w", err)
		}
		r.Subject.Type = domain.SubjectType(subjectType)
		r.Kind = domain.ReferralKind(kind)
		r.Status = domain.ReferralStatus(status)
		r.Date = parseTime(date)
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
