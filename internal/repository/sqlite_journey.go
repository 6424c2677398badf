package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
)

// SQLiteJourneyRepo implements JourneyRepo using a SQLite database. The
// journey row and its proposal rows are always written in one transaction.
type SQLiteJourneyRepo struct {
	db  *sql.DB
	uow db.UnitOfWork
	now func() time.Time
}

// NewSQLiteJourneyRepo creates a new SQLiteJourneyRepo. A nil uow uses a
// plain transaction on database.
func NewSQLiteJourneyRepo(database *sql.DB, uow db.UnitOfWork) *SQLiteJourneyRepo {
	if uow == nil {
		uow = db.NewSQLiteUnitOfWork(database)
	}
	return &SQLiteJourneyRepo{db: database, uow: uow, now: time.Now}
}

const journeyColumns = `id, owner_id, name, destination, origin, travelers, budget, style, interests, notes,
	preferred_duration, start_date, status, active_proposal_id, confirmed_itinerary, created_at, updated_at`

func (r *SQLiteJourneyRepo) Create(ctx context.Context, j *domain.Journey) error {
	interests, err := toJSON(nonNil(j.Interests))
	if err != nil {
		return err
	}
	confirmed, err := nullableJSON(j.ConfirmedItinerary)
	if err != nil {
		return err
	}
	now := r.now()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = now
	}

	err = r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		query := `INSERT INTO journeys (` + journeyColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query,
			j.ID,
			j.OwnerID,
			j.Name,
			j.Destination,
			j.Origin,
			j.Travelers,
			string(j.Budget),
			string(j.Style),
			interests,
			j.Notes,
			j.PreferredDuration,
			nullableTimeToString(j.StartDate, dateLayout),
			string(j.Status),
			j.ActiveProposalID,
			confirmed,
			formatTime(j.CreatedAt),
			formatTime(j.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting journey: %w", err)
		}
		return writeProposals(ctx, tx, j.ID, j.Proposals)
	})
	return conflict(err)
}

// conflict reports lock contention as a rate limit so autosave retries it.
func conflict(err error) error {
	if db.IsBusy(err) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return err
}

func (r *SQLiteJourneyRepo) GetByID(ctx context.Context, id string) (*domain.Journey, error) {
	query := `SELECT ` + journeyColumns + ` FROM journeys WHERE id = ?`
	j, err := scanJourney(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	if j.Proposals, err = loadProposals(ctx, r.db, j.ID); err != nil {
		return nil, err
	}
	return j, nil
}

func (r *SQLiteJourneyRepo) List(ctx context.Context, ownerID string) ([]*domain.Journey, error) {
	query := `SELECT ` + journeyColumns + ` FROM journeys`
	var args []any
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing journeys: %w", err)
	}
	var journeys []*domain.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating journeys: %w", err)
	}
	rows.Close()

	// Proposals are loaded after the cursor is closed so an in-memory
	// database with a single connection does not deadlock.
	for _, j := range journeys {
		if j.Proposals, err = loadProposals(ctx, r.db, j.ID); err != nil {
			return nil, err
		}
	}
	return journeys, nil
}

func (r *SQLiteJourneyRepo) Update(ctx context.Context, id string, patch JourneyPatch) (*domain.Journey, error) {
	confirmed, err := nullableJSON(patch.ConfirmedItinerary)
	if err != nil {
		return nil, err
	}

	err = r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		query := `UPDATE journeys SET
				active_proposal_id = ?,
				confirmed_itinerary = ?,
				status = ?,
				preferred_duration = ?,
				owner_id = CASE WHEN owner_id = '' THEN ? ELSE owner_id END,
				updated_at = ?
			WHERE id = ?`
		res, err := tx.ExecContext(ctx, query,
			patch.ActiveProposalID,
			confirmed,
			string(patch.Status),
			patch.PreferredDuration,
			patch.OwnerID,
			formatTime(r.now()),
			id,
		)
		if err != nil {
			return fmt.Errorf("updating journey: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM proposals WHERE journey_id = ?`, id); err != nil {
			return fmt.Errorf("clearing proposals: %w", err)
		}
		return writeProposals(ctx, tx, id, patch.Proposals)
	})
	if err != nil {
		return nil, conflict(err)
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteJourneyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM journeys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting journey: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func writeProposals(ctx context.Context, tx db.DBTX, journeyID string, proposals []domain.Proposal) error {
	query := `INSERT INTO proposals (journey_id, id, position, name, summary, days) VALUES (?, ?, ?, ?, ?, ?)`
	for i, p := range proposals {
		days, err := toJSON(nonNil(p.Days))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, journeyID, p.ID, i, p.Name, p.Summary, days); err != nil {
			return fmt.Errorf("inserting proposal %d: %w", i, err)
		}
	}
	return nil
}

func loadProposals(ctx context.Context, conn db.DBTX, journeyID string) ([]domain.Proposal, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT id, name, summary, days FROM proposals WHERE journey_id = ? ORDER BY position`, journeyID)
	if err != nil {
		return nil, fmt.Errorf("loading proposals: %w", err)
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		var p domain.Proposal
		var days string
		if err := rows.Scan(&p.ID, &p.Name, &p.Summary, &days); err != nil {
			return nil, fmt.Errorf("scanning proposal row: %w", err)
		}
		if err := fromJSON(days, &p.Days); err != nil {
			return nil, fmt.Errorf("proposal %s: %w", p.ID, err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating proposals: %w", err)
	}
	return proposals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJourney(row rowScanner) (*domain.Journey, error) {
	var j domain.Journey
	var budget, style, status, interests, createdAt, updatedAt string
	var startDate, confirmed sql.NullString

	err := row.Scan(
		&j.ID, &j.OwnerID, &j.Name, &j.Destination, &j.Origin, &j.Travelers,
		&budget, &style, &interests, &j.Notes,
		&j.PreferredDuration, &startDate, &status, &j.ActiveProposalID, &confirmed,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning journey: %w", err)
	}

	j.Budget = domain.BudgetTier(budget)
	j.Style = domain.TravelStyle(style)
	j.Status = domain.JourneyStatus(status)
	j.StartDate = parseNullableTime(startDate, dateLayout)

	if err := fromJSON(interests, &j.Interests); err != nil {
		return nil, err
	}
	if confirmed.Valid && confirmed.String != "" {
		var p domain.Proposal
		if err := fromJSON(confirmed.String, &p); err != nil {
			return nil, err
		}
		j.ConfirmedItinerary = &p
	}

	var parseErr error
	if j.CreatedAt, parseErr = parseTime(createdAt); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if j.UpdatedAt, parseErr = parseTime(updatedAt); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &j, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
