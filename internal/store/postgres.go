package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"run-planner/internal/planner/model"
)

// db is satisfied by *pgxpool.Pool and pgx.Tx, so integration tests can run
// inside a transaction that is rolled back afterwards.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres serves address books, locations and service stops from the
// tables created by the migrations package.
type Postgres struct {
	db db
}

func NewPostgres(db db) *Postgres {
	return &Postgres{db: db}
}

const customerAddressCols = `id, customer_id, company_name, addressee, addr1, addr2, city, state, zip, lat, lng`

func (p *Postgres) ListCustomerAddresses(ctx context.Context, customerID string) ([]model.CustomerAddress, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+customerAddressCols+` FROM customer_addresses WHERE customer_id = $1 ORDER BY ord`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("query customer addresses: %w", err)
	}
	defer rows.Close()

	var out []model.CustomerAddress
	for rows.Next() {
		var a model.CustomerAddress
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.CompanyName, &a.Address.Name,
			&a.Address.Addr1, &a.Address.Addr2, &a.Address.City, &a.Address.State, &a.Address.Zip,
			&a.Address.Lat, &a.Address.Lng); err != nil {
			return nil, fmt.Errorf("scan customer address: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertCustomerAddress inserts or replaces one address-book entry.
func (p *Postgres) UpsertCustomerAddress(ctx context.Context, a model.CustomerAddress) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO customer_addresses (`+customerAddressCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id, company_name = EXCLUDED.company_name,
			addressee = EXCLUDED.addressee, addr1 = EXCLUDED.addr1, addr2 = EXCLUDED.addr2,
			city = EXCLUDED.city, state = EXCLUDED.state, zip = EXCLUDED.zip,
			lat = EXCLUDED.lat, lng = EXCLUDED.lng`,
		a.ID, a.CustomerID, a.CompanyName, a.Address.Name, a.Address.Addr1, a.Address.Addr2,
		a.Address.City, a.Address.State, a.Address.Zip, a.Address.Lat, a.Address.Lng)
	if err != nil {
		return fmt.Errorf("upsert customer address %s: %w", a.ID, err)
	}
	return nil
}

const locationCols = `id, name, addr1, addr2, suburb, state, postcode, lat, lng, inactive`

func (p *Postgres) SearchLocations(ctx context.Context, f model.LocationFilter) ([]model.Location, error) {
	where, args := locationWhere(f)
	q := `SELECT ` + locationCols + ` FROM locations`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY ord`
	return p.queryLocations(ctx, q, args...)
}

func (p *Postgres) ListLocations(ctx context.Context) ([]model.Location, error) {
	return p.queryLocations(ctx, `SELECT `+locationCols+` FROM locations ORDER BY ord`)
}

func (p *Postgres) queryLocations(ctx context.Context, q string, args ...any) ([]model.Location, error) {
	rows, err := p.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address.Addr1, &l.Address.Addr2, &l.Address.City,
			&l.Address.State, &l.Address.Zip, &l.Address.Lat, &l.Address.Lng, &l.Inactive); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertLocation inserts or replaces one registry location.
func (p *Postgres) UpsertLocation(ctx context.Context, l model.Location) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO locations (`+locationCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, addr1 = EXCLUDED.addr1, addr2 = EXCLUDED.addr2,
			suburb = EXCLUDED.suburb, state = EXCLUDED.state, postcode = EXCLUDED.postcode,
			lat = EXCLUDED.lat, lng = EXCLUDED.lng, inactive = EXCLUDED.inactive`,
		l.ID, l.Name, l.Address.Addr1, l.Address.Addr2, l.Address.City, l.Address.State,
		l.Address.Zip, l.Address.Lat, l.Address.Lng, l.Inactive)
	if err != nil {
		return fmt.Errorf("upsert location %s: %w", l.ID, err)
	}
	return nil
}

// locationWhere renders a filter as a SQL condition with positional args.
// Matching mirrors model.LocationFilter.Match.
func locationWhere(f model.LocationFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	anyLike := func(cols []string, tokens []string) string {
		var ors []string
		for _, t := range tokens {
			p := arg("%" + escapeLike(t) + "%")
			for _, c := range cols {
				ors = append(ors, c+" ILIKE "+p)
			}
		}
		return "(" + strings.Join(ors, " OR ") + ")"
	}

	if f.NameEquals != "" {
		conds = append(conds, "lower(name) = lower("+arg(f.NameEquals)+")")
	}
	if f.ActiveOnly {
		conds = append(conds, "NOT inactive")
	}
	if f.Postcode != "" {
		conds = append(conds, "trim(postcode) = "+arg(f.Postcode))
	}
	if len(f.AddressContainsAny) > 0 {
		conds = append(conds, anyLike([]string{"addr1", "addr2"}, f.AddressContainsAny))
	}
	if len(f.NameContainsAny) > 0 {
		conds = append(conds, anyLike([]string{"name"}, f.NameContainsAny))
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

const stopCols = `id, customer_id, service_id, plan_id, franchisee_id, operator_id, stop_name,
	frequency, stop_times, address_type, address_book_id, location_id, manual_address,
	notes, sequence, transfer_type, transfer_stop_id, relief_operator_id`

// SaveStops writes all stops in one transaction.
func (p *Postgres) SaveStops(ctx context.Context, stops []model.ServiceStop) ([]model.ServiceStop, error) {
	out := make([]model.ServiceStop, len(stops))
	err := pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		for i, s := range stops {
			args, err := stopArgs(&s)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO service_stops (`+stopCols+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
				ON CONFLICT (id) DO UPDATE SET
					customer_id = EXCLUDED.customer_id, service_id = EXCLUDED.service_id,
					plan_id = EXCLUDED.plan_id, franchisee_id = EXCLUDED.franchisee_id,
					operator_id = EXCLUDED.operator_id, stop_name = EXCLUDED.stop_name,
					frequency = EXCLUDED.frequency, stop_times = EXCLUDED.stop_times,
					address_type = EXCLUDED.address_type, address_book_id = EXCLUDED.address_book_id,
					location_id = EXCLUDED.location_id, manual_address = EXCLUDED.manual_address,
					notes = EXCLUDED.notes, sequence = EXCLUDED.sequence,
					transfer_type = EXCLUDED.transfer_type, transfer_stop_id = EXCLUDED.transfer_stop_id,
					relief_operator_id = EXCLUDED.relief_operator_id, updated_at = now()`,
				args...)
			if err != nil {
				return fmt.Errorf("save stop %s: %w", s.ID, err)
			}
			out[i] = s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// stopArgs assigns an ID when missing and flattens the stop into column order.
func stopArgs(s *model.ServiceStop) ([]any, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	var bookID, locationID *string
	var manual []byte
	switch ref := s.Address.(type) {
	case model.BookRef:
		bookID = &ref.ID
	case model.LocationRef:
		locationID = &ref.ID
	case model.ManualRef:
		b, err := json.Marshal(ref.Address)
		if err != nil {
			return nil, fmt.Errorf("encode manual address: %w", err)
		}
		manual = b
	default:
		return nil, &model.ValidationError{Field: "address", Msg: "stop has no address"}
	}
	return []any{
		s.ID, s.CustomerID, s.ServiceID, s.PlanID, s.FranchiseeID, s.OperatorID, s.StopName,
		s.Frequency.String(), s.StopTimes.String(), int16(s.Address.Kind()), bookID, locationID, manual,
		s.Notes, s.Sequence, s.TransferType, s.TransferStopID, s.ReliefOperatorID,
	}, nil
}

func (p *Postgres) ListStopsByPlan(ctx context.Context, planID string) ([]model.ServiceStop, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+stopCols+` FROM service_stops WHERE plan_id = $1 ORDER BY customer_id, sequence, created_at`,
		planID)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	defer rows.Close()

	var out []model.ServiceStop
	for rows.Next() {
		var (
			s                  model.ServiceStop
			freq, times        string
			kind               int16
			bookID, locationID *string
			manual             []byte
		)
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.ServiceID, &s.PlanID, &s.FranchiseeID,
			&s.OperatorID, &s.StopName, &freq, &times, &kind, &bookID, &locationID, &manual,
			&s.Notes, &s.Sequence, &s.TransferType, &s.TransferStopID, &s.ReliefOperatorID); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		if s.Frequency, err = model.ParseFrequency(freq); err != nil {
			return nil, fmt.Errorf("stop %s: %w", s.ID, err)
		}
		if s.StopTimes, err = model.ParseStopTimes(times); err != nil {
			return nil, fmt.Errorf("stop %s: %w", s.ID, err)
		}
		var addr *model.Address
		if manual != nil {
			addr = &model.Address{}
			if err := json.Unmarshal(manual, addr); err != nil {
				return nil, fmt.Errorf("stop %s manual address: %w", s.ID, err)
			}
		}
		if s.Address, err = model.NewAddressRef(model.AddressKind(kind), deref(bookID), deref(locationID), addr); err != nil {
			return nil, fmt.Errorf("stop %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
