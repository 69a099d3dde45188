package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixitek/services-api/internal/model"
)

type OptionFilter struct {
	CategoryID *int64
}

// OptionRepository stores the four service option variants, one table per
// kind, and resolves polymorphic references into them.
type OptionRepository interface {
	Create(ctx context.Context, opt model.ServiceOption) error
	Get(ctx context.Context, ref model.Ref) (model.ServiceOption, error)
	GetMany(ctx context.Context, refs []model.Ref) (map[model.Ref]model.ServiceOption, error)
	List(ctx context.Context, kind model.Kind, filter OptionFilter) ([]model.ServiceOption, error)
	Update(ctx context.Context, opt model.ServiceOption) error
	Delete(ctx context.Context, ref model.Ref) error
}

type optionTable struct {
	name    string
	columns []string
}

var baseOptionColumns = []string{
	"category_id", "title", "description", "image", "price",
	"quantity", "needs_moving_help", "moving_help_charge",
}

var optionTables = map[model.Kind]optionTable{
	model.KindTVMounting: {
		name:    "tv_mounting_options",
		columns: []string{"needs", "bracket", "bracket_price", "wall_type"},
	},
	model.KindFurnitureAssembly: {
		name:    "furniture_assembly_options",
		columns: []string{"location_id", "service_type_id", "assembly_type_id"},
	},
	model.KindInstallation: {
		name:    "installation_service_options",
		columns: []string{"installation_type_id", "location", "power_nearby"},
	},
	model.KindGazebo: {
		name:    "gazebo_service_options",
		columns: []string{"action", "gazebo_model_id", "size", "anchoring"},
	},
}

func tableFor(kind model.Kind) (optionTable, error) {
	t, ok := optionTables[kind]
	if !ok {
		return optionTable{}, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
	return t, nil
}

func (t optionTable) writeColumns() []string {
	cols := make([]string, 0, len(baseOptionColumns)+len(t.columns))
	cols = append(cols, baseOptionColumns...)
	return append(cols, t.columns...)
}

func (t optionTable) selectSQL() string {
	return fmt.Sprintf("SELECT id, %s, created_at, updated_at FROM %s",
		strings.Join(t.writeColumns(), ", "), t.name)
}

// scanTargets lists pointers in selectSQL column order.
func scanTargets(opt model.ServiceOption) []any {
	b := opt.Base()
	dest := []any{
		&b.ID, &b.CategoryID, &b.Title, &b.Description, &b.Image, &b.Price,
		&b.Quantity, &b.NeedsMovingHelp, &b.MovingHelpCharge,
	}
	switch o := opt.(type) {
	case *model.TVMountingOption:
		dest = append(dest, &o.Needs, &o.Bracket, &o.BracketPrice, &o.WallType)
	case *model.FurnitureAssemblyOption:
		dest = append(dest, &o.LocationID, &o.ServiceTypeID, &o.AssemblyTypeID)
	case *model.InstallationServiceOption:
		dest = append(dest, &o.InstallationTypeID, &o.Location, &o.PowerNearby)
	case *model.GazeboServiceOption:
		dest = append(dest, &o.Action, &o.GazeboModelID, &o.Size, &o.Anchoring)
	}
	return append(dest, &b.CreatedAt, &b.UpdatedAt)
}

// writeArgs lists values in writeColumns order.
func writeArgs(opt model.ServiceOption) []any {
	b := opt.Base()
	args := []any{
		b.CategoryID, b.Title, b.Description, b.Image, b.Price,
		b.Quantity, b.NeedsMovingHelp, b.MovingHelpCharge,
	}
	switch o := opt.(type) {
	case *model.TVMountingOption:
		args = append(args, o.Needs, o.Bracket, o.BracketPrice, o.WallType)
	case *model.FurnitureAssemblyOption:
		args = append(args, o.LocationID, o.ServiceTypeID, o.AssemblyTypeID)
	case *model.InstallationServiceOption:
		args = append(args, o.InstallationTypeID, o.Location, o.PowerNearby)
	case *model.GazeboServiceOption:
		args = append(args, o.Action, o.GazeboModelID, o.Size, o.Anchoring)
	}
	return args
}

type pgOptionRepo struct{ pool *pgxpool.Pool }

func NewOptionRepository(pool *pgxpool.Pool) OptionRepository {
	return &pgOptionRepo{pool: pool}
}

func (r *pgOptionRepo) Create(ctx context.Context, opt model.ServiceOption) error {
	t, err := tableFor(opt.Kind())
	if err != nil {
		return err
	}
	cols := t.writeColumns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s, created_at, updated_at)
		VALUES (%s, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		t.name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	b := opt.Base()
	err = r.pool.QueryRow(ctx, query, writeArgs(opt)...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create %s: %w", opt.Kind(), mapError(err))
	}
	return nil
}

func (r *pgOptionRepo) Get(ctx context.Context, ref model.Ref) (model.ServiceOption, error) {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return nil, err
	}
	opt, err := model.NewOption(ref.Kind)
	if err != nil {
		return nil, err
	}
	err = r.pool.QueryRow(ctx, t.selectSQL()+" WHERE id = $1", ref.ID).Scan(scanTargets(opt)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	return opt, nil
}

// GetMany runs one query per kind present in refs. Refs without a row are
// absent from the result.
func (r *pgOptionRepo) GetMany(ctx context.Context, refs []model.Ref) (map[model.Ref]model.ServiceOption, error) {
	ids := make(map[model.Kind][]int64)
	for _, ref := range refs {
		ids[ref.Kind] = append(ids[ref.Kind], ref.ID)
	}

	found := make(map[model.Ref]model.ServiceOption, len(refs))
	for kind, kindIDs := range ids {
		opts, err := r.query(ctx, kind, " WHERE id = ANY($1)", kindIDs)
		if err != nil {
			return nil, err
		}
		for _, opt := range opts {
			found[model.RefOf(opt)] = opt
		}
	}
	return found, nil
}

func (r *pgOptionRepo) List(ctx context.Context, kind model.Kind, filter OptionFilter) ([]model.ServiceOption, error) {
	return r.query(ctx, kind, " WHERE ($1::bigint IS NULL OR category_id = $1) ORDER BY id", filter.CategoryID)
}

func (r *pgOptionRepo) query(ctx context.Context, kind model.Kind, where string, args ...any) ([]model.ServiceOption, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, t.selectSQL()+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	var opts []model.ServiceOption
	for rows.Next() {
		opt, err := model.NewOption(kind)
		if err != nil {
			return nil, err
		}
		if err := rows.Scan(scanTargets(opt)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		opts = append(opts, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return opts, nil
}

func (r *pgOptionRepo) Update(ctx context.Context, opt model.ServiceOption) error {
	t, err := tableFor(opt.Kind())
	if err != nil {
		return err
	}
	cols := t.writeColumns()
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s, updated_at = NOW() WHERE id = $1 RETURNING created_at, updated_at`,
		t.name, strings.Join(sets, ", "))

	b := opt.Base()
	args := append([]any{b.ID}, writeArgs(opt)...)
	err = r.pool.QueryRow(ctx, query, args...).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update %s: %w", model.RefOf(opt), mapError(err))
	}
	return nil
}

func (r *pgOptionRepo) Delete(ctx context.Context, ref model.Ref) error {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.name), ref.ID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", ref, mapError(err))
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
