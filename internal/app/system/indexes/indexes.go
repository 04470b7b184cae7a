// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureEmployees(ctx, db); err != nil {
		problems = append(problems, "employees: "+err.Error())
	}
	if err := ensurePayroll(ctx, db); err != nil {
		problems = append(problems, "payroll_entries: "+err.Error())
	}
	if err := ensureExpenses(ctx, db); err != nil {
		problems = append(problems, "expenses: "+err.Error())
	}
	if err := ensureClients(ctx, db); err != nil {
		problems = append(problems, "clients: "+err.Error())
	}
	if err := ensureInvoices(ctx, db); err != nil {
		problems = append(problems, "invoices: "+err.Error())
	}
	if err := ensurePages(ctx, db); err != nil {
		problems = append(problems, "pages: "+err.Error())
	}
	if err := ensureCareers(ctx, db); err != nil {
		problems = append(problems, "careers: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()

		// Load existing indexes keyed by their key signature.
		existing := map[string]existingIndex{}
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
			cur.Close(ctx)
		}

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				// Same keys, same options: nothing to do.
				continue
			}

			// Options mismatch (e.g. upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// No existing index with the same keys: create it.
		if created, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
		} else {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("created_name", created),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Login lookup; email must be unique across all accounts.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Account lists: name prefix search + stable sort
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_fullnameci__id"),
		},
	})
}

func ensureEmployees(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("employees")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_employees_email"),
		},
		// Roster pages: filter by status + name prefix + stable tiebreak
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "full_name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_employees_status_fullnameci__id"),
		},
		{
			Keys:    bson.D{{Key: "department", Value: 1}, {Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_employees_dept_fullnameci"),
		},
	})
}

func ensurePayroll(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("payroll_entries")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One entry per employee per pay period.
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "period", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_payroll_employee_period"),
		},
		// Period views (the common read path)
		{
			Keys:    bson.D{{Key: "period", Value: 1}, {Key: "employee_id", Value: 1}},
			Options: options.Index().SetName("idx_payroll_period_employee"),
		},
	})
}

func ensureExpenses(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("expenses")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Newest-first listing and month-range aggregation
		{
			Keys:    bson.D{{Key: "incurred_at", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_expenses_incurredat__id"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "incurred_at", Value: -1}},
			Options: options.Index().SetName("idx_expenses_category_incurredat"),
		},
	})
}

func ensureClients(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("clients")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// No duplicate client names (case/diacritics folded via name_ci)
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_clients_nameci"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_clients_nameci__id"),
		},
	})
}

func ensureInvoices(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("invoices")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Sequential numbering must never collide.
		{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_invoices_number"),
		},
		{
			Keys:    bson.D{{Key: "external_ref", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_invoices_externalref"),
		},
		{
			Keys:    bson.D{{Key: "client_id", Value: 1}, {Key: "number", Value: -1}},
			Options: options.Index().SetName("idx_invoices_client_number"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "number", Value: -1}},
			Options: options.Index().SetName("idx_invoices_status_number"),
		},
	})
}

func ensurePages(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("pages")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_pages_slug"),
		},
		{
			Keys:    bson.D{{Key: "published", Value: 1}, {Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_pages_published_slug"),
		},
	})
}

func ensureCareers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("careers")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "open", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_careers_open_createdat"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("projects")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_projects_status_nameci__id"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_projects_owner_status"),
		},
	})
}
