package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_unique_active_assignment",
			SQL: `SELECT shipment_id, COUNT(*) FROM labour_assignments
                  WHERE status NOT IN ('settled','cancelled')
                  GROUP BY shipment_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_expense_sum_derived",
			SQL: `SELECT id, total_expenses FROM labour_assignments
                  WHERE ABS(total_expenses - (station_expense + bility_expense + station_labour + cart_labour)) > 1e-6`,
		},
		{
			Name: "O3_settled_balance",
			SQL: `SELECT a.id, s.total_charges, a.total_expenses, a.collected_amount
                  FROM labour_assignments a JOIN shipments s ON s.id = a.shipment_id
                  WHERE a.status = 'settled'
                    AND ABS(s.total_charges + a.total_expenses - a.collected_amount) > 0.011`,
		},
		{
			Name: "O4_status_dates",
			SQL: `SELECT id, status FROM labour_assignments
                  WHERE (status IN ('delivered','collected','settled') AND delivered_date IS NULL)
                     OR (status = 'settled' AND settled_date IS NULL)
                     OR (status NOT IN ('settled') AND settled_date IS NOT NULL)`,
		},
		{
			Name: "O5_money_before_delivery",
			SQL: `SELECT id FROM labour_assignments
                  WHERE status = 'assigned' AND (collected_amount <> 0 OR total_expenses <> 0)`,
		},
		{
			Name: "O6_correction_trail",
			SQL: `SELECT c.id FROM assignment_corrections c
                  JOIN labour_assignments a ON a.id = c.assignment_id
                  WHERE a.status IN ('assigned','delivered')`,
		},
		{
			Name: "O7_outbox_drained",
			SQL: `SELECT id FROM outbox
                  WHERE status NOT IN ('processed','dead')
                    AND now() - created_at > interval '5 minutes'`,
		},
		{
			Name: "O8_event_per_settlement",
			SQL: `SELECT a.id FROM labour_assignments a
                  WHERE a.status = 'settled'
                    AND NOT EXISTS (SELECT 1 FROM assignment_events e
                                    WHERE e.assignment_id = a.id AND e.type = 'ASSIGNMENT_SETTLED')`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
