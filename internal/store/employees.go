package store

import (
	"context"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

func (q *queries) InsertEmployee(ctx context.Context, e *domain.Employee) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		"INSERT INTO employees (first_name, last_name, position, salary) VALUES ($1, $2, $3, $4) RETURNING employee_id",
		e.FirstName, e.LastName, e.Position, e.Salary,
	).Scan(&id)
	if err != nil {
		return 0, storageErr("insert employee", err)
	}
	e.ID = id
	return id, nil
}

func (q *queries) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	var e domain.Employee
	err := q.db.QueryRow(ctx,
		"SELECT employee_id, first_name, last_name, position, salary FROM employees WHERE employee_id = $1", id,
	).Scan(&e.ID, &e.FirstName, &e.LastName, &e.Position, &e.Salary)
	if err != nil {
		return nil, rowErr(domain.EntityEmployee, id, err)
	}
	return &e, nil
}
