package service

import (
	"context"
	"strings"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

func (b *Bank) AddEmployee(ctx context.Context, e *domain.Employee) (id int64, err error) {
	defer timer("add_employee").ObserveDuration()
	defer func() {
		b.report(ctx, "add_employee", err, "employee_id", id, "first_name", e.FirstName, "last_name", e.LastName)
	}()

	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Position = strings.TrimSpace(e.Position)
	if err := b.check(e); err != nil {
		return 0, err
	}
	if err := nonNegativeMoney("salary", e.Salary); err != nil {
		return 0, err
	}
	return b.repo.InsertEmployee(ctx, e)
}

func (b *Bank) GetEmployee(ctx context.Context, id int64) (e *domain.Employee, err error) {
	defer timer("get_employee").ObserveDuration()
	defer func() { b.report(ctx, "get_employee", err, "employee_id", id) }()

	return load(ctx, b, domain.EntityEmployee, id, b.repo.GetEmployee)
}
