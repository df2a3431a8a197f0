package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"asistencia-backend/internal/platform/config"
	"asistencia-backend/internal/platform/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Connect(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn, config.DriverSQLite))
	return conn
}

func newTestService(t *testing.T) (*Service, *sql.DB, *TokenIssuer) {
	t.Helper()
	conn := newTestDB(t)
	tokens := NewTokenIssuer([]byte("test-secret"), time.Hour)
	svc := NewService(conn, tokens)
	svc.hashCost = bcrypt.MinCost
	return svc, conn, tokens
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newTestService(t)

	id, err := svc.CreateEmployee(ctx, CreateEmployeeInput{Name: "Lucía Pérez", Username: "lucia", Password: "s3cret"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "lucia", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployee, res.Role)
	assert.Equal(t, "Lucía Pérez", res.Name)

	claims, err := tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.EmployeeID)
	assert.Equal(t, RoleEmployee, claims.Role)

	_, err = svc.Login(ctx, "lucia", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateEmployeeValidationAndDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateEmployee(ctx, CreateEmployeeInput{Name: "", Username: "x", Password: "p"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateEmployee(ctx, CreateEmployeeInput{Name: "X", Username: "x", Password: "p", Role: "root"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateEmployee(ctx, CreateEmployeeInput{Name: "X", Username: "x", Password: "p"})
	require.NoError(t, err)
	_, err = svc.CreateEmployee(ctx, CreateEmployeeInput{Name: "Y", Username: "x", Password: "q"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestListEmployeesOrderedByName(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, n := range []string{"Zoe", "Ana", "Marta"} {
		_, err := svc.CreateEmployee(ctx, CreateEmployeeInput{Name: n, Username: n, Password: "p"})
		require.NoError(t, err)
	}
	rows, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Ana", "Marta", "Zoe"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	id, err := svc.CreateEmployee(ctx, CreateEmployeeInput{Name: "A", Username: "a", Password: "old"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, id, "new"))
	_, err = svc.Login(ctx, "a", "old")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a", "new")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, id+100, "x"), ErrNotFound)
	assert.ErrorIs(t, svc.ResetPassword(ctx, id, ""), ErrInvalidInput)
}

func TestDeleteEmployeeCascadesEvents(t *testing.T) {
	ctx := context.Background()
	svc, conn, _ := newTestService(t)

	admin, err := svc.CreateEmployee(ctx, CreateEmployeeInput{Name: "Admin", Username: "admin", Password: "p", Role: RoleAdmin})
	require.NoError(t, err)
	id, err := svc.CreateEmployee(ctx, CreateEmployeeInput{Name: "B", Username: "b", Password: "p"})
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx,
		`INSERT INTO attendance_events (employee_id, recorded_at, kind, evidence_ref) VALUES (?, 0, 'in', '/uploads/x.jpg')`, id)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteEmployee(ctx, admin, admin), ErrSelfDelete)
	require.NoError(t, svc.DeleteEmployee(ctx, id, admin))
	assert.ErrorIs(t, svc.DeleteEmployee(ctx, id, admin), ErrNotFound)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_events`).Scan(&n))
	assert.Zero(t, n)
}

func TestEnsureAdminCreatesOnce(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	created, err := svc.EnsureAdmin(ctx, "admin", "admin123", "Administrador")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin", "other", "Administrador")
	require.NoError(t, err)
	assert.False(t, created)

	res, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, res.Role)
}

func TestTokenExpiryAndTampering(t *testing.T) {
	tokens := NewTokenIssuer([]byte("k1"), time.Hour)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return base }

	tok, err := tokens.Issue(Employee{ID: 7, Role: RoleAdmin, Name: "Root"})
	require.NoError(t, err)

	c, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Claims{EmployeeID: 7, Role: RoleAdmin, Name: "Root"}, c)

	other := NewTokenIssuer([]byte("k2"), time.Hour)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tokens.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = tokens.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
