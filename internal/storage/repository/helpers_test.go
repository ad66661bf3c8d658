package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/wahs-congress/internal/migrations"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateMember создает запись о членстве и возвращает её id
func (f *TestDataFactory) CreateMember(t *testing.T, email string, mt models.MembershipType,
	status models.MembershipStatus, joinedAt time.Time, expiresAt *time.Time) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO wahs_members
		(email, full_name, membership_type, membership_status, joined_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		email, "Test Member", mt, status, joinedAt, expiresAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateRegistration создает регистрацию на конгресс и возвращает её id
func (f *TestDataFactory) CreateRegistration(t *testing.T, email string, year int, tt models.TicketType,
	amount string, createdAt time.Time) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO congress_registrations
		(email, full_name, congress_year, ticket_type, is_wahs_member, amount_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		email, "Test Attendee", year, tt, tt == models.TicketWAHSMember,
		decimal.RequireFromString(amount), createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyMemberStatus проверяет статус и транзакцию членства
func (v *TestVerification) VerifyMemberStatus(t *testing.T, id string, wantStatus models.MembershipStatus, wantTxn *string) {
	var status string
	var txn *string
	err := v.storage.DB.QueryRow(
		"SELECT membership_status, paypal_transaction_id FROM wahs_members WHERE id = $1", id).
		Scan(&status, &txn)
	require.NoError(t, err)
	require.Equal(t, string(wantStatus), status)
	require.Equal(t, wantTxn, txn)
}

// VerifyLedgerCount проверяет количество строк журнала для txnID
func (v *TestVerification) VerifyLedgerCount(t *testing.T, txnID string, want int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM payment_transactions WHERE txn_id = $1", txnID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, want, count)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err, "Failed to get host")
	port, err := postgresContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err, "Failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "Failed to apply migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
