package sqlite

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/semql/pkg/connection"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_FetchTableSchema_Mock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	c := New(nil)
	c.DB = db
	c.Cfg = connection.Config{Type: "sqlite"}

	mock.ExpectQuery("pragma_table_info").
		WithArgs("users", "aux").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type"}).AddRow("id", "INTEGER").AddRow("email", "TEXT"))

	st, err := c.FetchTableSchema(context.Background(), "aux.users")
	require.NoError(t, err)
	assert.Equal(t, []model.FieldDef{
		{Name: "id", Type: model.TypeNumber, Kind: model.KindColumn},
		{Name: "email", Type: model.TypeString, Kind: model.KindColumn},
	}, st.Fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_InMemory(t *testing.T) {
	ctx := context.Background()
	c, err := connection.New(connection.Config{Type: "sqlite"}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Connect(ctx, connection.Config{Type: "sqlite"}))
	defer func() { _ = c.Close() }()

	conn := c.(*Connection)
	_, err = conn.DB.ExecContext(ctx, "CREATE TABLE users (id INTEGER, email TEXT, active BOOLEAN)")
	require.NoError(t, err)

	st, err := c.FetchTableSchema(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []model.FieldDef{
		{Name: "id", Type: model.TypeNumber, Kind: model.KindColumn},
		{Name: "email", Type: model.TypeString, Kind: model.KindColumn},
		{Name: "active", Type: model.TypeBoolean, Kind: model.KindColumn},
	}, st.Fields)

	_, err = c.FetchTableSchema(ctx, "missing")
	assert.EqualError(t, err, "table missing not found")

	st, err = c.FetchSQLSchema(ctx, "SELECT id, email FROM users")
	require.NoError(t, err)
	require.Len(t, st.Fields, 2)
	assert.Equal(t, "email", st.Fields[1].Name)
}
