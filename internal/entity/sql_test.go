package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTableTemplate(t *testing.T) {
	user := buildUser(t)

	b := NewBuilder("message")
	b.AutoKey("id")
	b.String("body")
	b.Reference("author", user)
	msg, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t,
		"CREATE TABLE messages (\n"+
			"\tid SERIAL,\n"+
			"\tbody VARCHAR NOT NULL,\n"+
			"\tauthor_id INT NOT NULL,\n"+
			"\tFOREIGN KEY (author_id) REFERENCES users,\n"+
			"\tPRIMARY KEY (id)\n"+
			")",
		msg.CreateTableStatement().Text)

	assert.Equal(t, "DROP TABLE IF EXISTS messages CASCADE", msg.DropTableStatement().Text)
}

func TestInsertExcludesSurrogateAndReturnsIt(t *testing.T) {
	user := buildUser(t)

	stmt := user.InsertStatement()
	assert.Equal(t,
		"INSERT INTO users (name, email) VALUES($1, $2) RETURNING id",
		stmt.Text)
	assert.Equal(t, []string{"name", "email"}, stmt.Params)
}

func TestInsertPlainKeyHasNoReturning(t *testing.T) {
	b := NewBuilder("tag")
	name := b.String("name")
	b.Key(name)
	tag, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO tags (name) VALUES($1)", tag.InsertStatement().Text)
}

func TestUpdateSetsNonKeyColumnsByKey(t *testing.T) {
	user := buildUser(t)

	stmt := user.UpdateStatement()
	assert.Equal(t,
		"UPDATE users SET (name, email) = ($1, $2) WHERE id = $3",
		stmt.Text)
	assert.Equal(t, []string{"name", "email", "id"}, stmt.Params)
}

func TestUpdateCompositeKeyPredicate(t *testing.T) {
	b := NewBuilder("pair")
	a := b.String("a")
	c := b.String("b")
	b.String("note", Optional())
	b.Key(a, c)
	pair, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE pairs SET note = $1 WHERE (a, b) = ($2, $3)",
		pair.UpdateStatement().Text)
}

func TestDeleteAndFindByKey(t *testing.T) {
	user := buildUser(t)

	assert.Equal(t, "DELETE FROM users WHERE id = $1", user.DeleteStatement().Text)
	assert.Equal(t,
		"SELECT id, name, email FROM users WHERE id = $1",
		user.FindByKeyStatement().Text)
}

func TestTemplatesAreCompiledOnce(t *testing.T) {
	user := buildUser(t)

	s1 := user.InsertStatement()
	s2 := user.InsertStatement()
	assert.Equal(t, s1.Text, s2.Text)
	require.Len(t, user.Statements(), 6)
}
