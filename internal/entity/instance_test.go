package entity

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildConstrainedUser(t *testing.T) *Type {
	t.Helper()
	b := NewBuilder("user")
	b.AutoKey("id")
	b.String("name", Constraint(func(v any) bool {
		s, ok := v.(string)
		return ok && strings.TrimSpace(s) != ""
	}))
	b.String("email", Optional())
	typ, err := b.Build()
	require.NoError(t, err)
	return typ
}

func TestNewChecksPropertyConstraints(t *testing.T) {
	user := buildConstrainedUser(t)

	_, err := user.New(map[string]any{"name": "   "})
	var pce *PropertyConstraintError
	require.ErrorAs(t, err, &pce)
	assert.Equal(t, "name", pce.Property.Name())

	_, err = user.New(map[string]any{})
	require.ErrorAs(t, err, &pce)
	assert.Equal(t, "name", pce.Property.Name())
}

func TestSetRunsConstraintAndCoercion(t *testing.T) {
	user := buildConstrainedUser(t)
	in := mustNew(t, user, map[string]any{"name": "Eve"})
	name, _ := user.PropertyByName("name")

	require.NoError(t, in.Set(name, "Eva"))
	assert.Equal(t, "Eva", in.Get(name))

	err := in.Set(name, "")
	var pce *PropertyConstraintError
	require.ErrorAs(t, err, &pce)
	assert.Same(t, in, pce.Instance)
	// failed assignment leaves the previous value
	assert.Equal(t, "Eva", in.Get(name))

	err = in.Set(name, 42)
	require.ErrorAs(t, err, &pce)
}

func TestObjectConstraintTiming(t *testing.T) {
	b := NewBuilder("account")
	b.AutoKey("id")
	bal := b.Int("balance")
	b.Check(func(in *Instance) bool {
		v, _ := in.Get(bal).(int64)
		return v >= 0
	})
	account, err := b.Build()
	require.NoError(t, err)

	// at construction
	_, err = account.New(map[string]any{"balance": -5})
	var oce *ObjectConstraintError
	require.ErrorAs(t, err, &oce)

	// before update
	in := mustNew(t, account, map[string]any{"balance": 10})
	st := &fakeStore{}
	st.queue([]any{int64(1)})
	require.NoError(t, in.Insert(context.Background(), st))

	require.NoError(t, in.Set(bal, -1))
	err = in.Update(context.Background(), st)
	require.ErrorAs(t, err, &oce)
	assert.Empty(t, st.execs, "failed check must not reach the store")
}

func TestInsertSurrogateRegistersGeneratedKey(t *testing.T) {
	user := buildConstrainedUser(t)
	st := &fakeStore{}
	st.queue([]any{int64(7)})

	in := mustNew(t, user, map[string]any{"name": "Eve"})
	assert.Nil(t, in.Key())
	assert.False(t, in.Persisted())

	require.NoError(t, in.Insert(context.Background(), st))
	assert.Equal(t, int64(7), in.Key())
	assert.True(t, in.Persisted())

	cached, ok := user.Cache().Lookup(int64(7))
	require.True(t, ok)
	assert.Same(t, in, cached)

	// the insert went through the compiled template
	require.Len(t, st.queries, 1)
	assert.Equal(t, user.InsertStatement().Text, st.queries[0].text)

	assert.ErrorIs(t, in.Insert(context.Background(), st), ErrPersisted)
}

func TestInsertPlainKeyUsesExec(t *testing.T) {
	tag := buildTag(t)
	st := &fakeStore{}

	in := mustNew(t, tag, map[string]any{"name": "go"})
	require.NoError(t, in.Insert(context.Background(), st))
	assert.True(t, in.Persisted())
	require.Len(t, st.execs, 1)
	assert.Empty(t, st.queries)
}

func TestUpdateAndDeleteRequirePersistence(t *testing.T) {
	tag := buildTag(t)
	st := &fakeStore{}

	in := mustNew(t, tag, map[string]any{"name": "go"})
	assert.ErrorIs(t, in.Update(context.Background(), st), ErrNotPersisted)
	assert.ErrorIs(t, in.Delete(context.Background(), st), ErrNotPersisted)
}

func TestUpdateSendsAllNonKeyColumns(t *testing.T) {
	user := buildConstrainedUser(t)
	st := &fakeStore{}
	st.queue([]any{int64(3)})

	in := mustNew(t, user, map[string]any{"name": "Eve", "email": "eve@x"})
	require.NoError(t, in.Insert(context.Background(), st))

	name, _ := user.PropertyByName("name")
	require.NoError(t, in.Set(name, "Eva"))
	require.NoError(t, in.Update(context.Background(), st))

	require.Len(t, st.execs, 1)
	assert.Equal(t, user.UpdateStatement().Text, st.execs[0].text)
	assert.Equal(t, []any{"Eva", "eve@x", int64(3)}, st.execs[0].args)
}

func TestDeleteClearsPersistence(t *testing.T) {
	tag := buildTag(t)
	st := &fakeStore{}

	in := mustNew(t, tag, map[string]any{"name": "go"})
	require.NoError(t, in.Insert(context.Background(), st))
	require.NoError(t, in.Delete(context.Background(), st))
	assert.False(t, in.Persisted())
	require.Len(t, st.execs, 2)
	assert.Equal(t, tag.DeleteStatement().Text, st.execs[1].text)
}

func TestFromRowMarksPersisted(t *testing.T) {
	user := buildConstrainedUser(t)

	in, err := user.FromRow([]any{int64(9), "Eve", nil})
	require.NoError(t, err)
	assert.True(t, in.Persisted())
	assert.Equal(t, int64(9), in.Key())

	_, err = user.FromRow([]any{int64(9)})
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	user := buildConstrainedUser(t)

	in, err := user.FromJSON([]byte(`{"id": 4, "name": "Eve", "email": null}`))
	require.NoError(t, err)
	assert.Equal(t, int64(4), in.Key())

	body, err := json.Marshal(in)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Eve", out["name"])
	assert.Equal(t, float64(4), out["id"])
}

func TestNoJSONPropsStayOutOfRepr(t *testing.T) {
	b := NewBuilder("secretive")
	b.AutoKey("id")
	b.String("public")
	b.String("hidden", NoJSON())
	typ, err := b.Build()
	require.NoError(t, err)

	in := mustNew(t, typ, map[string]any{"public": "a", "hidden": "b"})
	repr := in.JSONRepr()
	assert.Contains(t, repr, "public")
	assert.NotContains(t, repr, "hidden")
}

func TestReferenceAccessors(t *testing.T) {
	user := buildConstrainedUser(t)

	b := NewBuilder("message")
	b.AutoKey("id")
	b.String("body")
	author := b.Reference("author", user)
	msg, err := b.Build()
	require.NoError(t, err)

	in := mustNew(t, msg, map[string]any{"body": "hi", "author": int64(5)})
	assert.Equal(t, int64(5), in.GetReference(author))

	require.NoError(t, in.SetReference(author, int64(6)))
	assert.Equal(t, int64(6), in.GetReference(author))

	require.NoError(t, in.SetReference(author, nil))
	assert.Nil(t, in.GetReference(author))
}
