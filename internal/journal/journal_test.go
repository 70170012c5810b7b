package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeanBeanBEER-WARE/interact/internal/engine"
	"github.com/DeanBeanBEER-WARE/interact/internal/memdom"
	"github.com/DeanBeanBEER-WARE/interact/internal/rule"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndReadBack(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	el := memdom.NewNode("panel", "div")

	require.NoError(t, j.Record(ctx, engine.Mutation{
		Seq: 1, Session: "s1", RuleID: "0/0",
		Element: el, Action: rule.ActionAdd, Labels: []string{"open"},
	}))
	require.NoError(t, j.Record(ctx, engine.Mutation{
		Seq: 2, Session: "s1", RuleID: "0/0",
		Action: rule.ActionRemove, Labels: nil,
	}))

	entries, err := j.Entries(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, "panel", entries[0].ElementID)
	assert.Equal(t, "add", entries[0].Action)
	assert.Equal(t, []string{"open"}, entries[0].Labels)

	// Nil element persists as an empty id.
	assert.Equal(t, "", entries[1].ElementID)
	assert.Equal(t, "remove", entries[1].Action)
	assert.Empty(t, entries[1].Labels)
}

func TestJournal_DuplicateSeqIsIdempotent(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	m := engine.Mutation{Seq: 1, Session: "s1", RuleID: "0/0", Action: rule.ActionAdd, Labels: []string{"a"}}
	require.NoError(t, j.Record(ctx, m))
	m.Labels = []string{"replayed"}
	require.NoError(t, j.Record(ctx, m))

	entries, err := j.Entries(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"a"}, entries[0].Labels, "first write wins")
}

func TestJournal_SessionsAreIsolated(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, engine.Mutation{Seq: 1, Session: "s1", RuleID: "0/0", Action: rule.ActionAdd}))
	require.NoError(t, j.Record(ctx, engine.Mutation{Seq: 1, Session: "s2", RuleID: "1/0", Action: rule.ActionAdd}))

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, sessions)

	entries, err := j.Entries(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1/0", entries[0].RuleID)
}

func TestJournal_ObserverRecordsMutations(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	var errs []error
	obs := j.Observer(ctx, func(err error) { errs = append(errs, err) })
	obs(engine.Mutation{Seq: 1, Session: "s1", RuleID: "0/0", Action: rule.ActionAdd, Labels: []string{"x"}})

	assert.Empty(t, errs)
	entries, err := j.Entries(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
