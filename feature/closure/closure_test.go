package closure_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"modaudit/core/database"
	"modaudit/feature/closure"
	"modaudit/feature/index"
	"modaudit/feature/index/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *index.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	store := index.New(db)
	require.NoError(t, store.Migrate())
	return store
}

func addDef(t *testing.T, store *index.Store, defType, name string) uint {
	t.Helper()
	id, err := store.AddDefinition(&models.Definition{
		Type: defType, Name: name, SourceFile: defType + "s.xml",
	})
	require.NoError(t, err)
	return id
}

func addRef(t *testing.T, store *index.Store, fromID uint, targetType, targetName, tag string) {
	t.Helper()
	require.NoError(t, store.AddReference(&models.Reference{
		DefinitionID: fromID, TargetType: targetType, TargetName: targetName, ContextTag: tag,
	}))
}

func rowsByPair(t *testing.T, store *index.Store) map[[2]uint]models.TransitiveReference {
	t.Helper()
	rows, err := store.AllTransitiveReferences()
	require.NoError(t, err)
	out := make(map[[2]uint]models.TransitiveReference, len(rows))
	for _, r := range rows {
		key := [2]uint{r.SourceID, r.TargetID}
		_, dup := out[key]
		require.False(t, dup, "one row per (source, target) pair")
		out[key] = r
	}
	return out
}

func TestBuildChain(t *testing.T) {
	store := newStore(t)
	// gunPistolPlus extends gunPistol, which loads ammo9mmBullet.
	pistol := addDef(t, store, "item", "gunPistol")
	plus := addDef(t, store, "item", "gunPistolPlus")
	ammo := addDef(t, store, "item", "ammo9mmBullet")
	addRef(t, store, plus, "item", "gunPistol", models.TagExtends)
	addRef(t, store, pistol, "item", "ammo9mmBullet", models.PropertyTag("Magazine_items"))

	builder := closure.NewBuilder(store, zap.NewNop(), closure.Config{MaxDepth: 8, Workers: 2})
	stats, err := builder.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Sources)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 0, stats.Truncated)

	rows := rowsByPair(t, store)
	require.Len(t, rows, 3)

	direct := rows[[2]uint{plus, pistol}]
	assert.Equal(t, 1, direct.Depth)

	transitive := rows[[2]uint{plus, ammo}]
	assert.Equal(t, 2, transitive.Depth)

	var path []closure.PathStep
	require.NoError(t, json.Unmarshal([]byte(transitive.Path), &path))
	require.Len(t, path, 2)
	assert.Equal(t, "gunPistol", path[0].TargetName)
	assert.Equal(t, models.TagExtends, path[0].ContextTag)
	assert.Equal(t, "ammo9mmBullet", path[1].TargetName)

	var tags []string
	require.NoError(t, json.Unmarshal([]byte(transitive.RefTypes), &tags))
	assert.Equal(t, []string{models.TagExtends, models.PropertyTag("Magazine_items")}, tags)
}

func TestBuildFirstDiscoveryWins(t *testing.T) {
	store := newStore(t)
	// Two routes from a to d: a->d directly and a->b->c->d.
	a := addDef(t, store, "item", "a")
	b := addDef(t, store, "item", "b")
	c := addDef(t, store, "item", "c")
	d := addDef(t, store, "item", "d")
	addRef(t, store, a, "item", "d", models.PropertyTag("DropItem"))
	addRef(t, store, a, "item", "b", models.TagExtends)
	addRef(t, store, b, "item", "c", models.TagExtends)
	addRef(t, store, c, "item", "d", models.TagExtends)

	builder := closure.NewBuilder(store, zap.NewNop(), closure.Config{MaxDepth: 8, Workers: 1})
	_, err := builder.Build(context.Background())
	require.NoError(t, err)

	rows := rowsByPair(t, store)
	row, ok := rows[[2]uint{a, d}]
	require.True(t, ok)
	assert.Equal(t, 1, row.Depth, "shortest path is kept")
}

func TestBuildCycle(t *testing.T) {
	store := newStore(t)
	// buffDrunk and buffHungover trigger each other.
	drunk := addDef(t, store, "buff", "buffDrunk")
	hung := addDef(t, store, "buff", "buffHungover")
	addRef(t, store, drunk, "buff", "buffHungover", models.TriggeredEffectTag("AddBuff"))
	addRef(t, store, hung, "buff", "buffDrunk", models.TriggeredEffectTag("AddBuff"))

	builder := closure.NewBuilder(store, zap.NewNop(), closure.Config{MaxDepth: 8, Workers: 2})
	stats, err := builder.Build(context.Background())
	require.NoError(t, err)

	rows := rowsByPair(t, store)
	assert.Len(t, rows, 2, "no self-reachability rows")
	assert.Equal(t, 2, stats.Rows)

	_, selfDrunk := rows[[2]uint{drunk, drunk}]
	assert.False(t, selfDrunk)
	_, forward := rows[[2]uint{drunk, hung}]
	assert.True(t, forward)
}

func TestBuildDepthBound(t *testing.T) {
	store := newStore(t)
	// Chain a -> b -> c -> d, bounded at depth 2.
	a := addDef(t, store, "item", "a")
	b := addDef(t, store, "item", "b")
	c := addDef(t, store, "item", "c")
	d := addDef(t, store, "item", "d")
	addRef(t, store, a, "item", "b", models.TagExtends)
	addRef(t, store, b, "item", "c", models.TagExtends)
	addRef(t, store, c, "item", "d", models.TagExtends)

	builder := closure.NewBuilder(store, zap.NewNop(), closure.Config{MaxDepth: 2, Workers: 1})
	stats, err := builder.Build(context.Background())
	require.NoError(t, err)

	rows := rowsByPair(t, store)
	_, tooDeep := rows[[2]uint{a, d}]
	assert.False(t, tooDeep, "paths beyond the bound are not followed")
	assert.Greater(t, stats.Truncated, 0)

	_, atBound := rows[[2]uint{a, c}]
	assert.True(t, atBound)
}

func TestBuildDanglingAndAmbiguous(t *testing.T) {
	store := newStore(t)
	src := addDef(t, store, "item", "gunPistol")
	addRef(t, store, src, "item", "ammoMissing", models.PropertyTag("Magazine_items"))

	// Duplicate target: the base-origin definition is the resolved endpoint.
	modDup, err := store.AddDefinition(&models.Definition{
		Type: "buff", Name: "buffShared", Origin: models.ModOrigin("ModA"), SourceFile: "a.xml",
	})
	require.NoError(t, err)
	baseDup := addDef(t, store, "buff", "buffShared")
	addRef(t, store, src, "buff", "buffShared", models.PropertyTag("Buff"))

	builder := closure.NewBuilder(store, zap.NewNop(), closure.Config{MaxDepth: 8, Workers: 1})
	stats, err := builder.Build(context.Background())
	require.NoError(t, err)

	rows := rowsByPair(t, store)
	assert.Equal(t, 1, stats.Rows, "dangling reference contributes no row")

	_, toBase := rows[[2]uint{src, baseDup}]
	assert.True(t, toBase)
	_, toMod := rows[[2]uint{src, modDup}]
	assert.False(t, toMod)
}

func TestBuildDeterminism(t *testing.T) {
	seed := func(store *index.Store) {
		a := addDef(t, store, "item", "a")
		b := addDef(t, store, "item", "b")
		addDef(t, store, "item", "c")
		addRef(t, store, a, "item", "b", models.TagExtends)
		addRef(t, store, b, "item", "c", models.TagExtends)
		addRef(t, store, a, "item", "c", models.PropertyTag("DropItem"))
	}

	var first []models.TransitiveReference
	for run := 0; run < 3; run++ {
		store := newStore(t)
		seed(store)
		builder := closure.NewBuilder(store, zap.NewNop(), closure.Config{MaxDepth: 8, Workers: 4})
		_, err := builder.Build(context.Background())
		require.NoError(t, err)

		rows, err := store.AllTransitiveReferences()
		require.NoError(t, err)
		for i := range rows {
			rows[i].ID = 0
		}
		if run == 0 {
			first = rows
		} else {
			assert.Equal(t, first, rows)
		}
	}
}

func TestBuildCancelledContext(t *testing.T) {
	store := newStore(t)
	prev := ""
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("item%02d", i)
		id := addDef(t, store, "item", name)
		if prev != "" {
			addRef(t, store, id, "item", prev, models.TagExtends)
		}
		prev = name
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Must return promptly with the context error even though the worker
	// count is smaller than the source count.
	builder := closure.NewBuilder(store, zap.NewNop(), closure.Config{MaxDepth: 8, Workers: 1})
	_, err := builder.Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	rows, err := store.AllTransitiveReferences()
	require.NoError(t, err)
	assert.Empty(t, rows, "cancelled build inserts nothing")
}
