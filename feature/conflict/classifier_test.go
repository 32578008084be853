package conflict_test

import (
	"testing"

	"modaudit/feature/conflict"
	"modaudit/feature/index/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setOp(mod, targetType, targetName, property, value string, loadOrder int) models.ModOperation {
	return models.ModOperation{
		ModName: mod, Kind: models.KindSet,
		XPath:        "/" + targetType + "s/" + targetType + "[@name='" + targetName + "']/property[@name='" + property + "']/@value",
		TargetType:   targetType, TargetName: targetName,
		PropertyName: property, Value: value, LoadOrder: loadOrder,
	}
}

func removeOp(mod, targetType, targetName string, loadOrder int) models.ModOperation {
	return models.ModOperation{
		ModName: mod, Kind: models.KindRemove,
		XPath:      "/" + targetType + "s/" + targetType + "[@name='" + targetName + "']",
		TargetType: targetType, TargetName: targetName, LoadOrder: loadOrder,
	}
}

func appendOp(mod, targetType, targetName string, loadOrder int) models.ModOperation {
	return models.ModOperation{
		ModName: mod, Kind: models.KindAppend,
		XPath:      "/" + targetType + "s/" + targetType + "[@name='" + targetName + "']",
		TargetType: targetType, TargetName: targetName,
		RawContent: `<property name="X" value="1"/>`, LoadOrder: loadOrder,
	}
}

func classify(ops []models.ModOperation) []conflict.Verdict {
	return conflict.NewClassifier(zap.NewNop(), "exact").Classify(ops)
}

func TestClassifySingleModIsNotContested(t *testing.T) {
	verdicts := classify([]models.ModOperation{
		setOp("Solo", "item", "gunPistol", "Magazine_size", "30", 0),
		removeOp("Solo", "item", "gunPistol", 0),
		appendOp("Solo", "item", "gunPistol", 0),
	})
	assert.Empty(t, verdicts, "one mod alone can never conflict with itself")
}

func TestClassifySameValueIsRedundantNotConflicting(t *testing.T) {
	verdicts := classify([]models.ModOperation{
		setOp("ModA", "item", "gunPistol", "Magazine_size", "30", 0),
		setOp("ModB", "item", "gunPistol", "Magazine_size", "30", 1),
	})
	assert.Empty(t, verdicts)
}

func TestClassifyValueDivergenceIsMedium(t *testing.T) {
	verdicts := classify([]models.ModOperation{
		setOp("ModA", "item", "gunPistol", "Magazine_size", "30", 0),
		setOp("ModB", "item", "gunPistol", "Magazine_size", "24", 1),
	})

	require.Len(t, verdicts, 1)
	v := verdicts[0]
	assert.Equal(t, conflict.SeverityMedium, v.Severity)
	assert.Equal(t, "item", v.TargetType)
	assert.Equal(t, "gunPistol", v.TargetName)
	assert.Equal(t, "Magazine_size", v.PropertyKey)
	require.Len(t, v.Operations, 2)
	assert.Equal(t, "30", v.Operations[0].Value)
	assert.Equal(t, "24", v.Operations[1].Value)
}

func TestClassifyRemoveVsAnythingIsHigh(t *testing.T) {
	verdicts := classify([]models.ModOperation{
		setOp("BuffTweaks", "buff", "buffDrunk", "CureDelay", "10", 0),
		removeOp("NoAlcohol", "buff", "buffDrunk", 1),
	})

	require.Len(t, verdicts, 1)
	v := verdicts[0]
	assert.Equal(t, conflict.SeverityHigh, v.Severity)
	assert.Equal(t, "buffDrunk", v.TargetName)
	assert.Contains(t, v.Reason, "NoAlcohol")
	assert.Len(t, v.Operations, 2, "high verdicts carry the full operation context")
}

func TestClassifyHighSubsumesOtherVerdicts(t *testing.T) {
	verdicts := classify([]models.ModOperation{
		setOp("ModA", "buff", "buffDrunk", "CureDelay", "10", 0),
		setOp("ModB", "buff", "buffDrunk", "CureDelay", "20", 1),
		appendOp("ModA", "buff", "buffDrunk", 0),
		appendOp("ModB", "buff", "buffDrunk", 1),
		removeOp("ModC", "buff", "buffDrunk", 2),
	})

	require.Len(t, verdicts, 1, "the high verdict replaces medium and low for the entity")
	assert.Equal(t, conflict.SeverityHigh, verdicts[0].Severity)
}

func TestClassifyAdditiveOnlyIsLow(t *testing.T) {
	verdicts := classify([]models.ModOperation{
		appendOp("ModA", "entitygroup", "ZombiesAll", 0),
		appendOp("ModB", "entitygroup", "ZombiesAll", 1),
		appendOp("ModC", "entitygroup", "ZombiesAll", 2),
	})

	require.Len(t, verdicts, 1)
	v := verdicts[0]
	assert.Equal(t, conflict.SeverityLow, v.Severity)
	assert.Equal(t, "ZombiesAll", v.TargetName)
	assert.Len(t, v.Operations, 3)
}

func TestClassifyMediumPerPropertyKey(t *testing.T) {
	verdicts := classify([]models.ModOperation{
		setOp("ModA", "item", "gunPistol", "Magazine_size", "30", 0),
		setOp("ModB", "item", "gunPistol", "Magazine_size", "24", 1),
		setOp("ModA", "item", "gunPistol", "DamageEntity", "40", 0),
		setOp("ModB", "item", "gunPistol", "DamageEntity", "35", 1),
		setOp("ModA", "item", "gunPistol", "RoundsPerMinute", "120", 0),
		setOp("ModB", "item", "gunPistol", "RoundsPerMinute", "120", 1),
	})

	require.Len(t, verdicts, 2, "one verdict per divergent key, none for the agreeing key")
	assert.Equal(t, "DamageEntity", verdicts[0].PropertyKey)
	assert.Equal(t, "Magazine_size", verdicts[1].PropertyKey)
}

func TestClassifyFragileAndUnresolvedExcluded(t *testing.T) {
	fragile := models.ModOperation{
		ModName: "ModA", Kind: models.KindSet,
		XPath: "/items/item[@size='12,10']", Fragile: true,
	}
	unresolved := models.ModOperation{
		ModName: "ModB", Kind: models.KindSet, XPath: "/odd/path",
	}
	verdicts := classify([]models.ModOperation{fragile, unresolved})
	assert.Empty(t, verdicts)
}

func TestClassifyValueFolding(t *testing.T) {
	ops := []models.ModOperation{
		setOp("ModA", "item", "gunPistol", "Material", " Msteel ", 0),
		setOp("ModB", "item", "gunPistol", "Material", "msteel", 1),
	}

	exact := conflict.NewClassifier(zap.NewNop(), "exact").Classify(ops)
	require.Len(t, exact, 1)
	assert.Equal(t, conflict.SeverityMedium, exact[0].Severity)

	folded := conflict.NewClassifier(zap.NewNop(), "fold").Classify(ops)
	assert.Empty(t, folded, "folded comparison treats the writes as agreeing")
}

func TestClassifyDeterministicOrder(t *testing.T) {
	ops := []models.ModOperation{
		setOp("ModA", "item", "zItem", "P", "1", 0),
		setOp("ModB", "item", "zItem", "P", "2", 1),
		setOp("ModA", "buff", "aBuff", "P", "1", 0),
		setOp("ModB", "buff", "aBuff", "P", "2", 1),
	}

	first := classify(ops)
	require.Len(t, first, 2)
	assert.Equal(t, "aBuff", first[0].TargetName, "verdicts sorted by entity key")
	assert.Equal(t, "zItem", first[1].TargetName)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, classify(ops))
	}
}

func TestClassifyMixedSetAndAppendWithoutDivergence(t *testing.T) {
	// Sets agree, appends overlap: the set kinds block the additive-only rule
	// and agreement blocks the divergence rule, so no verdict fires.
	verdicts := classify([]models.ModOperation{
		setOp("ModA", "item", "gunPistol", "Magazine_size", "30", 0),
		setOp("ModB", "item", "gunPistol", "Magazine_size", "30", 1),
		appendOp("ModA", "item", "gunPistol", 0),
		appendOp("ModB", "item", "gunPistol", 1),
	})
	assert.Empty(t, verdicts)
}
