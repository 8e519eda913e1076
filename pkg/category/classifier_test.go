package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/kakeibu/configs"
	"github.com/yurifrl/kakeibu/pkg/models"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	m, err := Parse(configs.Categories)
	require.NoError(t, err)
	return NewClassifier(m)
}

func TestClassify_PrefixMatchesBranchQualifiedName(t *testing.T) {
	c := defaultClassifier(t)

	exact := c.Classify("三菱UFJ銀行", models.Expense)
	assert.Equal(t, "bank", exact)
	assert.Equal(t, exact, c.Classify("三菱UFJ銀行 三島支店 普通預金", models.Expense))
	assert.Equal(t, exact, c.Classify("三菱ＵＦＪ銀行　三島支店", models.Expense))
}

func TestClassify_Layers(t *testing.T) {
	c := defaultClassifier(t)

	tests := []struct {
		desc string
		typ  models.Type
		want string
	}{
		{"セブン-イレブン", models.Expense, "food"},            // exact, then alias
		{"ｾﾌﾞﾝ-ｲﾚﾌﾞﾝ三島店", models.Expense, "food"},       // half-width kana, prefix after NFKC
		{"Amazon.co.jp 注文", models.Expense, "shopping"}, // case-insensitive substring
		{"マツモトキヨシ 三島店", models.Expense, "daily"},        // prefix, then alias
		{"振替手数料", models.Expense, "fees"},               // substring
		{"ATM 引出", models.Income, "withdrawal"},         // income fallback
		{"給与 カブシキガイシャ", models.Income, "salary"},        // income fallback
		{"所得税 還付金", models.Income, "tax_refund"},        // income fallback
		{"ご返金 ABC", models.Income, "refund"},            // income fallback
		{"ATM 引出", models.Expense, "other"},             // fallbacks are income only
		{"ナゾの入金", models.Income, "other_income"},        // default
		{"ナゾの支払", models.Expense, "other"},              // default
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.desc, tt.typ), tt.desc)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	m, err := Parse([]byte(`
mappings:
  ABC: short
  ABC Store: long
categories:
  short: {name: Short}
  long: {name: Long}
`))
	require.NoError(t, err)
	c := NewClassifier(m)

	// table order decides, not the length of the key
	assert.Equal(t, "short", c.Classify("ABC Store Shibuya", models.Expense))
	assert.Equal(t, "long", c.Classify("ABC Store", models.Expense))
}

func TestClassify_FallbackOrder(t *testing.T) {
	m, err := Parse([]byte(`
fallbacks:
  income:
    - {category: withdrawal, keywords: [ATM]}
    - {category: salary, keywords: [給与]}
categories:
  withdrawal: {name: W}
  salary: {name: S}
`))
	require.NoError(t, err)
	c := NewClassifier(m)

	assert.Equal(t, "withdrawal", c.Classify("給与 ATM", models.Income))
	assert.Equal(t, Uncategorized, c.Classify("nothing", models.Income))
	assert.Equal(t, Uncategorized, c.Classify("nothing", models.Expense))
}

func TestClassify_AliasResolvesOneLevel(t *testing.T) {
	m := &Mapping{
		Rules:         []Rule{{Key: "x", Category: "a"}},
		Subcategories: map[string]string{"a": "b", "b": "c"},
	}
	assert.Equal(t, "b", NewClassifier(m).Classify("x", models.Expense))
}

func TestClassify_Deterministic(t *testing.T) {
	c := defaultClassifier(t)
	first := c.Classify("ローソン 三島駅前店", models.Expense)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Classify("ローソン 三島駅前店", models.Expense))
	}
}

func TestParse_Validation(t *testing.T) {
	_, err := Parse([]byte("mappings:\n  x: missing\n"))
	assert.ErrorContains(t, err, `unknown category "missing"`)

	_, err = Parse([]byte("subcategories:\n  a: b\ncategories:\n  a: {name: A}\n"))
	assert.ErrorContains(t, err, "subcategory")

	_, err = Parse([]byte("defaultCategory:\n  transfer: a\ncategories:\n  a: {name: A}\n"))
	assert.ErrorContains(t, err, "unknown type")
}

func TestLookup(t *testing.T) {
	c := defaultClassifier(t)
	info, ok := c.Lookup("food")
	require.True(t, ok)
	assert.Equal(t, "食費", info.Name)
	assert.Equal(t, models.Expense, info.Type)
}
