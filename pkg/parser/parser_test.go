package parser

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/yurifrl/kakeibu/configs"
	"github.com/yurifrl/kakeibu/pkg/category"
	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/sources"
)

func newTestParser(t *testing.T, sourcesYAML []byte) *Parser {
	t.Helper()
	table, err := sources.Parse(sourcesYAML)
	require.NoError(t, err)
	mapping, err := category.Parse(configs.Categories)
	require.NoError(t, err)
	keywords, err := ParseKeywords(configs.Keywords)
	require.NoError(t, err)
	return New(log.New(io.Discard), table, category.NewClassifier(mapping), keywords, nil)
}

func shiftJIS(t *testing.T, s string) []byte {
	t.Helper()
	out, err := japanese.ShiftJIS.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func TestProcessBytes_MUFG(t *testing.T) {
	content := shiftJIS(t, "日付,摘要,摘要内容,支払い金額,預かり金額,差引残高\n"+
		"2024/05/01,セブン-イレブン三島店,カード,\"1,200\",,48800\n"+
		"2024/05/02,,給与 カブシキガイシャ,,\"250,000\",298800\n"+
		"2024/05/03,振替,普通預金へ,10000,,288800\n"+
		"2024/05/04,振替手数料,,110,,288690\n"+
		"2024/05/05,ATM 引出,,0,0,288690\n")

	p := newTestParser(t, configs.Sources)
	res, err := p.ProcessBytes(content, "1234567_mufg_202405.csv")
	require.NoError(t, err)

	assert.Equal(t, "mufg", res.Source.ID)
	assert.Equal(t, "shift_jis", res.Encoding)
	assert.Equal(t, 5, res.Rows)
	assert.Equal(t, 2, res.Filtered)
	require.Len(t, res.Transactions, 3)

	assertTransaction(t, res.Transactions[0], "2024-05-01", "セブン-イレブン三島店", 1200, models.Expense)
	assert.Equal(t, "food", res.Transactions[0].Category())
	assert.Equal(t, "12:00:00", res.Transactions[0].Time())
	assert.Equal(t, "三菱UFJ銀行", res.Transactions[0].Source())

	// description falls back to the second column
	assertTransaction(t, res.Transactions[1], "2024-05-02", "給与 カブシキガイシャ", 250000, models.Income)
	assert.Equal(t, "salary", res.Transactions[1].Category())

	// a transfer fee is not an internal transfer
	assertTransaction(t, res.Transactions[2], "2024-05-04", "振替手数料", 110, models.Expense)
	assert.Equal(t, "fees", res.Transactions[2].Category())

	orig := res.Transactions[0].Original()
	assert.Equal(t, "1234567_mufg_202405.csv", orig.FileName)
	assert.Equal(t, "mufg", orig.Format)
	assert.Equal(t, "shift_jis", orig.Encoding)
	assert.Equal(t, 2, orig.LineNumber)
	assert.Equal(t, "1234567", orig.AccountNumber)
	assert.Equal(t, "セブン-イレブン三島店", orig.Row[1])
}

func TestProcessBytes_DetectsFromHeader(t *testing.T) {
	content := []byte("取引日,出金金額（円）,入金金額（円）,海外出金金額,通貨,変換レート（円）,利用国,取引内容,取引先,取引方法,支払い区分,利用者,取引番号\n" +
		"2024/05/06 13:05:10,580,,,,,,支払い,ローソン 三島駅前店,PayPay残高,,,0001\n" +
		"2024/05/07 08:00:00,,1000,,,,,チャージ,,,,,0002\n")

	p := newTestParser(t, configs.Sources)
	res, err := p.ProcessBytes(content, "download.csv")
	require.NoError(t, err)

	assert.Equal(t, "paypay", res.Source.ID)
	require.Len(t, res.Transactions, 2)
	assertTransaction(t, res.Transactions[0], "2024-05-06", "ローソン 三島駅前店", 580, models.Expense)
	assert.Equal(t, "13:05:10", res.Transactions[0].Time())
	assertTransaction(t, res.Transactions[1], "2024-05-07", "チャージ", 1000, models.Income)
}

func TestProcessBytes_RakutenCardHint(t *testing.T) {
	content := []byte("利用日,利用店名・商品名,利用者,支払方法,利用金額,支払手数料,支払総額\n" +
		"2024/05/10,AMAZON.CO.JP,本人,1回払い,\"3,980\",0,3980\n" +
		"2024/05/11,返品 AMAZON,本人,1回払い,-500,0,-500\n")

	p := newTestParser(t, configs.Sources)
	res, err := p.ProcessBytes(content, "enavi202405(1234).csv")
	require.NoError(t, err)

	require.Len(t, res.Transactions, 2)
	assertTransaction(t, res.Transactions[0], "2024-05-10", "AMAZON.CO.JP", 3980, models.Expense)
	assert.Equal(t, "shopping", res.Transactions[0].Category())
	// the hint wins over the sign
	assertTransaction(t, res.Transactions[1], "2024-05-11", "返品 AMAZON", 500, models.Expense)
}

func TestParseRows_SingleAmountGrammars(t *testing.T) {
	p := newTestParser(t, []byte(`
sources:
  bank:
    filenamePatterns: ["bank*.csv"]
    columns: {date: 0, time: 1, description: 2, amount: 3}
`))
	content := []byte("2024年5月1日,09:30,給与,\"250,000円\"\n" +
		"2024.05.02,,コンビニ,\"△1,200\"\n" +
		"2024-05-03 18:45,,ABC,(300)\n" +
		"20240504,,DEF,500-\n" +
		"2024/05/05,,GHI,0\n" +
		"yesterday,,JKL,100\n" +
		"2024/05/06,,MNO,abc\n" +
		"2024/05/07\n")

	res, err := p.ProcessBytes(content, "bank_2024.csv")
	require.NoError(t, err)

	assert.Equal(t, 8, res.Rows)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Filtered)
	require.Len(t, res.Transactions, 4)

	assertTransaction(t, res.Transactions[0], "2024-05-01", "給与", 250000, models.Income)
	assert.Equal(t, "09:30:00", res.Transactions[0].Time())
	assertTransaction(t, res.Transactions[1], "2024-05-02", "コンビニ", 1200, models.Expense)
	assert.Equal(t, "12:00:00", res.Transactions[1].Time())
	assertTransaction(t, res.Transactions[2], "2024-05-03", "ABC", 300, models.Expense)
	assert.Equal(t, "18:45:00", res.Transactions[2].Time())
	assertTransaction(t, res.Transactions[3], "2024-05-04", "DEF", 500, models.Expense)

	ids := map[string]bool{}
	for _, tx := range res.Transactions {
		assert.False(t, ids[tx.ID()], "duplicate id %s", tx.ID())
		ids[tx.ID()] = true
	}
}

func TestProcessBytes_Undetectable(t *testing.T) {
	p := newTestParser(t, configs.Sources)
	res, err := p.ProcessBytes([]byte("a,b,c\n1,2,3\n"), "notes.csv")
	assert.True(t, errors.Is(err, sources.ErrUndetectable))
	assert.Empty(t, res.Transactions)
}

func TestParseSource_ConfigMissing(t *testing.T) {
	p := newTestParser(t, configs.Sources)
	_, err := p.ParseSource("aeon", []byte("2024/05/01,x,100\n"), "aeon.csv")
	assert.ErrorIs(t, err, sources.ErrConfigMissing)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1,200", "1200", true},
		{"￥1,200", "1200", true},
		{"１２００円", "1200", true},
		{"-500", "-500", true},
		{"▲500", "-500", true},
		{"(500)", "-500", true},
		{"500-", "-500", true},
		{"12.5", "12.5", true},
		{"", "0", false},
		{"  ", "0", false},
	}
	for _, tt := range tests {
		got, ok, err := parseAmount(tt.in)
		if err != nil {
			t.Errorf("parseAmount(%q) failed: %v", tt.in, err)
			continue
		}
		if ok != tt.ok || got.String() != tt.want {
			t.Errorf("parseAmount(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	_, _, err := parseAmount("12a")
	assert.Error(t, err)
}

func TestKeywords_IsInternalTransfer(t *testing.T) {
	k, err := ParseKeywords(configs.Keywords)
	require.NoError(t, err)

	assert.True(t, k.IsInternalTransfer("振替 普通預金"))
	assert.True(t, k.IsInternalTransfer("PayPayチャージ"))
	assert.False(t, k.IsInternalTransfer("振替手数料"))
	assert.False(t, k.IsInternalTransfer("セブン-イレブン"))
}

func assertTransaction(t *testing.T, tx *models.Transaction, date, description string, amount float64, typ models.Type) {
	t.Helper()
	if tx.Date() != date || tx.Description() != description || tx.Amount() != amount || tx.Type() != typ {
		t.Errorf("Transaction mismatch:\nExpected: date=%s, description=%s, amount=%.2f, type=%s\nGot: date=%s, description=%s, amount=%.2f, type=%s",
			date, description, amount, typ,
			tx.Date(), tx.Description(), tx.Amount(), tx.Type())
	}
}
